package repository

import (
	"context"
	"strings"
	"time"

	"food-distribution-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormPrincipalStore struct {
	DB *gorm.DB
}

func (s *GormPrincipalStore) Create(ctx context.Context, p *models.Principal) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormPrincipalStore) Get(ctx context.Context, id string) (*models.Principal, error) {
	var p models.Principal
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, gormErr(err)
	}
	return &p, nil
}

func (s *GormPrincipalStore) FindByEmail(ctx context.Context, email string) (*models.Principal, error) {
	var p models.Principal
	err := s.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&p).Error
	if err != nil {
		return nil, gormErr(err)
	}
	return &p, nil
}

func (s *GormPrincipalStore) List(ctx context.Context) ([]models.Principal, error) {
	var principals []models.Principal
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&principals).Error; err != nil {
		return nil, err
	}
	return principals, nil
}

func (s *GormPrincipalStore) Update(ctx context.Context, id string, u PrincipalUpdate) (*models.Principal, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.CanCreateBeneficiaries != nil {
		updates["can_create_beneficiaries"] = *u.CanCreateBeneficiaries
	}

	res := s.DB.WithContext(ctx).Model(&models.Principal{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *GormPrincipalStore) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Principal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
