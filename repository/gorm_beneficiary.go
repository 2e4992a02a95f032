package repository

import (
	"context"
	"time"

	"food-distribution-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormBeneficiaryStore struct {
	DB *gorm.DB
}

func (s *GormBeneficiaryStore) Create(ctx context.Context, b *models.Beneficiary) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b)
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormBeneficiaryStore) Get(ctx context.Context, cnic string) (*models.Beneficiary, error) {
	var b models.Beneficiary
	if err := s.DB.WithContext(ctx).Where("cnic = ?", cnic).First(&b).Error; err != nil {
		return nil, gormErr(err)
	}
	return &b, nil
}

func (s *GormBeneficiaryStore) List(ctx context.Context, status models.BeneficiaryStatus) ([]models.Beneficiary, error) {
	query := s.DB.WithContext(ctx).Model(&models.Beneficiary{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var beneficiaries []models.Beneficiary
	if err := query.Order("created_at DESC").Find(&beneficiaries).Error; err != nil {
		return nil, err
	}
	return beneficiaries, nil
}

func (s *GormBeneficiaryStore) Update(ctx context.Context, cnic string, patch BeneficiaryPatch) (*models.Beneficiary, error) {
	if _, err := s.Get(ctx, cnic); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if patch.FamilyMembers != nil {
		updates["family_members"] = *patch.FamilyMembers
	}
	if patch.IncomeLevel != nil {
		updates["income_level"] = *patch.IncomeLevel
	}

	if err := s.DB.WithContext(ctx).Model(&models.Beneficiary{}).Where("cnic = ?", cnic).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, cnic)
}

func (s *GormBeneficiaryStore) Finalize(ctx context.Context, cnic string, status models.BeneficiaryStatus, at time.Time, by string) (*models.Beneficiary, error) {
	res := s.DB.WithContext(ctx).Model(&models.Beneficiary{}).
		Where("cnic = ? AND status_finalized = ? AND status = ?", cnic, false, models.BeneficiaryPending).
		Updates(map[string]interface{}{
			"status":            status,
			"status_finalized":  true,
			"status_updated_at": at,
			"status_updated_by": by,
			"updated_at":        at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, cnic); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return s.Get(ctx, cnic)
}
