package repository

import (
	"context"

	"food-distribution-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormCenterStore struct {
	DB *gorm.DB
}

func (s *GormCenterStore) Create(ctx context.Context, c *models.DistributionCenter) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(c)
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormCenterStore) Get(ctx context.Context, id string) (*models.DistributionCenter, error) {
	var c models.DistributionCenter
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, gormErr(err)
	}
	return &c, nil
}

func (s *GormCenterStore) FindByName(ctx context.Context, name string) (*models.DistributionCenter, error) {
	var c models.DistributionCenter
	if err := s.DB.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, gormErr(err)
	}
	return &c, nil
}

func (s *GormCenterStore) List(ctx context.Context) ([]models.DistributionCenter, error) {
	var centers []models.DistributionCenter
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

// Save writes every field of an existing center.
func (s *GormCenterStore) Save(ctx context.Context, c *models.DistributionCenter) error {
	res := s.DB.WithContext(ctx).Model(&models.DistributionCenter{}).Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"address":    c.Address,
			"active":     c.Active,
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormCenterStore) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.DistributionCenter{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
