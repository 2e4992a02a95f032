package repository

import (
	"context"
	"time"

	"food-distribution-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormScheduleStore struct {
	DB *gorm.DB
}

func (s *GormScheduleStore) Create(ctx context.Context, fs *models.FoodSchedule) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fs)
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *GormScheduleStore) Get(ctx context.Context, id string) (*models.FoodSchedule, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormScheduleStore) FindByToken(ctx context.Context, token string) (*models.FoodSchedule, error) {
	return s.first(ctx, "token = ?", token)
}

func (s *GormScheduleStore) FindByCNIC(ctx context.Context, cnic string) (*models.FoodSchedule, error) {
	return s.first(ctx, "cnic = ?", cnic)
}

func (s *GormScheduleStore) first(ctx context.Context, query string, arg interface{}) (*models.FoodSchedule, error) {
	var fs models.FoodSchedule
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&fs).Error; err != nil {
		return nil, gormErr(err)
	}
	return &fs, nil
}

func (s *GormScheduleStore) TokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.FoodSchedule{}).Where("token = ?", token).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormScheduleStore) List(ctx context.Context, f ScheduleFilter) ([]models.FoodSchedule, error) {
	query := s.DB.WithContext(ctx).Model(&models.FoodSchedule{})
	if f.Distributed != nil {
		query = query.Where("distributed_status = ?", *f.Distributed)
	}
	if f.Center != "" {
		query = query.Where("distribution_center = ?", f.Center)
	}

	var schedules []models.FoodSchedule
	if err := query.Order("pickup_date DESC, pickup_time ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (s *GormScheduleStore) CountByCenter(ctx context.Context, center string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.FoodSchedule{}).Where("distribution_center = ?", center).Count(&count).Error
	return count, err
}

func (s *GormScheduleStore) MarkDistributed(ctx context.Context, id string, at time.Time, by, byName string) (*models.FoodSchedule, error) {
	res := s.DB.WithContext(ctx).Model(&models.FoodSchedule{}).
		Where("id = ? AND distributed_status = ?", id, false).
		Updates(map[string]interface{}{
			"distributed_status":  true,
			"distributed_at":      at,
			"distributed_by":      by,
			"distributed_by_name": byName,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return s.Get(ctx, id)
}
