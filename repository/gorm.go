package repository

import (
	"errors"

	"gorm.io/gorm"
)

// NewGormStore backs every collection with a table on db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Principals:    &GormPrincipalStore{DB: db},
		Beneficiaries: &GormBeneficiaryStore{DB: db},
		Centers:       &GormCenterStore{DB: db},
		Schedules:     &GormScheduleStore{DB: db},
	}
}

func gormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}
