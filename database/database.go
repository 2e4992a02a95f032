package database

import (
	"fmt"
	"time"

	"food-distribution-backend/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=food_distribution port=5432 sslmode=disable"

// Connect opens the Postgres database behind the relational backend.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = defaultDSN
		log.Warn("DATABASE_URL not set, using local default")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates or updates every table the relational backend uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Principal{},
		&models.Credential{},
		&models.Beneficiary{},
		&models.DistributionCenter{},
		&models.FoodSchedule{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
