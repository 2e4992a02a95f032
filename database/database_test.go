package database

import (
	"testing"
	"time"

	"food-distribution-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestMigrateCreatesTables(t *testing.T) {
	db := setupTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	for _, table := range []string{"users", "credentials", "beneficiaries", "distribution_centers", "food_schedules"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("expected table %s to exist", table)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("first Migrate failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestMigratedScheduleTokenIsUnique(t *testing.T) {
	db := setupTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}

	first := models.FoodSchedule{ID: "s1", Token: "SAY-1000", CNIC: "1234567890123", PickupDate: "2025-03-14", PickupTime: "10:00", DistributionCenter: "Sector-7", CreatedAt: time.Now()}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("failed to create schedule: %v", err)
	}

	second := first
	second.ID = "s2"
	second.CNIC = "1234567890124"
	if err := db.Create(&second).Error; err == nil {
		t.Error("expected unique violation on duplicate token")
	}
}
