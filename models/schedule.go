package models

import "time"

// FoodSchedule is one pickup appointment. DistributionCenter holds the
// center's name, not its id, so renamed or deleted centers leave the old
// name behind.
type FoodSchedule struct {
	ID                 string     `gorm:"primaryKey;size:64" json:"id" firestore:"id"`
	Token              string     `gorm:"size:16;not null;uniqueIndex" json:"token" firestore:"token"`
	CNIC               string     `gorm:"column:cnic;size:13;not null;uniqueIndex" json:"cnic" firestore:"cnic"`
	PickupDate         string     `gorm:"size:10;not null;index" json:"pickupDate" firestore:"pickupDate"`
	PickupTime         string     `gorm:"size:5;not null" json:"pickupTime" firestore:"pickupTime"`
	DistributionCenter string     `gorm:"not null;index" json:"distributionCenter" firestore:"distributionCenter"`
	DistributedStatus  bool       `gorm:"not null;index" json:"distributedStatus" firestore:"distributedStatus"`
	DistributedAt      *time.Time `json:"distributedAt,omitempty" firestore:"distributedAt,omitempty"`
	DistributedBy      string     `json:"distributedBy,omitempty" firestore:"distributedBy,omitempty"`
	DistributedByName  string     `json:"distributedByName,omitempty" firestore:"distributedByName,omitempty"`
	CreatedBy          string     `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	CreatedAt          time.Time  `json:"createdAt" firestore:"createdAt"`
}

func (FoodSchedule) TableName() string {
	return "food_schedules"
}
