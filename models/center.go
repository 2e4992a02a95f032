package models

import "time"

type DistributionCenter struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" firestore:"id"`
	Name      string    `gorm:"not null;index" json:"name" firestore:"name"`
	Address   string    `json:"address" firestore:"address"`
	Active    bool      `gorm:"not null" json:"active" firestore:"active"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (DistributionCenter) TableName() string {
	return "distribution_centers"
}
