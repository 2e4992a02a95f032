package models

import "time"

// Credential backs the local identity provider. Firebase deployments never
// write this table.
type Credential struct {
	UID          string    `gorm:"column:uid;primaryKey;size:128" json:"uid"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Disabled     bool      `gorm:"not null" json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Credential) TableName() string {
	return "credentials"
}
