package models

import "time"

type Role string

const (
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type PrincipalStatus string

const (
	PrincipalActive   PrincipalStatus = "active"
	PrincipalInactive PrincipalStatus = "inactive"
)

func (s PrincipalStatus) Valid() bool {
	return s == PrincipalActive || s == PrincipalInactive
}

// Principal is an account allowed to sign in to the portal. The ID is the
// identity provider's uid for the matching credential.
type Principal struct {
	ID                     string          `gorm:"primaryKey;size:128" json:"id" firestore:"uid"`
	Name                   string          `gorm:"not null" json:"name" firestore:"name"`
	Email                  string          `gorm:"uniqueIndex;not null" json:"email" firestore:"email"`
	Role                   Role            `gorm:"size:32;not null;index" json:"role" firestore:"role"`
	Status                 PrincipalStatus `gorm:"size:16;not null" json:"status" firestore:"status"`
	CanCreateBeneficiaries bool            `json:"canCreateBeneficiaries" firestore:"canCreateBeneficiaries"`
	CreatedAt              time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt" firestore:"updatedAt"`
}

func (Principal) TableName() string {
	return "users"
}

func (p *Principal) IsActive() bool {
	return p != nil && p.Status == PrincipalActive
}

func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.Role == RoleSuperAdmin
}
