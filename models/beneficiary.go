package models

import "time"

type IncomeLevel string

const (
	IncomeVeryLow IncomeLevel = "Very Low"
	IncomeLow     IncomeLevel = "Low"
	IncomeMiddle  IncomeLevel = "Middle"
)

var IncomeLevels = []IncomeLevel{IncomeVeryLow, IncomeLow, IncomeMiddle}

func (l IncomeLevel) Valid() bool {
	for _, v := range IncomeLevels {
		if l == v {
			return true
		}
	}
	return false
}

type BeneficiaryStatus string

const (
	BeneficiaryPending  BeneficiaryStatus = "pending"
	BeneficiaryApproved BeneficiaryStatus = "approved"
	BeneficiaryRejected BeneficiaryStatus = "rejected"
)

// Terminal reports whether no further transition is possible from s.
func (s BeneficiaryStatus) Terminal() bool {
	return s == BeneficiaryApproved || s == BeneficiaryRejected
}

// Beneficiary is keyed by CNIC, which is also the document id in the
// document store.
type Beneficiary struct {
	CNIC            string            `gorm:"column:cnic;primaryKey;size:13" json:"cnic" firestore:"cnic"`
	Name            string            `gorm:"not null;index" json:"name" firestore:"name"`
	Phone           string            `gorm:"not null" json:"phone" firestore:"phone"`
	Address         string            `gorm:"not null" json:"address" firestore:"address"`
	FamilyMembers   int               `gorm:"not null" json:"familyMembers" firestore:"familyMembers"`
	IncomeLevel     IncomeLevel       `gorm:"size:16;not null" json:"incomeLevel" firestore:"incomeLevel"`
	Status          BeneficiaryStatus `gorm:"size:16;not null;index" json:"status" firestore:"status"`
	StatusFinalized bool              `gorm:"not null" json:"statusFinalized" firestore:"statusFinalized"`
	StatusUpdatedAt *time.Time        `json:"statusUpdatedAt,omitempty" firestore:"statusUpdatedAt,omitempty"`
	StatusUpdatedBy string            `json:"statusUpdatedBy,omitempty" firestore:"statusUpdatedBy,omitempty"`
	CreatedBy       string            `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	CreatedAt       time.Time         `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt" firestore:"updatedAt"`
}

func (Beneficiary) TableName() string {
	return "beneficiaries"
}

// IsFinalized treats a terminal status as final even when the flag was
// never written, which is how older records look.
func (b *Beneficiary) IsFinalized() bool {
	return b.StatusFinalized || b.Status.Terminal()
}
