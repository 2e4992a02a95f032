// Package repository holds the document-store contracts and their gorm and
// Firestore implementations. Business rules live in the services package;
// stores only enforce key uniqueness and conditional transitions.
package repository

import (
	"context"
	"errors"
	"time"

	"food-distribution-backend/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	// ErrConflict means the precondition of a conditional update no longer
	// holds. Callers re-read to find the authoritative state.
	ErrConflict = errors.New("record changed concurrently")
)

const (
	CollectionPrincipals    = "users"
	CollectionBeneficiaries = "beneficiaries"
	CollectionCenters       = "distributionCenters"
	CollectionSchedules     = "foodSchedules"
)

type PrincipalUpdate struct {
	Name                   *string
	Role                   *models.Role
	Status                 *models.PrincipalStatus
	CanCreateBeneficiaries *bool
}

type PrincipalStore interface {
	Create(ctx context.Context, p *models.Principal) error
	Get(ctx context.Context, id string) (*models.Principal, error)
	FindByEmail(ctx context.Context, email string) (*models.Principal, error)
	List(ctx context.Context) ([]models.Principal, error)
	Update(ctx context.Context, id string, u PrincipalUpdate) (*models.Principal, error)
	Delete(ctx context.Context, id string) error
}

type BeneficiaryPatch struct {
	Name          *string
	Phone         *string
	Address       *string
	FamilyMembers *int
	IncomeLevel   *models.IncomeLevel
}

type BeneficiaryStore interface {
	// Create fails with ErrAlreadyExists if the CNIC is taken.
	Create(ctx context.Context, b *models.Beneficiary) error
	Get(ctx context.Context, cnic string) (*models.Beneficiary, error)
	// List returns beneficiaries newest first. An empty status lists all.
	List(ctx context.Context, status models.BeneficiaryStatus) ([]models.Beneficiary, error)
	Update(ctx context.Context, cnic string, patch BeneficiaryPatch) (*models.Beneficiary, error)
	// Finalize moves a pending, unfinalized record to status. It fails with
	// ErrConflict if the record was finalized in the meantime.
	Finalize(ctx context.Context, cnic string, status models.BeneficiaryStatus, at time.Time, by string) (*models.Beneficiary, error)
}

type CenterStore interface {
	Create(ctx context.Context, c *models.DistributionCenter) error
	Get(ctx context.Context, id string) (*models.DistributionCenter, error)
	FindByName(ctx context.Context, name string) (*models.DistributionCenter, error)
	List(ctx context.Context) ([]models.DistributionCenter, error)
	Save(ctx context.Context, c *models.DistributionCenter) error
	Delete(ctx context.Context, id string) error
}

type ScheduleFilter struct {
	Distributed *bool
	Center      string
}

type ScheduleStore interface {
	// Create fails with ErrAlreadyExists if the id or token is taken, or if
	// the CNIC already has a schedule.
	Create(ctx context.Context, s *models.FoodSchedule) error
	Get(ctx context.Context, id string) (*models.FoodSchedule, error)
	FindByToken(ctx context.Context, token string) (*models.FoodSchedule, error)
	FindByCNIC(ctx context.Context, cnic string) (*models.FoodSchedule, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	// List returns schedules by pickup date, latest first.
	List(ctx context.Context, f ScheduleFilter) ([]models.FoodSchedule, error)
	CountByCenter(ctx context.Context, center string) (int64, error)
	// MarkDistributed flips distributedStatus to true. It fails with
	// ErrConflict if the schedule was already distributed.
	MarkDistributed(ctx context.Context, id string, at time.Time, by, byName string) (*models.FoodSchedule, error)
}

// Store groups the per-collection stores of one backend.
type Store struct {
	Principals    PrincipalStore
	Beneficiaries BeneficiaryStore
	Centers       CenterStore
	Schedules     ScheduleStore
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
