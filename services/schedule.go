package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/dtos"
	"food-distribution-backend/events"
	"food-distribution-backend/models"
	"food-distribution-backend/policy"
	"food-distribution-backend/repository"
	"food-distribution-backend/session"
	"food-distribution-backend/utils"

	"github.com/google/uuid"
)

// tokenAttempts is the first candidate plus one regeneration.
const tokenAttempts = 2

type ScheduleService struct {
	store    *repository.Store
	tokens   *utils.TokenGenerator
	inflight *utils.InFlight
	emitter
}

func (s *ScheduleService) Create(ctx context.Context, sess *session.Context, req dtos.CreateScheduleRequest) (*models.FoodSchedule, error) {
	if err := authorize(sess, policy.ActionCreate, policy.On(policy.KindSchedule)); err != nil {
		return nil, err
	}

	req.CNIC = strings.TrimSpace(req.CNIC)
	req.PickupDate = strings.TrimSpace(req.PickupDate)
	req.PickupTime = strings.TrimSpace(req.PickupTime)
	req.DistributionCenter = strings.TrimSpace(req.DistributionCenter)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	release, ok := s.inflight.Acquire("schedule-create:" + req.CNIC)
	if !ok {
		return nil, apperror.ErrActionInProgress
	}
	defer release()

	center, err := s.store.Centers.FindByName(ctx, req.DistributionCenter)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Invalid("distributionCenter", "unknown distribution center")
	} else if err != nil {
		return nil, err
	}
	if !center.Active {
		return nil, apperror.Invalid("distributionCenter", "distribution center is not active")
	}

	// Re-read the beneficiary so a status change since the form loaded counts.
	b, err := s.store.Beneficiaries.Get(ctx, req.CNIC)
	if err != nil {
		return nil, storeError(entityBeneficiary, req.CNIC, err)
	}
	if b.Status != models.BeneficiaryApproved {
		return nil, apperror.Invalid("cnic", "beneficiary must be approved before scheduling")
	}

	if _, err := s.store.Schedules.FindByCNIC(ctx, req.CNIC); err == nil {
		return nil, &apperror.DuplicateKeyError{Entity: entitySchedule, Key: "cnic", Value: req.CNIC}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	token, err := s.allocateToken(ctx)
	if err != nil {
		return nil, err
	}

	fs := &models.FoodSchedule{
		ID:                 uuid.NewString(),
		Token:              token,
		CNIC:               req.CNIC,
		PickupDate:         req.PickupDate,
		PickupTime:         req.PickupTime,
		DistributionCenter: center.Name,
		CreatedBy:          sess.PrincipalID(),
		CreatedAt:          time.Now(),
	}
	if err := s.store.Schedules.Create(writeContext(ctx), fs); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, s.createConflict(ctx, req.CNIC)
		}
		return nil, storeError(entitySchedule, fs.ID, err)
	}

	s.publish(events.TopicSchedule, "schedule.created", fs.ID, sess, fs)
	s.success(ctx, sess, "Pickup scheduled with token "+fs.Token)
	return fs, nil
}

// createConflict names the key that made the insert fail. A schedule for
// the CNIC committed by another instance wins over a token collision.
func (s *ScheduleService) createConflict(ctx context.Context, cnic string) error {
	if _, err := s.store.Schedules.FindByCNIC(ctx, cnic); err == nil {
		return &apperror.DuplicateKeyError{Entity: entitySchedule, Key: "cnic", Value: cnic}
	}
	return &apperror.DuplicateKeyError{Entity: entitySchedule, Key: "token"}
}

// allocateToken returns an unused token, regenerating once on collision.
func (s *ScheduleService) allocateToken(ctx context.Context) (string, error) {
	for i := 0; i < tokenAttempts; i++ {
		candidate := s.tokens.Next()
		exists, err := s.store.Schedules.TokenExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &apperror.DuplicateKeyError{Entity: entitySchedule, Key: "token"}
}

func (s *ScheduleService) List(ctx context.Context, sess *session.Context, filter repository.ScheduleFilter) ([]models.FoodSchedule, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindSchedule)); err != nil {
		return nil, err
	}
	return s.store.Schedules.List(ctx, filter)
}

func (s *ScheduleService) Get(ctx context.Context, sess *session.Context, id string) (*models.FoodSchedule, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindSchedule)); err != nil {
		return nil, err
	}
	fs, err := s.store.Schedules.Get(ctx, id)
	if err != nil {
		return nil, storeError(entitySchedule, id, err)
	}
	return fs, nil
}

func (s *ScheduleService) FindByToken(ctx context.Context, sess *session.Context, token string) (*models.FoodSchedule, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindSchedule)); err != nil {
		return nil, err
	}
	token = utils.NormalizeToken(token)
	if !utils.IsValidToken(token) {
		return nil, apperror.Invalid("token", "must look like ABC-1234")
	}
	fs, err := s.store.Schedules.FindByToken(ctx, token)
	if err != nil {
		return nil, storeError(entitySchedule, token, err)
	}
	return fs, nil
}

// EligibleBeneficiaries lists approved beneficiaries without a schedule.
func (s *ScheduleService) EligibleBeneficiaries(ctx context.Context, sess *session.Context) ([]models.Beneficiary, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindBeneficiary)); err != nil {
		return nil, err
	}

	approved, err := s.store.Beneficiaries.List(ctx, models.BeneficiaryApproved)
	if err != nil {
		return nil, err
	}
	schedules, err := s.store.Schedules.List(ctx, repository.ScheduleFilter{})
	if err != nil {
		return nil, err
	}

	scheduled := make(map[string]bool, len(schedules))
	for _, fs := range schedules {
		scheduled[fs.CNIC] = true
	}
	eligible := make([]models.Beneficiary, 0, len(approved))
	for _, b := range approved {
		if !scheduled[b.CNIC] {
			eligible = append(eligible, b)
		}
	}
	return eligible, nil
}
