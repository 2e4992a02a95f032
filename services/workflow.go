package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/events"
	"food-distribution-backend/models"
	"food-distribution-backend/policy"
	"food-distribution-backend/repository"
	"food-distribution-backend/session"
	"food-distribution-backend/utils"
)

// WorkflowService moves beneficiaries from pending to a final status and
// schedules from pending to distributed. Both transitions happen once.
type WorkflowService struct {
	store    *repository.Store
	inflight *utils.InFlight
	now      func() time.Time
	emitter
}

func (s *WorkflowService) Approve(ctx context.Context, sess *session.Context, cnic string) (*models.Beneficiary, error) {
	return s.finalize(ctx, sess, cnic, policy.ActionApprove, models.BeneficiaryApproved)
}

func (s *WorkflowService) Reject(ctx context.Context, sess *session.Context, cnic string) (*models.Beneficiary, error) {
	return s.finalize(ctx, sess, cnic, policy.ActionReject, models.BeneficiaryRejected)
}

func (s *WorkflowService) finalize(ctx context.Context, sess *session.Context, cnic string, action policy.Action, status models.BeneficiaryStatus) (*models.Beneficiary, error) {
	if err := authorize(sess, action, policy.On(policy.KindBeneficiary)); err != nil {
		return nil, err
	}
	cnic = strings.TrimSpace(cnic)
	if err := validCNIC(cnic); err != nil {
		return nil, err
	}

	release, ok := s.inflight.Acquire("beneficiary:" + cnic)
	if !ok {
		return nil, apperror.ErrActionInProgress
	}
	defer release()

	ctx = writeContext(ctx)
	current, err := s.store.Beneficiaries.Get(ctx, cnic)
	if err != nil {
		return nil, storeError(entityBeneficiary, cnic, err)
	}
	if current.IsFinalized() {
		return nil, s.alreadyFinalized(ctx, sess, current)
	}

	updated, err := s.store.Beneficiaries.Finalize(ctx, cnic, status, s.now(), sess.PrincipalID())
	if errors.Is(err, repository.ErrConflict) {
		latest, getErr := s.store.Beneficiaries.Get(ctx, cnic)
		if getErr != nil {
			return nil, storeError(entityBeneficiary, cnic, getErr)
		}
		return nil, s.alreadyFinalized(ctx, sess, latest)
	}
	if err != nil {
		return nil, storeError(entityBeneficiary, cnic, err)
	}

	s.publish(events.TopicBeneficiary, "beneficiary."+string(status), cnic, sess, updated)
	s.success(ctx, sess, "Beneficiary "+updated.Name+" "+string(status))
	return updated, nil
}

// alreadyFinalized tells the caller who lost the race and returns the
// authoritative record with the error.
func (s *WorkflowService) alreadyFinalized(ctx context.Context, sess *session.Context, current *models.Beneficiary) error {
	s.failure(ctx, sess, "Beneficiary "+current.Name+" is already "+string(current.Status))
	return &apperror.AlreadyFinalizedError{Key: current.CNIC, Current: current}
}

// MarkDistributed records the pickup. When the package was already handed
// out it returns the current record together with ErrAlreadyDistributed.
func (s *WorkflowService) MarkDistributed(ctx context.Context, sess *session.Context, id string) (*models.FoodSchedule, error) {
	if err := authorize(sess, policy.ActionDistribute, policy.On(policy.KindSchedule)); err != nil {
		return nil, err
	}

	release, ok := s.inflight.Acquire("schedule:" + id)
	if !ok {
		return nil, apperror.ErrActionInProgress
	}
	defer release()

	ctx = writeContext(ctx)
	current, err := s.store.Schedules.Get(ctx, id)
	if err != nil {
		return nil, storeError(entitySchedule, id, err)
	}
	if current.DistributedStatus {
		return s.alreadyDistributed(ctx, sess, current)
	}

	updated, err := s.store.Schedules.MarkDistributed(ctx, id, s.now(), sess.PrincipalID(), sess.Principal.Name)
	if errors.Is(err, repository.ErrConflict) {
		latest, getErr := s.store.Schedules.Get(ctx, id)
		if getErr != nil {
			return nil, storeError(entitySchedule, id, getErr)
		}
		return s.alreadyDistributed(ctx, sess, latest)
	}
	if err != nil {
		return nil, storeError(entitySchedule, id, err)
	}

	s.publish(events.TopicSchedule, "schedule.distributed", id, sess, updated)
	s.success(ctx, sess, "Package "+updated.Token+" marked as distributed")
	return updated, nil
}

func (s *WorkflowService) alreadyDistributed(ctx context.Context, sess *session.Context, current *models.FoodSchedule) (*models.FoodSchedule, error) {
	s.failure(ctx, sess, "Package "+current.Token+" was already distributed")
	return current, apperror.ErrAlreadyDistributed
}

func (s *WorkflowService) MarkDistributedByToken(ctx context.Context, sess *session.Context, token string) (*models.FoodSchedule, error) {
	if err := authorize(sess, policy.ActionDistribute, policy.On(policy.KindSchedule)); err != nil {
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
	return s.MarkDistributed(ctx, sess, fs.ID)
}
