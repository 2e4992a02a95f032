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
)

type BeneficiaryService struct {
	store *repository.Store
	emitter
}

func (s *BeneficiaryService) Create(ctx context.Context, sess *session.Context, req dtos.CreateBeneficiaryRequest) (*models.Beneficiary, error) {
	if err := authorize(sess, policy.ActionCreate, policy.On(policy.KindBeneficiary)); err != nil {
		return nil, err
	}

	req.CNIC = strings.TrimSpace(req.CNIC)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.store.Beneficiaries.Get(ctx, req.CNIC); err == nil {
		return nil, &apperror.DuplicateKeyError{Entity: entityBeneficiary, Key: "cnic", Value: req.CNIC}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	b := &models.Beneficiary{
		CNIC:          req.CNIC,
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		FamilyMembers: req.FamilyMembers,
		IncomeLevel:   models.IncomeLevel(req.IncomeLevel),
		Status:        models.BeneficiaryPending,
		CreatedBy:     sess.PrincipalID(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Beneficiaries.Create(writeContext(ctx), b); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, &apperror.DuplicateKeyError{Entity: entityBeneficiary, Key: "cnic", Value: req.CNIC}
		}
		return nil, storeError(entityBeneficiary, req.CNIC, err)
	}

	s.publish(events.TopicBeneficiary, "beneficiary.created", b.CNIC, sess, b)
	s.success(ctx, sess, "Beneficiary "+b.Name+" registered")
	return b, nil
}

func (s *BeneficiaryService) Get(ctx context.Context, sess *session.Context, cnic string) (*models.Beneficiary, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindBeneficiary)); err != nil {
		return nil, err
	}
	cnic = strings.TrimSpace(cnic)
	if err := validCNIC(cnic); err != nil {
		return nil, err
	}

	b, err := s.store.Beneficiaries.Get(ctx, cnic)
	if err != nil {
		return nil, storeError(entityBeneficiary, cnic, err)
	}
	return b, nil
}

// List returns beneficiaries newest first, optionally narrowed by status and
// a case-insensitive search over name, cnic and phone.
func (s *BeneficiaryService) List(ctx context.Context, sess *session.Context, search string, status models.BeneficiaryStatus) ([]models.Beneficiary, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindBeneficiary)); err != nil {
		return nil, err
	}
	switch status {
	case "", models.BeneficiaryPending, models.BeneficiaryApproved, models.BeneficiaryRejected:
	default:
		return nil, apperror.Invalid("status", "must be one of: pending, approved, rejected")
	}

	all, err := s.store.Beneficiaries.List(ctx, status)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return all, nil
	}
	matched := make([]models.Beneficiary, 0, len(all))
	for _, b := range all {
		if strings.Contains(strings.ToLower(b.Name), search) ||
			strings.Contains(b.CNIC, search) ||
			strings.Contains(strings.ToLower(b.Phone), search) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// Update applies a partial patch of the editable fields. CNIC is immutable
// and status only moves through the workflow.
func (s *BeneficiaryService) Update(ctx context.Context, sess *session.Context, cnic string, req dtos.UpdateBeneficiaryRequest) (*models.Beneficiary, error) {
	if err := authorize(sess, policy.ActionUpdate, policy.On(policy.KindBeneficiary)); err != nil {
		return nil, err
	}
	cnic = strings.TrimSpace(cnic)
	if err := validCNIC(cnic); err != nil {
		return nil, err
	}
	if req.CNIC != nil && strings.TrimSpace(*req.CNIC) != cnic {
		return nil, apperror.Invalid("cnic", "cannot be changed")
	}
	if req.Status != nil {
		return nil, apperror.Invalid("status", "changes only through approve or reject")
	}
	if req.Empty() {
		return nil, apperror.Invalid("", "no fields to update")
	}

	patch := repository.BeneficiaryPatch{FamilyMembers: req.FamilyMembers}
	patch.Name = trimmed(req.Name)
	patch.Phone = trimmed(req.Phone)
	patch.Address = trimmed(req.Address)
	req.Name, req.Phone, req.Address = patch.Name, patch.Phone, patch.Address
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.IncomeLevel != nil {
		level := models.IncomeLevel(*req.IncomeLevel)
		patch.IncomeLevel = &level
	}

	b, err := s.store.Beneficiaries.Update(writeContext(ctx), cnic, patch)
	if err != nil {
		return nil, storeError(entityBeneficiary, cnic, err)
	}

	s.publish(events.TopicBeneficiary, "beneficiary.updated", b.CNIC, sess, b)
	s.success(ctx, sess, "Beneficiary "+b.Name+" updated")
	return b, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
