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
	"go.uber.org/zap"
)

type CenterService struct {
	store *repository.Store
	emitter
}

func (s *CenterService) List(ctx context.Context, sess *session.Context) ([]models.DistributionCenter, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindCenter)); err != nil {
		return nil, err
	}
	return s.store.Centers.List(ctx)
}

func (s *CenterService) Get(ctx context.Context, sess *session.Context, id string) (*models.DistributionCenter, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindCenter)); err != nil {
		return nil, err
	}
	c, err := s.store.Centers.Get(ctx, id)
	if err != nil {
		return nil, storeError(entityCenter, id, err)
	}
	return c, nil
}

func normalizeCenter(req *dtos.CenterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	return utils.ValidateStruct(req)
}

// ensureNameFree rejects a name already used by another center. Schedules
// reference centers by name, so names must stay unique.
func (s *CenterService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.store.Centers.FindByName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return &apperror.DuplicateKeyError{Entity: entityCenter, Key: "name", Value: name}
	}
	return nil
}

func (s *CenterService) Create(ctx context.Context, sess *session.Context, req dtos.CenterRequest) (*models.DistributionCenter, error) {
	if err := authorize(sess, policy.ActionCreate, policy.On(policy.KindCenter)); err != nil {
		return nil, err
	}
	if err := normalizeCenter(&req); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &models.DistributionCenter{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   req.Address,
		Active:    req.Active == nil || *req.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Centers.Create(writeContext(ctx), c); err != nil {
		return nil, storeError(entityCenter, c.ID, err)
	}

	s.publish(events.TopicCenter, "center.created", c.ID, sess, c)
	s.success(ctx, sess, "Distribution center "+c.Name+" created")
	return c, nil
}

func (s *CenterService) Update(ctx context.Context, sess *session.Context, id string, req dtos.CenterRequest) (*models.DistributionCenter, error) {
	if err := authorize(sess, policy.ActionUpdate, policy.On(policy.KindCenter)); err != nil {
		return nil, err
	}
	if err := normalizeCenter(&req); err != nil {
		return nil, err
	}

	c, err := s.store.Centers.Get(ctx, id)
	if err != nil {
		return nil, storeError(entityCenter, id, err)
	}
	if err := s.ensureNameFree(ctx, req.Name, c.ID); err != nil {
		return nil, err
	}

	c.Name = req.Name
	c.Address = req.Address
	if req.Active != nil {
		c.Active = *req.Active
	}
	c.UpdatedAt = time.Now()
	if err := s.store.Centers.Save(writeContext(ctx), c); err != nil {
		return nil, storeError(entityCenter, id, err)
	}

	s.publish(events.TopicCenter, "center.updated", c.ID, sess, c)
	s.success(ctx, sess, "Distribution center "+c.Name+" updated")
	return c, nil
}

// Delete removes the center. Schedules that reference it keep the old name;
// the response reports how many there are.
func (s *CenterService) Delete(ctx context.Context, sess *session.Context, id string) (*dtos.CenterDeleteResponse, error) {
	if err := authorize(sess, policy.ActionDelete, policy.On(policy.KindCenter)); err != nil {
		return nil, err
	}

	c, err := s.store.Centers.Get(ctx, id)
	if err != nil {
		return nil, storeError(entityCenter, id, err)
	}
	if err := s.store.Centers.Delete(writeContext(ctx), id); err != nil {
		return nil, storeError(entityCenter, id, err)
	}

	refs, err := s.store.Schedules.CountByCenter(ctx, c.Name)
	if err != nil {
		s.log.Warn("failed to count schedules for deleted center", zap.String("center", c.Name), zap.Error(err))
	}

	s.publish(events.TopicCenter, "center.deleted", c.ID, sess, c)
	s.success(ctx, sess, "Distribution center "+c.Name+" deleted")
	return &dtos.CenterDeleteResponse{ID: c.ID, Name: c.Name, ReferencingSchedules: int(refs)}, nil
}
