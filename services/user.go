package services

import (
	"context"
	"strings"

	"food-distribution-backend/apperror"
	"food-distribution-backend/dtos"
	"food-distribution-backend/events"
	"food-distribution-backend/identity"
	"food-distribution-backend/models"
	"food-distribution-backend/policy"
	"food-distribution-backend/repository"
	"food-distribution-backend/session"

	"go.uber.org/zap"
)

// UserService manages principal records. A super_admin is never a valid
// target.
type UserService struct {
	store    *repository.Store
	sessions *SessionService
	provider identity.Provider
	emitter
}

func (s *UserService) List(ctx context.Context, sess *session.Context) ([]models.Principal, error) {
	if err := authorize(sess, policy.ActionView, policy.On(policy.KindPrincipal)); err != nil {
		return nil, err
	}
	return s.store.Principals.List(ctx)
}

func (s *UserService) Create(ctx context.Context, sess *session.Context, req dtos.CreateUserRequest) (*models.Principal, error) {
	if sess == nil {
		return nil, apperror.ErrUnauthenticated
	}
	return s.sessions.ProvisionAccount(ctx, sess, ProvisionRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.Role(strings.TrimSpace(req.Role)),
	})
}

// target loads the principal and gates action against its current role.
func (s *UserService) target(ctx context.Context, sess *session.Context, id string, action policy.Action, requested models.Role) (*models.Principal, error) {
	if sess == nil || sess.Principal == nil {
		return nil, apperror.ErrUnauthenticated
	}
	p, err := s.store.Principals.Get(ctx, id)
	if err != nil {
		return nil, storeError(entityPrincipal, id, err)
	}
	res := policy.Resource{Kind: policy.KindPrincipal, TargetRole: p.Role, RequestedRole: requested}
	if err := authorize(sess, action, res); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *UserService) update(ctx context.Context, sess *session.Context, id string, u repository.PrincipalUpdate, message string) (*models.Principal, error) {
	p, err := s.store.Principals.Update(writeContext(ctx), id, u)
	if err != nil {
		return nil, storeError(entityPrincipal, id, err)
	}
	s.publish(events.TopicPrincipal, "principal.updated", p.ID, sess, p)
	s.success(ctx, sess, message)
	return p, nil
}

func (s *UserService) UpdateRole(ctx context.Context, sess *session.Context, id string, role models.Role) (*models.Principal, error) {
	if !role.Valid() {
		return nil, apperror.Invalid("role", "must be one of: staff, admin")
	}
	p, err := s.target(ctx, sess, id, policy.ActionUpdate, role)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, sess, id, repository.PrincipalUpdate{Role: &role}, "Role of "+p.Email+" set to "+string(role))
}

// UpdateStatus activates or deactivates an account. Deactivation also
// revokes the account's provider sessions.
func (s *UserService) UpdateStatus(ctx context.Context, sess *session.Context, id string, status models.PrincipalStatus) (*models.Principal, error) {
	if !status.Valid() {
		return nil, apperror.Invalid("status", "must be one of: active, inactive")
	}
	p, err := s.target(ctx, sess, id, policy.ActionUpdate, "")
	if err != nil {
		return nil, err
	}

	updated, err := s.update(ctx, sess, id, repository.PrincipalUpdate{Status: &status}, "Account "+p.Email+" is now "+string(status))
	if err != nil {
		return nil, err
	}
	if status == models.PrincipalInactive {
		s.invalidate(ctx, id)
	}
	return updated, nil
}

// SetBeneficiaryPermission toggles whether a staff account may register
// beneficiaries.
func (s *UserService) SetBeneficiaryPermission(ctx context.Context, sess *session.Context, id string, allowed bool) (*models.Principal, error) {
	p, err := s.target(ctx, sess, id, policy.ActionUpdate, "")
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleStaff {
		return nil, apperror.Invalid("canCreateBeneficiaries", "only applies to staff accounts")
	}

	verb := "revoked from "
	if allowed {
		verb = "granted to "
	}
	return s.update(ctx, sess, id, repository.PrincipalUpdate{CanCreateBeneficiaries: &allowed}, "Beneficiary registration "+verb+p.Email)
}

func (s *UserService) Delete(ctx context.Context, sess *session.Context, id string) error {
	p, err := s.target(ctx, sess, id, policy.ActionDelete, "")
	if err != nil {
		return err
	}
	if err := s.store.Principals.Delete(writeContext(ctx), id); err != nil {
		return storeError(entityPrincipal, id, err)
	}
	s.invalidate(ctx, id)

	s.publish(events.TopicPrincipal, "principal.deleted", id, sess, p)
	s.success(ctx, sess, "Account "+p.Email+" deleted")
	return nil
}

func (s *UserService) invalidate(ctx context.Context, uid string) {
	if err := s.provider.Invalidate(writeContext(ctx), uid); err != nil {
		s.log.Warn("failed to invalidate provider sessions", zap.String("uid", uid), zap.Error(err))
	}
}
