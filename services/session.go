package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/events"
	"food-distribution-backend/identity"
	"food-distribution-backend/models"
	"food-distribution-backend/notify"
	"food-distribution-backend/policy"
	"food-distribution-backend/repository"
	"food-distribution-backend/session"
	"food-distribution-backend/utils"

	"go.uber.org/zap"
)

// SessionService signs principals in and out and provisions accounts.
type SessionService struct {
	store    *repository.Store
	provider identity.Provider
	revoker  session.Revoker
	mailer   *notify.Mailer
	emitter
}

type SignInResult struct {
	Token     string
	ExpiresAt time.Time
	Principal *models.Principal
}

type ProvisionRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"notblank"`
	Role     models.Role
}

// asAuthError passes AuthErrors through and reports anything else from the
// provider as a network failure.
func asAuthError(err error) error {
	var authErr *apperror.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	wrapped := apperror.NewAuthError(apperror.NetworkFailure, apperror.FieldGeneral, "Unable to reach the authentication service")
	wrapped.Err = err
	return wrapped
}

func (s *SessionService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldEmail, "Email is required")
	}
	if password == "" {
		return nil, apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldPassword, "Password is required")
	}

	cred, err := s.provider.Authenticate(ctx, email, password)
	if err != nil {
		return nil, asAuthError(err)
	}

	principal, err := s.store.Principals.Get(ctx, cred.UID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewAuthError(apperror.AccountNotFound, apperror.FieldGeneral, "No portal profile exists for this account")
	}
	if err != nil {
		return nil, asAuthError(err)
	}

	if !principal.IsActive() {
		if err := s.provider.Invalidate(ctx, cred.UID); err != nil {
			s.log.Warn("failed to invalidate disabled account", zap.String("uid", cred.UID), zap.Error(err))
		}
		return nil, apperror.NewAuthError(apperror.AccountDisabled, apperror.FieldGeneral, "Your account has been deactivated. Please contact an administrator.")
	}

	token, claims, err := utils.GenerateToken(principal.ID, principal.Email, string(principal.Role))
	if err != nil {
		return nil, err
	}

	sess := &session.Context{Principal: principal, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
	s.publish(events.TopicSession, "session.signed_in", principal.ID, sess, nil)

	return &SignInResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, Principal: principal}, nil
}

// SignOut revokes this session token only. Other sessions of the same
// principal stay valid.
func (s *SessionService) SignOut(ctx context.Context, sess *session.Context) error {
	if sess == nil || sess.Principal == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		s.log.Warn("failed to record token revocation", zap.String("token_id", sess.TokenID), zap.Error(err))
	}
	s.publish(events.TopicSession, "session.signed_out", sess.Principal.ID, sess, nil)
	return nil
}

// Authenticate validates a session token and re-reads its principal.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*session.Context, error) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.log.Warn("revocation check failed", zap.Error(err))
		return nil, apperror.ErrUnauthenticated
	}
	if revoked {
		return nil, apperror.ErrUnauthenticated
	}

	principal, err := s.store.Principals.Get(ctx, claims.PrincipalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NewAuthError(apperror.AccountNotFound, apperror.FieldGeneral, "Account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if !principal.IsActive() {
		return nil, apperror.NewAuthError(apperror.AccountDisabled, apperror.FieldGeneral, "Your account has been deactivated")
	}

	return &session.Context{Principal: principal, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// ProvisionAccount creates a credential and its principal. A nil actor is
// self-service sign-up and always yields a staff account. The actor's own
// session is never modified.
func (s *SessionService) ProvisionAccount(ctx context.Context, actor *session.Context, req ProvisionRequest) (*models.Principal, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Password) < identity.MinPasswordLength {
		return nil, apperror.NewAuthError(apperror.WeakPassword, apperror.FieldPassword, "Password must be at least 6 characters")
	}

	if actor == nil {
		req.Role = models.RoleStaff
	} else {
		if !req.Role.Valid() {
			return nil, apperror.Invalid("role", "must be one of: staff, admin")
		}
		if err := authorize(actor, policy.ActionCreate, policy.Resource{Kind: policy.KindPrincipal, RequestedRole: req.Role}); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.Principals.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.NewAuthError(apperror.EmailInUse, apperror.FieldEmail, "An account with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, asAuthError(err)
	}

	return s.provision(writeContext(ctx), actor, req, models.PrincipalActive)
}

func (s *SessionService) provision(ctx context.Context, actor *session.Context, req ProvisionRequest, status models.PrincipalStatus) (*models.Principal, error) {
	scope, err := s.provider.NewProvisioningScope(ctx)
	if err != nil {
		return nil, asAuthError(err)
	}
	defer func() {
		if err := scope.Close(); err != nil {
			s.log.Warn("failed to close provisioning scope", zap.Error(err))
		}
	}()

	cred, err := scope.CreateCredential(ctx, req.Email, req.Password)
	if err != nil {
		return nil, asAuthError(err)
	}

	principal := &models.Principal{
		ID:                     cred.UID,
		Name:                   req.Name,
		Email:                  req.Email,
		Role:                   req.Role,
		Status:                 status,
		CanCreateBeneficiaries: req.Role == models.RoleStaff,
	}
	if err := s.store.Principals.Create(ctx, principal); err != nil {
		if rbErr := scope.Rollback(ctx); rbErr != nil {
			s.log.Error("failed to roll back credential after profile write failed",
				zap.String("uid", cred.UID), zap.Error(rbErr))
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperror.NewAuthError(apperror.EmailInUse, apperror.FieldEmail, "An account with this email already exists")
		}
		return nil, storeError(entityPrincipal, cred.UID, err)
	}

	s.publish(events.TopicSession, "session.provisioned", principal.ID, actor, principal)
	s.publish(events.TopicPrincipal, "principal.created", principal.ID, actor, principal)
	s.success(ctx, actor, "Account created for "+principal.Email)
	if s.mailer.Enabled() {
		s.mailer.SendAccountCreated(principal.Email, principal.Name, string(principal.Role))
	}

	return principal, nil
}
