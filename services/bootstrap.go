package services

import (
	"context"
	"errors"
	"strings"

	"food-distribution-backend/apperror"
	"food-distribution-backend/models"
	"food-distribution-backend/repository"

	"go.uber.org/zap"
)

// BootstrapSuperAdmin seeds the only super_admin account. No operation can
// assign that role later. It is a no-op when the email already has a
// principal.
func (s *SessionService) BootstrapSuperAdmin(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.store.Principals.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	req := ProvisionRequest{Email: email, Password: password, Name: name, Role: models.RoleSuperAdmin}
	_, err := s.provision(ctx, nil, req, models.PrincipalActive)

	var authErr *apperror.AuthError
	if errors.As(err, &authErr) && authErr.Kind == apperror.EmailInUse {
		// The credential survived without its profile; reattach it.
		cred, authnErr := s.provider.Authenticate(ctx, email, password)
		if authnErr != nil {
			return authnErr
		}
		err = s.store.Principals.Create(ctx, &models.Principal{
			ID:     cred.UID,
			Name:   name,
			Email:  email,
			Role:   models.RoleSuperAdmin,
			Status: models.PrincipalActive,
		})
	}
	if err != nil {
		return err
	}

	s.log.Info("Default super admin created", zap.String("email", email))
	return nil
}
