package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"food-distribution-backend/apperror"
	"food-distribution-backend/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocalProvider keeps bcrypt password hashes in the credentials table. It
// backs the relational deployment, where there is no hosted auth service.
type LocalProvider struct {
	DB   *gorm.DB
	Cost int
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{DB: db, Cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Credential, error) {
	var cred models.Credential
	err := p.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewAuthError(apperror.AccountNotFound, apperror.FieldEmail, "No account found with this email")
	}
	if err != nil {
		authErr := apperror.NewAuthError(apperror.NetworkFailure, apperror.FieldGeneral, "Unable to reach the authentication service")
		authErr.Err = err
		return nil, authErr
	}

	if cred.Disabled {
		return nil, apperror.NewAuthError(apperror.AccountDisabled, apperror.FieldGeneral, "This account has been disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldPassword, "Incorrect password")
	}

	return &Credential{UID: cred.UID, Email: cred.Email}, nil
}

func (p *LocalProvider) NewProvisioningScope(ctx context.Context) (ProvisioningScope, error) {
	return &localScope{provider: p}, nil
}

// Invalidate is a no-op: local sessions live only in the session revoker.
func (p *LocalProvider) Invalidate(ctx context.Context, uid string) error {
	return nil
}

type localScope struct {
	provider *LocalProvider
	mu       sync.Mutex
	created  *models.Credential
	closed   bool
}

func (s *localScope) CreateCredential(ctx context.Context, email, password string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrScopeClosed
	}

	if len(password) < MinPasswordLength {
		return nil, apperror.NewAuthError(apperror.WeakPassword, apperror.FieldPassword, "Password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.provider.Cost)
	if err != nil {
		return nil, err
	}

	cred := &models.Credential{
		UID:          uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
	}
	res := s.provider.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(cred)
	if res.Error != nil {
		authErr := apperror.NewAuthError(apperror.NetworkFailure, apperror.FieldGeneral, "Unable to reach the authentication service")
		authErr.Err = res.Error
		return nil, authErr
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NewAuthError(apperror.EmailInUse, apperror.FieldEmail, "An account with this email already exists")
	}

	s.created = cred
	return &Credential{UID: cred.UID, Email: cred.Email}, nil
}

func (s *localScope) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created == nil {
		return nil
	}
	if err := s.provider.DB.WithContext(ctx).Where("uid = ?", s.created.UID).Delete(&models.Credential{}).Error; err != nil {
		return err
	}
	s.created = nil
	return nil
}

func (s *localScope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
