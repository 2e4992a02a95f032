package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/identity"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// AdminAuth is the slice of the Admin SDK auth client used for rollback and
// session invalidation. *auth.Client satisfies it.
type AdminAuth interface {
	DeleteUser(ctx context.Context, uid string) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// IdentityProvider signs in and provisions accounts through the Identity
// Toolkit REST API. Every provisioning scope uses its own REST client, so
// the tokens of a newly created account never reach another session.
type IdentityProvider struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Admin   AdminAuth
	log     *zap.Logger
	client  *resty.Client
}

func NewIdentityProvider(apiKey string, admin AdminAuth, log *zap.Logger) *IdentityProvider {
	p := &IdentityProvider{
		APIKey:  apiKey,
		BaseURL: DefaultIdentityToolkitURL,
		Timeout: 15 * time.Second,
		Admin:   admin,
		log:     log,
	}
	p.client = p.newClient()
	return p
}

// WithBaseURL points the provider at another endpoint, such as the auth
// emulator.
func (p *IdentityProvider) WithBaseURL(url string) *IdentityProvider {
	p.BaseURL = strings.TrimRight(url, "/")
	p.client = p.newClient()
	return p
}

func (p *IdentityProvider) newClient() *resty.Client {
	return resty.New().
		SetBaseURL(p.BaseURL).
		SetTimeout(p.Timeout).
		SetQueryParam("key", p.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type toolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// mapToolkitError turns an Identity Toolkit error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters" into an
// AuthError.
func mapToolkitError(message string) *apperror.AuthError {
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND":
		return apperror.NewAuthError(apperror.AccountNotFound, apperror.FieldEmail, "No account found with this email")
	case "INVALID_PASSWORD":
		return apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldPassword, "Incorrect password")
	case "INVALID_LOGIN_CREDENTIALS":
		return apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldGeneral, "Invalid email or password")
	case "INVALID_EMAIL":
		return apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldEmail, "Invalid email address")
	case "USER_DISABLED":
		return apperror.NewAuthError(apperror.AccountDisabled, apperror.FieldGeneral, "This account has been disabled")
	case "EMAIL_EXISTS":
		return apperror.NewAuthError(apperror.EmailInUse, apperror.FieldEmail, "An account with this email already exists")
	case "WEAK_PASSWORD":
		return apperror.NewAuthError(apperror.WeakPassword, apperror.FieldPassword, "Password must be at least 6 characters")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return apperror.NewAuthError(apperror.NetworkFailure, apperror.FieldGeneral, "Too many attempts, try again later")
	}
	return apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldGeneral, "Authentication failed")
}

func networkFailure(err error) *apperror.AuthError {
	authErr := apperror.NewAuthError(apperror.NetworkFailure, apperror.FieldGeneral, "Unable to reach the authentication service")
	authErr.Err = err
	return authErr
}

// call posts body to path and decodes the success payload.
func call(ctx context.Context, client *resty.Client, path string, body interface{}, result interface{}) error {
	var failure toolkitError
	resp, err := client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(&failure).
		Post(path)
	if err != nil {
		return networkFailure(err)
	}
	if resp.IsError() {
		if failure.Error.Message == "" {
			if resp.StatusCode() >= 500 {
				return networkFailure(fmt.Errorf("identity toolkit returned HTTP %d", resp.StatusCode()))
			}
			return apperror.NewAuthError(apperror.InvalidCredentials, apperror.FieldGeneral, "Authentication failed")
		}
		return mapToolkitError(failure.Error.Message)
	}
	return nil
}

func (p *IdentityProvider) Authenticate(ctx context.Context, email, password string) (*identity.Credential, error) {
	var out accountResponse
	req := passwordRequest{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true}
	if err := call(ctx, p.client, "/accounts:signInWithPassword", req, &out); err != nil {
		return nil, err
	}
	return &identity.Credential{UID: out.LocalID, Email: out.Email}, nil
}

func (p *IdentityProvider) NewProvisioningScope(ctx context.Context) (identity.ProvisioningScope, error) {
	return &provisioningScope{provider: p, client: p.newClient()}, nil
}

func (p *IdentityProvider) Invalidate(ctx context.Context, uid string) error {
	if p.Admin == nil {
		p.log.Debug("no admin auth client, skipping token revocation", zap.String("uid", uid))
		return nil
	}
	return p.Admin.RevokeRefreshTokens(ctx, uid)
}

type provisioningScope struct {
	provider *IdentityProvider
	mu       sync.Mutex
	client   *resty.Client
	created  *accountResponse
}

func (s *provisioningScope) CreateCredential(ctx context.Context, email, password string) (*identity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, identity.ErrScopeClosed
	}
	if len(password) < identity.MinPasswordLength {
		return nil, apperror.NewAuthError(apperror.WeakPassword, apperror.FieldPassword, "Password must be at least 6 characters")
	}

	var out accountResponse
	req := passwordRequest{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true}
	if err := call(ctx, s.client, "/accounts:signUp", req, &out); err != nil {
		return nil, err
	}
	s.created = &out
	return &identity.Credential{UID: out.LocalID, Email: out.Email}, nil
}

// Rollback deletes the account created in this scope. It uses the Admin SDK
// when available, otherwise the new account's own id token.
func (s *provisioningScope) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created == nil {
		return nil
	}

	var err error
	if s.provider.Admin != nil {
		err = s.provider.Admin.DeleteUser(ctx, s.created.LocalID)
	} else if s.client != nil {
		err = call(ctx, s.client, "/accounts:delete", map[string]string{"idToken": s.created.IDToken}, &struct{}{})
	} else {
		err = errors.New("scope closed before rollback")
	}
	if err != nil {
		return fmt.Errorf("rollback credential %s: %w", s.created.LocalID, err)
	}
	s.created = nil
	return nil
}

// Close drops the scope's client and the new account's tokens.
func (s *provisioningScope) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	if s.created != nil {
		s.created.IDToken = ""
	}
	return nil
}
