// Package identity defines the identity-provider contract used by the
// session service and a local bcrypt-backed implementation.
package identity

import (
	"context"
	"errors"
)

// MinPasswordLength is the shortest password any provider accepts.
const MinPasswordLength = 6

var ErrScopeClosed = errors.New("provisioning scope is closed")

type Credential struct {
	UID   string
	Email string
}

// Provider authenticates credentials and provisions new ones. Errors are
// *apperror.AuthError values.
type Provider interface {
	Authenticate(ctx context.Context, email, password string) (*Credential, error)
	// NewProvisioningScope returns an isolated context for creating one
	// credential. It never affects the caller's own session.
	NewProvisioningScope(ctx context.Context) (ProvisioningScope, error)
	// Invalidate revokes the provider-side sessions of uid.
	Invalidate(ctx context.Context, uid string) error
}

// ProvisioningScope is disposable. Close must be called on every path.
type ProvisioningScope interface {
	CreateCredential(ctx context.Context, email, password string) (*Credential, error)
	// Rollback deletes the credential created in this scope, if any.
	Rollback(ctx context.Context) error
	Close() error
}
