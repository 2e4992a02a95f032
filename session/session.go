// Package session carries the authenticated principal explicitly through
// request handling and tracks revoked session tokens.
package session

import (
	"context"
	"time"

	"food-distribution-backend/models"
)

// Context is the authenticated state of one request. Principal is re-read
// from the store when the context is built, so role and status are current.
type Context struct {
	Principal *models.Principal
	TokenID   string
	ExpiresAt time.Time
}

func (s *Context) PrincipalID() string {
	if s == nil || s.Principal == nil {
		return ""
	}
	return s.Principal.ID
}

func (s *Context) Role() models.Role {
	if s == nil || s.Principal == nil {
		return ""
	}
	return s.Principal.Role
}

// Revoker remembers signed-out token ids until they would have expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
