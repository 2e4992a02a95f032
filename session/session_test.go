package session

import (
	"context"
	"testing"
	"time"

	"food-distribution-backend/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestContextAccessorsOnNil(t *testing.T) {
	var s *Context
	if s.PrincipalID() != "" || s.Role() != "" {
		t.Error("expected empty values from nil context")
	}

	s = &Context{Principal: &models.Principal{ID: "u1", Role: models.RoleAdmin}}
	if s.PrincipalID() != "u1" || s.Role() != models.RoleAdmin {
		t.Errorf("unexpected accessors: %s %s", s.PrincipalID(), s.Role())
	}
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()
	now := time.Now()
	r.now = func() time.Time { return now }

	if err := r.Revoke(ctx, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("expected jti-1 to be revoked")
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-2"); revoked {
		t.Error("expected jti-2 to be valid")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("expected entry to lapse once the token expired")
	}
	if len(r.revoked) != 0 {
		t.Errorf("expected expired entry to be pruned, have %d", len(r.revoked))
	}
}

func TestMemoryRevokerIgnoresExpiredTokens(t *testing.T) {
	r := NewMemoryRevoker()
	r.Revoke(context.Background(), "old", time.Now().Add(-time.Minute))
	if len(r.revoked) != 0 {
		t.Error("expected already-expired token not to be stored")
	}
}

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	r := NewRedisRevoker(client)

	if err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if revoked, err := r.IsRevoked(ctx, "jti-1"); err != nil || !revoked {
		t.Errorf("expected jti-1 revoked, got %v (%v)", revoked, err)
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-2"); revoked {
		t.Error("expected jti-2 valid")
	}

	mr.FastForward(2 * time.Hour)
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("expected revocation key to expire with the token")
	}
}
