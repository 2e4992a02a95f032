package identity

import (
	"context"
	"errors"
	"os"
	"testing"

	"food-distribution-backend/apperror"
	"food-distribution-backend/database"
	"food-distribution-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}
	os.Exit(m.Run())
}

func freshProvider() *LocalProvider {
	testDB.Exec("DELETE FROM credentials")
	p := NewLocalProvider(testDB)
	p.Cost = bcrypt.MinCost
	return p
}

func provision(t *testing.T, p *LocalProvider, email, password string) *Credential {
	t.Helper()
	ctx := context.Background()
	scope, err := p.NewProvisioningScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer scope.Close()

	cred, err := scope.CreateCredential(ctx, email, password)
	if err != nil {
		t.Fatalf("CreateCredential failed: %v", err)
	}
	return cred
}

func authKind(t *testing.T, err error) *apperror.AuthError {
	t.Helper()
	var authErr *apperror.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	return authErr
}

func TestLocalAuthenticate(t *testing.T) {
	p := freshProvider()
	cred := provision(t, p, "Staff@Example.com", "secret1")

	got, err := p.Authenticate(context.Background(), "staff@example.com", "secret1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.UID != cred.UID {
		t.Errorf("expected uid %s, got %s", cred.UID, got.UID)
	}
}

func TestLocalAuthenticateFailures(t *testing.T) {
	p := freshProvider()
	provision(t, p, "staff@example.com", "secret1")

	authErr := authKind(t, func() error {
		_, err := p.Authenticate(context.Background(), "nobody@example.com", "secret1")
		return err
	}())
	if authErr.Kind != apperror.AccountNotFound || authErr.Field != apperror.FieldEmail {
		t.Errorf("expected AccountNotFound on email, got %s on %s", authErr.Kind, authErr.Field)
	}

	authErr = authKind(t, func() error {
		_, err := p.Authenticate(context.Background(), "staff@example.com", "wrong-pass")
		return err
	}())
	if authErr.Kind != apperror.InvalidCredentials || authErr.Field != apperror.FieldPassword {
		t.Errorf("expected InvalidCredentials on password, got %s on %s", authErr.Kind, authErr.Field)
	}

	testDB.Model(&models.Credential{}).Where("email = ?", "staff@example.com").Update("disabled", true)
	authErr = authKind(t, func() error {
		_, err := p.Authenticate(context.Background(), "staff@example.com", "secret1")
		return err
	}())
	if authErr.Kind != apperror.AccountDisabled {
		t.Errorf("expected AccountDisabled, got %s", authErr.Kind)
	}
}

func TestLocalProvisioningRejectsWeakPasswordAndDuplicates(t *testing.T) {
	p := freshProvider()
	ctx := context.Background()
	provision(t, p, "staff@example.com", "secret1")

	scope, _ := p.NewProvisioningScope(ctx)
	defer scope.Close()

	_, err := scope.CreateCredential(ctx, "new@example.com", "12345")
	if authErr := authKind(t, err); authErr.Kind != apperror.WeakPassword {
		t.Errorf("expected WeakPassword, got %s", authErr.Kind)
	}

	_, err = scope.CreateCredential(ctx, "STAFF@example.com", "secret2")
	if authErr := authKind(t, err); authErr.Kind != apperror.EmailInUse || authErr.Field != apperror.FieldEmail {
		t.Errorf("expected EmailInUse on email, got %s on %s", authErr.Kind, authErr.Field)
	}
}

func TestLocalScopeRollbackAndClose(t *testing.T) {
	p := freshProvider()
	ctx := context.Background()

	scope, _ := p.NewProvisioningScope(ctx)
	if _, err := scope.CreateCredential(ctx, "temp@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	if err := scope.Rollback(ctx); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	scope.Close()

	var count int64
	testDB.Model(&models.Credential{}).Where("email = ?", "temp@example.com").Count(&count)
	if count != 0 {
		t.Errorf("expected credential to be rolled back, found %d", count)
	}

	if _, err := scope.CreateCredential(ctx, "late@example.com", "secret1"); !errors.Is(err, ErrScopeClosed) {
		t.Errorf("expected ErrScopeClosed, got %v", err)
	}
}
