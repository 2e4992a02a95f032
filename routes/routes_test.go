package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"food-distribution-backend/database"
	"food-distribution-backend/events"
	"food-distribution-backend/identity"
	"food-distribution-backend/models"
	"food-distribution-backend/repository"
	"food-distribution-backend/services"
	"food-distribution-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-for-routes")
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func setupRouter(t *testing.T) (*gin.Engine, *repository.Store) {
	db := setupTestDB(t)
	store := repository.NewGormStore(db)
	bus := events.NewBus(events.DefaultBuffer)
	svc := services.New(services.Options{
		Store:    store,
		Identity: identity.NewLocalProvider(db),
		Bus:      bus,
		Log:      zap.NewNop(),
	})

	r := gin.New()
	limiter := SetupRoutes(r, Deps{Services: svc, Bus: bus})
	t.Cleanup(limiter.Stop)
	return r, store
}

func seedToken(t *testing.T, store *repository.Store, role models.Role) string {
	p := &models.Principal{
		ID:     uuid.NewString(),
		Name:   "Route Tester",
		Email:  "routes-" + string(role) + "@test.org",
		Role:   role,
		Status: models.PrincipalActive,
	}
	if err := store.Principals.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	token, _, err := utils.GenerateToken(p.ID, p.Email, string(p.Role))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)
	for _, path := range []string{"/api/beneficiaries", "/api/centers", "/api/dashboard/stats", "/api/users"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestAuthorizeGateBlocksStaff(t *testing.T) {
	r, store := setupRouter(t)
	token := seedToken(t, store, models.RoleStaff)

	tests := []struct {
		method, path string
	}{
		{"POST", "/api/centers"},
		{"POST", "/api/beneficiaries/1234567890123/approve"},
		{"POST", "/api/schedules"},
		{"GET", "/api/reports/distributed"},
		{"GET", "/api/users"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d: %s", tt.method, tt.path, w.Code, w.Body.String())
		}
	}
}

func TestStaffReachesSharedRoutes(t *testing.T) {
	r, store := setupRouter(t)
	token := seedToken(t, store, models.RoleStaff)

	for _, path := range []string{"/api/beneficiaries", "/api/centers", "/api/schedules", "/api/dashboard/stats"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	r, _ := setupRouter(t)

	var last int
	for i := 0; i < 11; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"x@test.org","password":"wrong1"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 10 attempts, got %d", last)
	}
}
