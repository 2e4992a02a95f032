package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"food-distribution-backend/apperror"
	"food-distribution-backend/dtos"
	"food-distribution-backend/models"
	"food-distribution-backend/repository"
	"food-distribution-backend/utils"
)

func scheduleRequest(cnic, center string) dtos.CreateScheduleRequest {
	return dtos.CreateScheduleRequest{
		CNIC:               cnic,
		PickupDate:         "2026-10-20",
		PickupTime:         "09:30",
		DistributionCenter: center,
	}
}

func TestCreateSchedule(t *testing.T) {
	env := freshEnv()
	ctx := context.Background()
	admin := seedPrincipal(t, env, models.RoleAdmin)
	seedBeneficiary(t, env, "1111111111111", models.BeneficiaryApproved)
	seedCenter(t, env, "Sector-7", true)

	fs, err := env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Sector-7"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !utils.IsValidToken(fs.Token) || fs.Token[:4] != "SAY-" {
		t.Errorf("Unexpected token %q", fs.Token)
	}
	if fs.DistributedStatus || fs.DistributedAt != nil {
		t.Error("Expected new schedule to be undistributed")
	}

	found, err := env.svc.Schedules.FindByToken(ctx, admin, fs.Token)
	if err != nil || found.ID != fs.ID {
		t.Fatalf("FindByToken failed: %v", err)
	}

	_, err = env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Sector-7"))
	var dup *apperror.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Key != "cnic" {
		t.Fatalf("Expected duplicate cnic, got %v", err)
	}
}

func TestCreateScheduleForPendingBeneficiary(t *testing.T) {
	env := freshEnv()
	ctx := context.Background()
	admin := seedPrincipal(t, env, models.RoleAdmin)
	seedBeneficiary(t, env, "1111111111111", models.BeneficiaryPending)
	seedCenter(t, env, "Sector-7", true)

	_, err := env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Sector-7"))
	expectField(t, err, "cnic")

	all, _ := env.store.Schedules.List(ctx, repository.ScheduleFilter{})
	if len(all) != 0 {
		t.Errorf("Expected nothing written, got %d schedules", len(all))
	}
}

func TestCreateScheduleRules(t *testing.T) {
	env := freshEnv()
	ctx := context.Background()
	admin := seedPrincipal(t, env, models.RoleAdmin)
	staff := seedPrincipal(t, env, models.RoleStaff)
	seedBeneficiary(t, env, "1111111111111", models.BeneficiaryApproved)
	seedCenter(t, env, "Sector-7", true)
	seedCenter(t, env, "Closed", false)

	_, err := env.svc.Schedules.Create(ctx, staff, scheduleRequest("1111111111111", "Sector-7"))
	expectIs(t, err, apperror.ErrPermissionDenied)

	_, err = env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Nowhere"))
	expectField(t, err, "distributionCenter")

	_, err = env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Closed"))
	expectField(t, err, "distributionCenter")

	_, err = env.svc.Schedules.Create(ctx, admin, scheduleRequest("2222222222222", "Sector-7"))
	expectIs(t, err, apperror.ErrNotFound)

	bad := scheduleRequest("1111111111111", "Sector-7")
	bad.PickupDate = "20/10/2026"
	_, err = env.svc.Schedules.Create(ctx, admin, bad)
	expectField(t, err, "pickupDate")

	bad = scheduleRequest("1111111111111", "Sector-7")
	bad.PickupTime = "25:00"
	_, err = env.svc.Schedules.Create(ctx, admin, bad)
	expectField(t, err, "pickupTime")
}

// pausedSchedules holds the CNIC lookup until a second caller reaches it or
// the wait runs out, so two creates overlap between check and insert.
type pausedSchedules struct {
	repository.ScheduleStore
	mu      sync.Mutex
	lookups int
	release chan struct{}
}

func (p *pausedSchedules) FindByCNIC(ctx context.Context, cnic string) (*models.FoodSchedule, error) {
	p.mu.Lock()
	p.lookups++
	if p.lookups == 2 {
		close(p.release)
	}
	p.mu.Unlock()

	select {
	case <-p.release:
	case <-time.After(200 * time.Millisecond):
	}
	return p.ScheduleStore.FindByCNIC(ctx, cnic)
}

func TestCreateScheduleConcurrentSubmissions(t *testing.T) {
	env := freshEnv()
	ctx := context.Background()
	admin := seedPrincipal(t, env, models.RoleAdmin)
	seedBeneficiary(t, env, "1111111111111", models.BeneficiaryApproved)
	seedCenter(t, env, "Sector-7", true)
	env.store.Schedules = &pausedSchedules{ScheduleStore: env.store.Schedules, release: make(chan struct{})}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Sector-7"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, apperror.ErrActionInProgress) && !errors.Is(err, apperror.ErrDuplicateKey) {
			t.Errorf("Unexpected error %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly one create to succeed, got %d (%v)", succeeded, errs)
	}

	all, _ := env.store.Schedules.List(ctx, repository.ScheduleFilter{})
	count := 0
	for _, fs := range all {
		if fs.CNIC == "1111111111111" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected one schedule for the beneficiary, got %d", count)
	}
}

// staleSchedules misses the existing schedule on the first CNIC lookup, as
// when another instance commits between the check and the insert.
type staleSchedules struct {
	repository.ScheduleStore
	lookups int
}

func (s *staleSchedules) FindByCNIC(ctx context.Context, cnic string) (*models.FoodSchedule, error) {
	s.lookups++
	if s.lookups == 1 {
		return nil, repository.ErrNotFound
	}
	return s.ScheduleStore.FindByCNIC(ctx, cnic)
}

func TestCreateScheduleUniqueCNICInStore(t *testing.T) {
	env := freshEnv()
	ctx := context.Background()
	admin := seedPrincipal(t, env, models.RoleAdmin)
	seedBeneficiary(t, env, "1111111111111", models.BeneficiaryApproved)
	seedCenter(t, env, "Sector-7", true)
	seedSchedule(t, env, "1111111111111", "SAY-1111", "Sector-7", "2026-10-18")
	env.store.Schedules = &staleSchedules{ScheduleStore: env.store.Schedules}

	_, err := env.svc.Schedules.Create(ctx, admin, scheduleRequest("1111111111111", "Sector-7"))
	var dup *apperror.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Key != "cnic" {
		t.Fatalf("Expected duplicate cnic, got %v", err)
	}

	all, _ := env.store.Schedules.List(ctx, repository.ScheduleFilter{})
	if len(all) != 1 {
		t.Errorf("Expected the original schedule only, got %d", len(all))
	}
}

// memTokens is a schedule store that only tracks tokens.
type memTokens struct {
	repository.ScheduleStore
	mu     sync.Mutex
	tokens map[string]bool
	taken  func(token string) bool
}

func (m *memTokens) TokenExists(ctx context.Context, token string) (bool, error) {
	if m.taken != nil {
		return m.taken(token), nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[token], nil
}

func (m *memTokens) Create(ctx context.Context, fs *models.FoodSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens[fs.Token] {
		return repository.ErrAlreadyExists
	}
	m.tokens[fs.Token] = true
	return nil
}

func TestTokenAllocationNeverCommitsDuplicate(t *testing.T) {
	store := &memTokens{tokens: make(map[string]bool)}
	svc := &ScheduleService{
		store:  &repository.Store{Schedules: store},
		tokens: utils.NewTokenGeneratorWithSource("SAY", rand.NewSource(42)),
	}
	ctx := context.Background()

	committed, exhausted := 0, 0
	for i := 0; i < 10000; i++ {
		token, err := svc.allocateToken(ctx)
		if err != nil {
			var dup *apperror.DuplicateKeyError
			if !errors.As(err, &dup) || dup.Key != "token" {
				t.Fatalf("Expected duplicate token error, got %v", err)
			}
			exhausted++
			continue
		}
		if err := store.Create(ctx, &models.FoodSchedule{Token: token}); err != nil {
			t.Fatalf("Committed duplicate token %s on creation %d", token, i)
		}
		committed++
	}

	if committed != len(store.tokens) {
		t.Errorf("Expected %d unique tokens, got %d", committed, len(store.tokens))
	}
	if committed+exhausted != 10000 {
		t.Errorf("Expected every creation accounted for, got %d+%d", committed, exhausted)
	}
	if committed > 9000 {
		t.Errorf("Expected at most 9000 tokens in the SAY space, got %d", committed)
	}
}

func TestTokenRegeneratesOnce(t *testing.T) {
	lookups := 0
	store := &memTokens{tokens: map[string]bool{}, taken: func(string) bool {
		lookups++
		return lookups == 1
	}}
	svc := &ScheduleService{store: &repository.Store{Schedules: store}, tokens: utils.NewTokenGenerator("SAY")}

	if _, err := svc.allocateToken(context.Background()); err != nil {
		t.Fatalf("Expected second candidate to succeed, got %v", err)
	}
	if lookups != 2 {
		t.Errorf("Expected 2 lookups, got %d", lookups)
	}

	lookups = 0
	store.taken = func(string) bool { lookups++; return true }
	_, err := svc.allocateToken(context.Background())
	expectIs(t, err, apperror.ErrDuplicateKey)
	if lookups != tokenAttempts {
		t.Errorf("Expected %d lookups, got %d", tokenAttempts, lookups)
	}
}

func TestListSchedulesAndEligible(t *testing.T) {
	env := freshEnv()
	ctx := context.Background()
	staff := seedPrincipal(t, env, models.RoleStaff)
	seedBeneficiary(t, env, "1111111111111", models.BeneficiaryApproved)
	seedBeneficiary(t, env, "2222222222222", models.BeneficiaryApproved)
	seedBeneficiary(t, env, "3333333333333", models.BeneficiaryPending)
	fs := seedSchedule(t, env, "1111111111111", "SAY-1111", "Sector-7", "2026-10-18")

	eligible, err := env.svc.Schedules.EligibleBeneficiaries(ctx, staff)
	if err != nil {
		t.Fatal(err)
	}
	if len(eligible) != 1 || eligible[0].CNIC != "2222222222222" {
		t.Errorf("Expected only the unscheduled approved beneficiary, got %+v", eligible)
	}

	if _, err := env.svc.Workflow.MarkDistributed(ctx, staff, fs.ID); err != nil {
		t.Fatal(err)
	}
	seedSchedule(t, env, "2222222222222", "SAY-2222", "Sector-7", "2026-10-19")

	pending := false
	open, err := env.svc.Schedules.List(ctx, staff, repository.ScheduleFilter{Distributed: &pending})
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 1 || open[0].Token != "SAY-2222" {
		t.Errorf("Expected one undistributed schedule, got %+v", open)
	}

	got, err := env.svc.Schedules.Get(ctx, staff, fs.ID)
	if err != nil || !got.DistributedStatus {
		t.Errorf("Expected distributed schedule, got %+v, %v", got, err)
	}
}
