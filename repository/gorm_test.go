package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"food-distribution-backend/database"
	"food-distribution-backend/models"

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

func freshStore() *Store {
	testDB.Exec("DELETE FROM food_schedules")
	testDB.Exec("DELETE FROM beneficiaries")
	testDB.Exec("DELETE FROM distribution_centers")
	testDB.Exec("DELETE FROM credentials")
	testDB.Exec("DELETE FROM users")
	return NewGormStore(testDB)
}

func newBeneficiary(cnic string) *models.Beneficiary {
	return &models.Beneficiary{
		CNIC:          cnic,
		Name:          "Ayesha Khan",
		Phone:         "03001234567",
		Address:       "House 12, Street 4",
		FamilyMembers: 5,
		IncomeLevel:   models.IncomeLow,
		Status:        models.BeneficiaryPending,
	}
}

func newSchedule(id, token, cnic string) *models.FoodSchedule {
	return &models.FoodSchedule{
		ID:                 id,
		Token:              token,
		CNIC:               cnic,
		PickupDate:         "2025-03-14",
		PickupTime:         "10:00",
		DistributionCenter: "Sector-7",
	}
}

func TestBeneficiaryCreateAndGet(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	b := newBeneficiary("1234567890123")
	if err := store.Beneficiaries.Create(ctx, b); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Beneficiaries.Get(ctx, "1234567890123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != b.Name || got.FamilyMembers != 5 || got.IncomeLevel != models.IncomeLow {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.StatusFinalized {
		t.Error("expected new record to be unfinalized")
	}
}

func TestBeneficiaryCreateDuplicate(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	if err := store.Beneficiaries.Create(ctx, newBeneficiary("1234567890123")); err != nil {
		t.Fatal(err)
	}
	err := store.Beneficiaries.Create(ctx, newBeneficiary("1234567890123"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestBeneficiaryGetMissing(t *testing.T) {
	store := freshStore()
	if _, err := store.Beneficiaries.Get(context.Background(), "0000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBeneficiaryListFiltersByStatus(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	store.Beneficiaries.Create(ctx, newBeneficiary("1111111111111"))
	store.Beneficiaries.Create(ctx, newBeneficiary("2222222222222"))
	store.Beneficiaries.Finalize(ctx, "2222222222222", models.BeneficiaryApproved, time.Now(), "admin-1")

	all, err := store.Beneficiaries.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 beneficiaries, got %d", len(all))
	}

	approved, err := store.Beneficiaries.List(ctx, models.BeneficiaryApproved)
	if err != nil {
		t.Fatal(err)
	}
	if len(approved) != 1 || approved[0].CNIC != "2222222222222" {
		t.Errorf("expected only the approved record, got %+v", approved)
	}
}

func TestBeneficiaryUpdatePatch(t *testing.T) {
	store := freshStore()
	ctx := context.Background()
	store.Beneficiaries.Create(ctx, newBeneficiary("1234567890123"))

	members := 7
	name := "Ayesha Bibi"
	got, err := store.Beneficiaries.Update(ctx, "1234567890123", BeneficiaryPatch{Name: &name, FamilyMembers: &members})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != name || got.FamilyMembers != 7 {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.Phone != "03001234567" {
		t.Errorf("expected untouched phone, got %q", got.Phone)
	}

	if _, err := store.Beneficiaries.Update(ctx, "9999999999999", BeneficiaryPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBeneficiaryFinalizeOnlyOnce(t *testing.T) {
	store := freshStore()
	ctx := context.Background()
	store.Beneficiaries.Create(ctx, newBeneficiary("1234567890123"))

	at := time.Now()
	got, err := store.Beneficiaries.Finalize(ctx, "1234567890123", models.BeneficiaryApproved, at, "admin-1")
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if got.Status != models.BeneficiaryApproved || !got.StatusFinalized {
		t.Errorf("expected approved and finalized, got %+v", got)
	}
	if got.StatusUpdatedAt == nil || got.StatusUpdatedBy != "admin-1" {
		t.Errorf("expected status audit fields, got %+v", got)
	}

	if _, err := store.Beneficiaries.Finalize(ctx, "1234567890123", models.BeneficiaryRejected, time.Now(), "admin-2"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	after, _ := store.Beneficiaries.Get(ctx, "1234567890123")
	if after.Status != models.BeneficiaryApproved {
		t.Errorf("expected status to stay approved, got %s", after.Status)
	}

	if _, err := store.Beneficiaries.Finalize(ctx, "9999999999999", models.BeneficiaryApproved, at, "admin-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleCreateRejectsDuplicateToken(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	if err := store.Schedules.Create(ctx, newSchedule("s1", "SAY-1234", "1111111111111")); err != nil {
		t.Fatal(err)
	}
	err := store.Schedules.Create(ctx, newSchedule("s2", "SAY-1234", "2222222222222"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	exists, err := store.Schedules.TokenExists(ctx, "SAY-1234")
	if err != nil || !exists {
		t.Errorf("expected token to exist, got %v, %v", exists, err)
	}
	exists, _ = store.Schedules.TokenExists(ctx, "SAY-9999")
	if exists {
		t.Error("expected unknown token to be absent")
	}
}

func TestScheduleCreateRejectsSecondScheduleForCNIC(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	if err := store.Schedules.Create(ctx, newSchedule("s1", "SAY-1234", "1111111111111")); err != nil {
		t.Fatal(err)
	}
	err := store.Schedules.Create(ctx, newSchedule("s2", "SAY-5678", "1111111111111"))
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := store.Schedules.Get(ctx, "s2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected s2 not to be written, got %v", err)
	}
}

func TestScheduleLookups(t *testing.T) {
	store := freshStore()
	ctx := context.Background()
	store.Schedules.Create(ctx, newSchedule("s1", "SAY-1234", "1111111111111"))

	if fs, err := store.Schedules.FindByToken(ctx, "SAY-1234"); err != nil || fs.ID != "s1" {
		t.Errorf("FindByToken: %v, %+v", err, fs)
	}
	if fs, err := store.Schedules.FindByCNIC(ctx, "1111111111111"); err != nil || fs.ID != "s1" {
		t.Errorf("FindByCNIC: %v, %+v", err, fs)
	}
	if _, err := store.Schedules.FindByCNIC(ctx, "2222222222222"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleMarkDistributedOnce(t *testing.T) {
	store := freshStore()
	ctx := context.Background()
	store.Schedules.Create(ctx, newSchedule("s1", "SAY-1234", "1111111111111"))

	got, err := store.Schedules.MarkDistributed(ctx, "s1", time.Now(), "staff-1", "Staff One")
	if err != nil {
		t.Fatalf("MarkDistributed failed: %v", err)
	}
	if !got.DistributedStatus || got.DistributedAt == nil || got.DistributedByName != "Staff One" {
		t.Errorf("unexpected record: %+v", got)
	}

	if _, err := store.Schedules.MarkDistributed(ctx, "s1", time.Now(), "staff-2", "Staff Two"); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	after, _ := store.Schedules.Get(ctx, "s1")
	if after.DistributedBy != "staff-1" {
		t.Errorf("expected first marker to be kept, got %s", after.DistributedBy)
	}
}

func TestScheduleListFilters(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	a := newSchedule("s1", "SAY-1001", "1111111111111")
	a.PickupDate = "2025-03-10"
	b := newSchedule("s2", "SAY-1002", "2222222222222")
	b.PickupDate = "2025-03-12"
	b.DistributionCenter = "Sector-9"
	store.Schedules.Create(ctx, a)
	store.Schedules.Create(ctx, b)
	store.Schedules.MarkDistributed(ctx, "s1", time.Now(), "staff-1", "Staff One")

	all, _ := store.Schedules.List(ctx, ScheduleFilter{})
	if len(all) != 2 || all[0].ID != "s2" {
		t.Errorf("expected latest pickup date first, got %+v", all)
	}

	distributed := true
	done, _ := store.Schedules.List(ctx, ScheduleFilter{Distributed: &distributed})
	if len(done) != 1 || done[0].ID != "s1" {
		t.Errorf("expected only s1, got %+v", done)
	}

	sector9, _ := store.Schedules.List(ctx, ScheduleFilter{Center: "Sector-9"})
	if len(sector9) != 1 || sector9[0].ID != "s2" {
		t.Errorf("expected only s2, got %+v", sector9)
	}

	count, err := store.Schedules.CountByCenter(ctx, "Sector-7")
	if err != nil || count != 1 {
		t.Errorf("expected 1 schedule at Sector-7, got %d (%v)", count, err)
	}
}

func TestCenterCRUD(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	c := &models.DistributionCenter{ID: "c1", Name: "Sector-7", Address: "Main Road", Active: true}
	if err := store.Centers.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	byName, err := store.Centers.FindByName(ctx, "Sector-7")
	if err != nil || byName.ID != "c1" {
		t.Fatalf("FindByName: %v, %+v", err, byName)
	}

	c.Active = false
	c.UpdatedAt = time.Now()
	if err := store.Centers.Save(ctx, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, _ := store.Centers.Get(ctx, "c1")
	if got.Active {
		t.Error("expected center to be inactive after save")
	}

	if err := store.Centers.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Centers.Delete(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPrincipalStore(t *testing.T) {
	store := freshStore()
	ctx := context.Background()

	p := &models.Principal{ID: "u1", Name: "Staff One", Email: "Staff@Example.com", Role: models.RoleStaff, Status: models.PrincipalActive, CanCreateBeneficiaries: true}
	if err := store.Principals.Create(ctx, p); err != nil {
		t.Fatal(err)
	}

	dup := &models.Principal{ID: "u2", Name: "Other", Email: "staff@example.com", Role: models.RoleStaff, Status: models.PrincipalActive}
	if err := store.Principals.Create(ctx, dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists for duplicate email, got %v", err)
	}

	found, err := store.Principals.FindByEmail(ctx, " STAFF@example.com ")
	if err != nil || found.ID != "u1" {
		t.Fatalf("FindByEmail: %v, %+v", err, found)
	}

	inactive := models.PrincipalInactive
	allowed := false
	got, err := store.Principals.Update(ctx, "u1", PrincipalUpdate{Status: &inactive, CanCreateBeneficiaries: &allowed})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Status != models.PrincipalInactive || got.CanCreateBeneficiaries {
		t.Errorf("update not applied: %+v", got)
	}

	if _, err := store.Principals.Update(ctx, "missing", PrincipalUpdate{Status: &inactive}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.Principals.Delete(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	list, _ := store.Principals.List(ctx)
	if len(list) != 0 {
		t.Errorf("expected no principals, got %d", len(list))
	}
}
