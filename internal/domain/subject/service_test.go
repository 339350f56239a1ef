package subject

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// =========== Mock Repositories ===========

type mockProfileRepo struct {
	store map[uuid.UUID]*Profile
	err   error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{store: make(map[uuid.UUID]*Profile)}
}

func (m *mockProfileRepo) Get(_ context.Context, accountID uuid.UUID) (*Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.store[accountID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) Upsert(_ context.Context, p *Profile) error {
	m.store[p.ID] = p
	return nil
}

func (m *mockProfileRepo) SetReminderDismissedUntil(_ context.Context, accountID uuid.UUID, until *time.Time) error {
	p, ok := m.store[accountID]
	if !ok {
		p = &Profile{ID: accountID}
		m.store[accountID] = p
	}
	p.ReminderDismissedUntil = until
	return nil
}

type mockChildRepo struct {
	store map[uuid.UUID]*Child
}

func newMockChildRepo() *mockChildRepo {
	return &mockChildRepo{store: make(map[uuid.UUID]*Child)}
}

func (m *mockChildRepo) Create(_ context.Context, c *Child) error {
	c.ID = uuid.New()
	m.store[c.ID] = c
	return nil
}

func (m *mockChildRepo) GetByID(_ context.Context, id uuid.UUID) (*Child, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *mockChildRepo) Update(_ context.Context, c *Child) error {
	if _, ok := m.store[c.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.store[c.ID] = c
	return nil
}

func (m *mockChildRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockChildRepo) ListByAccount(_ context.Context, accountID uuid.UUID, limit, offset int) ([]*Child, int, error) {
	var result []*Child
	for _, c := range m.store {
		if c.AccountID == accountID {
			result = append(result, c)
		}
	}
	return result, len(result), nil
}

type mockSeeder struct {
	seeded      []uuid.UUID
	rescheduled []uuid.UUID
	fail        bool
}

func (m *mockSeeder) SeedForChild(_ context.Context, _, childID uuid.UUID, _ time.Time) error {
	if m.fail {
		return fmt.Errorf("seed failed")
	}
	m.seeded = append(m.seeded, childID)
	return nil
}

func (m *mockSeeder) RescheduleForChild(_ context.Context, _, childID uuid.UUID, _ time.Time) error {
	if m.fail {
		return fmt.Errorf("reschedule failed")
	}
	m.rescheduled = append(m.rescheduled, childID)
	return nil
}

// mockTxRunner snapshots the child store before running fn and restores it
// when fn fails, mirroring a rolled-back transaction.
type mockTxRunner struct {
	children *mockChildRepo
	calls    int
}

func (m *mockTxRunner) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snapshot := make(map[uuid.UUID]*Child, len(m.children.store))
	for id, c := range m.children.store {
		snapshot[id] = c
	}
	if err := fn(ctx); err != nil {
		m.children.store = snapshot
		return err
	}
	return nil
}

// =========== Helper ===========

type testEnv struct {
	profiles *mockProfileRepo
	children *mockChildRepo
	seeder   *mockSeeder
	tx       *mockTxRunner
}

func newTestEnv() (*Service, *testEnv) {
	env := &testEnv{
		profiles: newMockProfileRepo(),
		children: newMockChildRepo(),
		seeder:   &mockSeeder{},
	}
	env.tx = &mockTxRunner{children: env.children}
	return NewService(env.profiles, env.children, env.seeder, env.tx.run), env
}

func newTestService() (*Service, *mockSeeder) {
	svc, env := newTestEnv()
	return svc, env.seeder
}

func daysAgo(d int) time.Time {
	return time.Now().AddDate(0, 0, -d)
}

// =========== Profile Tests ===========

func TestSaveProfile_Success(t *testing.T) {
	svc, _ := newTestService()
	dob := daysAgo(40 * 365)
	p := &Profile{ID: uuid.New(), FullName: "Alex Example", Gender: GenderFemale, DateOfBirth: &dob}
	if err := svc.SaveProfile(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetProfile(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FullName != "Alex Example" {
		t.Errorf("expected name persisted, got %q", got.FullName)
	}
}

func TestSaveProfile_MissingName(t *testing.T) {
	svc, _ := newTestService()
	p := &Profile{ID: uuid.New()}
	if err := svc.SaveProfile(context.Background(), p); err == nil {
		t.Fatal("expected error for missing full_name")
	}
}

func TestSaveProfile_InvalidGender(t *testing.T) {
	svc, _ := newTestService()
	p := &Profile{ID: uuid.New(), FullName: "Alex", Gender: "other"}
	if err := svc.SaveProfile(context.Background(), p); err == nil {
		t.Fatal("expected error for invalid gender")
	}
}

func TestSaveProfile_FutureBirthDate(t *testing.T) {
	svc, _ := newTestService()
	future := time.Now().AddDate(1, 0, 0)
	p := &Profile{ID: uuid.New(), FullName: "Alex", DateOfBirth: &future}
	if err := svc.SaveProfile(context.Background(), p); err == nil {
		t.Fatal("expected error for future date_of_birth")
	}
}

func TestDismissReminders(t *testing.T) {
	svc, _ := newTestService()
	accountID := uuid.New()

	until := time.Now().AddDate(0, 0, 14)
	if err := svc.DismissReminders(context.Background(), accountID, &until); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Clearing the dismissal is allowed
	if err := svc.DismissReminders(context.Background(), accountID, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDismissReminders_PastTime(t *testing.T) {
	svc, _ := newTestService()
	past := time.Now().AddDate(0, 0, -1)
	if err := svc.DismissReminders(context.Background(), uuid.New(), &past); err == nil {
		t.Fatal("expected error for past dismissed_until")
	}
}

// =========== Child Tests ===========

func TestCreateChild_SeedsSchedule(t *testing.T) {
	svc, seeder := newTestService()
	c := &Child{
		AccountID:   uuid.New(),
		FirstName:   "Emma",
		LastName:    "Example",
		DateOfBirth: daysAgo(100),
	}
	if err := svc.CreateChild(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seeder.seeded) != 1 || seeder.seeded[0] != c.ID {
		t.Errorf("expected schedule seeded for child %s, got %v", c.ID, seeder.seeded)
	}
}

func TestCreateChild_Validation(t *testing.T) {
	svc, _ := newTestService()
	base := Child{
		AccountID:   uuid.New(),
		FirstName:   "Emma",
		LastName:    "Example",
		DateOfBirth: daysAgo(100),
	}

	cases := []struct {
		name   string
		mutate func(*Child)
	}{
		{"missing account", func(c *Child) { c.AccountID = uuid.Nil }},
		{"missing first name", func(c *Child) { c.FirstName = "" }},
		{"missing last name", func(c *Child) { c.LastName = "" }},
		{"missing birth date", func(c *Child) { c.DateOfBirth = time.Time{} }},
		{"future birth date", func(c *Child) { c.DateOfBirth = time.Now().AddDate(0, 0, 7) }},
	}
	for _, tc := range cases {
		c := base
		tc.mutate(&c)
		if err := svc.CreateChild(context.Background(), &c); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCreateChild_SeederFailureRollsBack(t *testing.T) {
	svc, env := newTestEnv()
	env.seeder.fail = true

	c := &Child{
		AccountID:   uuid.New(),
		FirstName:   "Emma",
		LastName:    "Example",
		DateOfBirth: daysAgo(100),
	}
	if err := svc.CreateChild(context.Background(), c); err == nil {
		t.Fatal("expected error when schedule seeding fails")
	}
	if env.tx.calls != 1 {
		t.Fatalf("expected child creation to run in a transaction, got %d calls", env.tx.calls)
	}
	if len(env.children.store) != 0 {
		t.Fatalf("expected no child row after failed seeding, got %d", len(env.children.store))
	}
}

func TestUpdateChild_BirthDateChangeReschedules(t *testing.T) {
	svc, env := newTestEnv()
	c := &Child{
		AccountID:   uuid.New(),
		FirstName:   "Emma",
		LastName:    "Example",
		DateOfBirth: daysAgo(100),
	}
	if err := svc.CreateChild(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := *c
	updated.DateOfBirth = daysAgo(93)
	if err := svc.UpdateChild(context.Background(), &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.seeder.rescheduled) != 1 || env.seeder.rescheduled[0] != c.ID {
		t.Errorf("expected examinations rescheduled for child %s, got %v", c.ID, env.seeder.rescheduled)
	}

	// A rename alone leaves the schedule untouched.
	renamed := updated
	renamed.FirstName = "Emilia"
	if err := svc.UpdateChild(context.Background(), &renamed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.seeder.rescheduled) != 1 {
		t.Errorf("expected no reschedule on rename, got %v", env.seeder.rescheduled)
	}
}

func TestGetChild_WrongAccount(t *testing.T) {
	svc, _ := newTestService()
	c := &Child{
		AccountID:   uuid.New(),
		FirstName:   "Emma",
		LastName:    "Example",
		DateOfBirth: daysAgo(100),
	}
	_ = svc.CreateChild(context.Background(), c)

	if _, err := svc.GetChild(context.Background(), uuid.New(), c.ID); err == nil {
		t.Fatal("expected error for another account's child")
	}
}

func TestDeleteChild(t *testing.T) {
	svc, _ := newTestService()
	c := &Child{
		AccountID:   uuid.New(),
		FirstName:   "Emma",
		LastName:    "Example",
		DateOfBirth: daysAgo(100),
	}
	_ = svc.CreateChild(context.Background(), c)

	if err := svc.DeleteChild(context.Background(), c.AccountID, c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetChild(context.Background(), c.AccountID, c.ID); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestListChildren_ScopedToAccount(t *testing.T) {
	svc, _ := newTestService()
	accountID := uuid.New()

	_ = svc.CreateChild(context.Background(), &Child{AccountID: accountID, FirstName: "Emma", LastName: "Example", DateOfBirth: daysAgo(400)})
	_ = svc.CreateChild(context.Background(), &Child{AccountID: accountID, FirstName: "Max", LastName: "Example", DateOfBirth: daysAgo(900)})
	_ = svc.CreateChild(context.Background(), &Child{AccountID: uuid.New(), FirstName: "Lena", LastName: "Other", DateOfBirth: daysAgo(200)})

	items, total, err := svc.ListChildren(context.Background(), accountID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 children, got %d", total)
	}
}

// =========== Lookup Tests ===========

func TestProfileInfo_MissingProfile(t *testing.T) {
	svc, _ := newTestEnv()
	dob, gender, err := svc.ProfileInfo(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dob != nil || gender != "" {
		t.Errorf("expected empty values for missing profile, got dob=%v gender=%q", dob, gender)
	}
}

func TestProfileInfo_RepoErrorPropagates(t *testing.T) {
	svc, env := newTestEnv()
	env.profiles.err = errors.New("connection refused")

	if _, _, err := svc.ProfileInfo(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestReminderDismissedUntil_RepoErrorPropagates(t *testing.T) {
	svc, env := newTestEnv()
	accountID := uuid.New()

	// Missing profile means no snooze.
	until, err := svc.ReminderDismissedUntil(context.Background(), accountID)
	if err != nil || until != nil {
		t.Fatalf("expected no snooze for missing profile, got until=%v err=%v", until, err)
	}

	env.profiles.err = errors.New("connection refused")
	if _, err := svc.ReminderDismissedUntil(context.Background(), accountID); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}
