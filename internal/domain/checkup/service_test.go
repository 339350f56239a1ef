package checkup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockCheckupRepo struct {
	store map[uuid.UUID]*Checkup
}

func newMockCheckupRepo() *mockCheckupRepo {
	return &mockCheckupRepo{store: make(map[uuid.UUID]*Checkup)}
}

func (m *mockCheckupRepo) Create(ctx context.Context, c *Checkup) error {
	c.ID = uuid.New()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *mockCheckupRepo) GetByID(ctx context.Context, id uuid.UUID) (*Checkup, error) {
	c, ok := m.store[id]
	if !ok {
		return nil, fmt.Errorf("checkup %s not found", id)
	}
	cp := *c
	return &cp, nil
}

func (m *mockCheckupRepo) Update(ctx context.Context, c *Checkup) error {
	if _, ok := m.store[c.ID]; !ok {
		return fmt.Errorf("checkup %s not found", c.ID)
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *mockCheckupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func (m *mockCheckupRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Checkup, int, error) {
	var items []*Checkup
	for _, c := range m.store {
		if c.AccountID == accountID {
			cp := *c
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (m *mockCheckupRepo) ListPending(ctx context.Context, accountID uuid.UUID) ([]*Checkup, error) {
	var items []*Checkup
	for _, c := range m.store {
		if c.AccountID == accountID && c.ActualDate == nil {
			cp := *c
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (m *mockCheckupRepo) LastCompleted(ctx context.Context, accountID uuid.UUID) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	for _, c := range m.store {
		if c.AccountID != accountID || c.ActualDate == nil {
			continue
		}
		if last, ok := out[c.CheckupType]; !ok || c.ActualDate.After(last) {
			out[c.CheckupType] = *c.ActualDate
		}
	}
	return out, nil
}

func (m *mockCheckupRepo) PendingByType(ctx context.Context, accountID uuid.UUID, checkupType string) (*Checkup, error) {
	for _, c := range m.store {
		if c.AccountID == accountID && c.CheckupType == checkupType && c.ActualDate == nil {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

type mockProfileReader struct {
	dob    *time.Time
	gender string
}

func (m *mockProfileReader) ProfileInfo(ctx context.Context, accountID uuid.UUID) (*time.Time, string, error) {
	return m.dob, m.gender, nil
}

func newTestService(dob time.Time, gender string) (*Service, *mockCheckupRepo) {
	repo := newMockCheckupRepo()
	return NewService(repo, &mockProfileReader{dob: &dob, gender: gender}, nil), repo
}

func TestPlanFemale52(t *testing.T) {
	svc, _ := newTestService(date(1972, time.March, 1), GenderFemale)
	accountID := uuid.New()
	ref := date(2024, time.June, 1)

	plan, err := svc.Plan(context.Background(), accountID, ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byType := make(map[string]PlannedCheckup)
	for _, p := range plan {
		byType[p.Type] = p
	}
	if _, ok := byType["Mammographie"]; !ok {
		t.Error("expected mammography in the plan at 52")
	}
	if cervical, ok := byType["Gebärmutterhalskrebs-Screening"]; !ok || cervical.IntervalMonths != 36 {
		t.Errorf("expected 3-year cervical screening band, got %+v", cervical)
	}
	// Nothing completed yet, everything is due at ref.
	for _, p := range plan {
		if !p.DueDate.Equal(ref) {
			t.Errorf("%s should be due immediately, got %s", p.Type, p.DueDate.Format("2006-01-02"))
		}
	}
}

func TestPlanUsesLastCompletion(t *testing.T) {
	svc, repo := newTestService(date(1990, time.January, 1), GenderMale)
	accountID := uuid.New()
	done := date(2024, time.January, 31)
	repo.Create(context.Background(), &Checkup{
		AccountID:   accountID,
		CheckupType: "Zahnvorsorge",
		DueDate:     done,
		ActualDate:  &done,
	})

	plan, err := svc.Plan(context.Background(), accountID, date(2024, time.June, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range plan {
		if p.Type != "Zahnvorsorge" {
			continue
		}
		if !p.DueDate.Equal(date(2024, time.July, 31)) {
			t.Errorf("dental due date = %s, want 2024-07-31", p.DueDate.Format("2006-01-02"))
		}
		return
	}
	t.Fatal("dental checkup missing from plan")
}

func TestPlanRequiresDateOfBirth(t *testing.T) {
	repo := newMockCheckupRepo()
	svc := NewService(repo, &mockProfileReader{gender: GenderFemale}, nil)
	if _, err := svc.Plan(context.Background(), uuid.New(), time.Now()); err == nil {
		t.Fatal("expected error when date of birth is missing")
	}
}

func TestSyncScheduleCreatesPendingRows(t *testing.T) {
	svc, repo := newTestService(date(1972, time.March, 1), GenderFemale)
	accountID := uuid.New()

	if err := svc.SyncSchedule(context.Background(), accountID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, _ := repo.ListPending(context.Background(), accountID)
	if len(pending) != 7 {
		t.Fatalf("expected 7 pending checkups for a 52-year-old female, got %d", len(pending))
	}

	// Running it again must not duplicate rows.
	if err := svc.SyncSchedule(context.Background(), accountID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, _ = repo.ListPending(context.Background(), accountID)
	if len(pending) != 7 {
		t.Fatalf("sync is not idempotent, got %d pending rows", len(pending))
	}
}

func TestCompleteRollsScheduleForward(t *testing.T) {
	svc, repo := newTestService(date(1990, time.January, 1), GenderMale)
	accountID := uuid.New()
	c := &Checkup{
		AccountID:   accountID,
		CheckupType: "Zahnvorsorge",
		DueDate:     date(2024, time.January, 31),
	}
	repo.Create(context.Background(), c)

	actual := date(2024, time.January, 31)
	if err := svc.Complete(context.Background(), accountID, c.ID, actual, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := svc.Get(context.Background(), accountID, c.ID)
	if !got.Completed() {
		t.Fatal("checkup not marked completed")
	}

	pending, _ := repo.ListPending(context.Background(), accountID)
	if len(pending) != 1 {
		t.Fatalf("expected one follow-up row, got %d", len(pending))
	}
	if !pending[0].DueDate.Equal(date(2024, time.July, 31)) {
		t.Errorf("follow-up due date = %s, want 2024-07-31", pending[0].DueDate.Format("2006-01-02"))
	}
}

func TestCompleteTwiceFails(t *testing.T) {
	svc, repo := newTestService(date(1990, time.January, 1), GenderMale)
	accountID := uuid.New()
	c := &Checkup{AccountID: accountID, CheckupType: "Zahnvorsorge", DueDate: date(2024, time.May, 1)}
	repo.Create(context.Background(), c)

	if err := svc.Complete(context.Background(), accountID, c.ID, date(2024, time.May, 2), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Complete(context.Background(), accountID, c.ID, date(2024, time.May, 3), nil); err == nil {
		t.Fatal("expected error on double completion")
	}
}

func TestCompleteAgedOutDoesNotReschedule(t *testing.T) {
	// A 76-year-old completing mammography gets no follow-up row since the
	// screening ends at 75.
	svc, repo := newTestService(date(1948, time.January, 1), GenderFemale)
	accountID := uuid.New()
	c := &Checkup{AccountID: accountID, CheckupType: "Mammographie", DueDate: date(2024, time.May, 1)}
	repo.Create(context.Background(), c)

	if err := svc.Complete(context.Background(), accountID, c.ID, date(2024, time.May, 1), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, _ := repo.ListPending(context.Background(), accountID)
	if len(pending) != 0 {
		t.Fatalf("expected no follow-up after aging out, got %d", len(pending))
	}
}

func TestGetScopedToAccount(t *testing.T) {
	svc, repo := newTestService(date(1990, time.January, 1), GenderMale)
	owner := uuid.New()
	c := &Checkup{AccountID: owner, CheckupType: "Zahnvorsorge", DueDate: date(2024, time.May, 1)}
	repo.Create(context.Background(), c)

	if _, err := svc.Get(context.Background(), uuid.New(), c.ID); err == nil {
		t.Fatal("expected error for foreign account")
	}
}
