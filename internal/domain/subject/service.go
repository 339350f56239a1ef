package subject

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vitacare/vitacare/pkg/pagination"
)

var validGenders = map[string]bool{
	GenderMale: true, GenderFemale: true, GenderDiverse: true,
}

// ScheduleSeeder maintains the examination schedule rows derived from a
// child's birth date.
type ScheduleSeeder interface {
	SeedForChild(ctx context.Context, accountID, childID uuid.UUID, dateOfBirth time.Time) error
	RescheduleForChild(ctx context.Context, accountID, childID uuid.UUID, dateOfBirth time.Time) error
}

// TxRunner executes fn inside a single database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	profiles ProfileRepository
	children ChildRepository
	seeder   ScheduleSeeder
	runTx    TxRunner
}

func NewService(profiles ProfileRepository, children ChildRepository, seeder ScheduleSeeder, runTx TxRunner) *Service {
	return &Service{profiles: profiles, children: children, seeder: seeder, runTx: runTx}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.runTx == nil {
		return fn(ctx)
	}
	return s.runTx(ctx, fn)
}

// -- Profile --

func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	return s.profiles.Get(ctx, accountID)
}

func (s *Service) SaveProfile(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("profile id is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.Gender != "" && !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.DateOfBirth != nil && p.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date_of_birth must not be in the future")
	}
	return s.profiles.Upsert(ctx, p)
}

// DismissReminders suppresses reminder notifications for the account until
// the given time. A nil until clears the dismissal.
func (s *Service) DismissReminders(ctx context.Context, accountID uuid.UUID, until *time.Time) error {
	if until != nil && until.Before(time.Now()) {
		return fmt.Errorf("dismissed_until must be in the future")
	}
	return s.profiles.SetReminderDismissedUntil(ctx, accountID, until)
}

// -- Children --

// CreateChild registers a child and seeds its full early-detection
// examination schedule in the same transaction scope.
func (s *Service) CreateChild(ctx context.Context, c *Child) error {
	if c.AccountID == uuid.Nil {
		return fmt.Errorf("account_id is required")
	}
	if c.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if c.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if c.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if c.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date_of_birth must not be in the future")
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.children.Create(ctx, c); err != nil {
			return err
		}
		if s.seeder != nil {
			if err := s.seeder.SeedForChild(ctx, c.AccountID, c.ID, c.DateOfBirth); err != nil {
				return fmt.Errorf("seed examination schedule: %w", err)
			}
		}
		return nil
	})
}

func (s *Service) GetChild(ctx context.Context, accountID, id uuid.UUID) (*Child, error) {
	c, err := s.children.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AccountID != accountID {
		return nil, fmt.Errorf("child %s not found", id)
	}
	return c, nil
}

// UpdateChild saves the child and, when the birth date changed, reschedules
// the outstanding examinations derived from it in the same transaction.
func (s *Service) UpdateChild(ctx context.Context, c *Child) error {
	existing, err := s.GetChild(ctx, c.AccountID, c.ID)
	if err != nil {
		return err
	}
	if c.FirstName == "" {
		c.FirstName = existing.FirstName
	}
	if c.LastName == "" {
		c.LastName = existing.LastName
	}
	if c.DateOfBirth.IsZero() {
		c.DateOfBirth = existing.DateOfBirth
	}
	if c.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date_of_birth must not be in the future")
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		if err := s.children.Update(ctx, c); err != nil {
			return err
		}
		if s.seeder != nil && !c.DateOfBirth.Equal(existing.DateOfBirth) {
			if err := s.seeder.RescheduleForChild(ctx, c.AccountID, c.ID, c.DateOfBirth); err != nil {
				return fmt.Errorf("reschedule examinations: %w", err)
			}
		}
		return nil
	})
}

func (s *Service) DeleteChild(ctx context.Context, accountID, id uuid.UUID) error {
	if _, err := s.GetChild(ctx, accountID, id); err != nil {
		return err
	}
	return s.children.Delete(ctx, id)
}

func (s *Service) ListChildren(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Child, int, error) {
	return s.children.ListByAccount(ctx, accountID, limit, offset)
}

// -- Lookups for other domains --

// ChildName resolves a child's display name, scoped to the account.
func (s *Service) ChildName(ctx context.Context, accountID, childID uuid.UUID) (string, error) {
	c, err := s.GetChild(ctx, accountID, childID)
	if err != nil {
		return "", err
	}
	return c.FullName(), nil
}

// ChildBirthDate resolves a child's birth date, scoped to the account.
func (s *Service) ChildBirthDate(ctx context.Context, accountID, childID uuid.UUID) (time.Time, error) {
	c, err := s.GetChild(ctx, accountID, childID)
	if err != nil {
		return time.Time{}, err
	}
	return c.DateOfBirth, nil
}

// ChildNames returns all of the account's children keyed by id.
func (s *Service) ChildNames(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]string, error) {
	children, _, err := s.children.ListByAccount(ctx, accountID, pagination.MaxLimit, 0)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(children))
	for _, c := range children {
		names[c.ID] = c.FullName()
	}
	return names, nil
}

// ProfileInfo returns the date of birth and gender the checkup plan is
// derived from. A missing profile yields empty values, not an error; any
// other repository failure is propagated.
func (s *Service) ProfileInfo(ctx context.Context, accountID uuid.UUID) (*time.Time, string, error) {
	p, err := s.profiles.Get(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return p.DateOfBirth, p.Gender, nil
}

// ReminderDismissedUntil returns the account's reminder snooze, nil when
// none is active. A missing profile means no snooze; any other repository
// failure is propagated.
func (s *Service) ReminderDismissedUntil(ctx context.Context, accountID uuid.UUID) (*time.Time, error) {
	p, err := s.profiles.Get(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.ReminderDismissedUntil, nil
}
