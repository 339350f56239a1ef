package checkup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vitacare/vitacare/internal/platform/ics"
	"github.com/vitacare/vitacare/internal/platform/metrics"
	"github.com/vitacare/vitacare/internal/platform/phi"
)

// ProfileReader supplies the date of birth and gender a checkup plan is
// derived from.
type ProfileReader interface {
	ProfileInfo(ctx context.Context, accountID uuid.UUID) (dateOfBirth *time.Time, gender string, err error)
}

type Service struct {
	checkups  CheckupRepository
	profiles  ProfileReader
	encryptor *phi.FieldEncryptor
}

func NewService(checkups CheckupRepository, profiles ProfileReader, encryptor *phi.FieldEncryptor) *Service {
	return &Service{checkups: checkups, profiles: profiles, encryptor: encryptor}
}

// Plan computes the applicable checkups for the account holder with their
// next due dates, based on the most recent completion of each type.
func (s *Service) Plan(ctx context.Context, accountID uuid.UUID, ref time.Time) ([]PlannedCheckup, error) {
	dob, gender, err := s.profiles.ProfileInfo(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if dob == nil {
		return nil, fmt.Errorf("profile date of birth is not set")
	}

	lastDone, err := s.checkups.LastCompleted(ctx, accountID)
	if err != nil {
		return nil, err
	}

	age := Age(*dob, ref)
	var plan []PlannedCheckup
	for _, entry := range Applicable(age, gender) {
		var last *time.Time
		if done, ok := lastDone[entry.Type]; ok {
			doneCopy := done
			last = &doneCopy
		}
		plan = append(plan, PlannedCheckup{
			Type:           entry.Type,
			Description:    entry.Description,
			IntervalMonths: entry.IntervalMonths,
			DueDate:        NextDueDate(entry, last, ref),
			LastDone:       last,
		})
	}
	return plan, nil
}

// SyncSchedule materializes the plan as pending checkup rows so reminders
// can pick them up. Existing pending rows are moved to the recomputed due
// date; missing ones are created.
func (s *Service) SyncSchedule(ctx context.Context, accountID uuid.UUID) error {
	plan, err := s.Plan(ctx, accountID, time.Now())
	if err != nil {
		return err
	}
	for _, planned := range plan {
		pending, err := s.checkups.PendingByType(ctx, accountID, planned.Type)
		if err != nil {
			return err
		}
		if pending == nil {
			c := &Checkup{
				AccountID:   accountID,
				CheckupType: planned.Type,
				DueDate:     planned.DueDate,
			}
			if err := s.checkups.Create(ctx, c); err != nil {
				return fmt.Errorf("create %s: %w", planned.Type, err)
			}
			metrics.RecordCreated("checkup")
			continue
		}
		if !pending.DueDate.Equal(planned.DueDate) {
			pending.DueDate = planned.DueDate
			if err := s.checkups.Update(ctx, pending); err != nil {
				return fmt.Errorf("update %s: %w", planned.Type, err)
			}
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Checkup, error) {
	c, err := s.checkups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AccountID != accountID {
		return nil, fmt.Errorf("checkup %s not found", id)
	}
	if err := s.decryptNotes(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Complete records the date a checkup was performed and schedules the next
// occurrence one interval later.
func (s *Service) Complete(ctx context.Context, accountID, id uuid.UUID, actualDate time.Time, notes *string) error {
	c, err := s.Get(ctx, accountID, id)
	if err != nil {
		return err
	}
	if c.Completed() {
		return fmt.Errorf("checkup %s is already completed", id)
	}
	if actualDate.IsZero() {
		return fmt.Errorf("actual_date is required")
	}
	if actualDate.After(time.Now().AddDate(0, 0, 1)) {
		return fmt.Errorf("actual_date must not be in the future")
	}

	c.ActualDate = &actualDate
	if notes != nil {
		c.Notes = notes
	}
	if err := s.encryptNotes(c); err != nil {
		return err
	}
	if err := s.checkups.Update(ctx, c); err != nil {
		return err
	}
	metrics.RecordCompleted("checkup")

	return s.scheduleNext(ctx, accountID, c.CheckupType, actualDate)
}

// scheduleNext rolls the checkup forward by its interval. Nothing happens
// when the person has aged out of the checkup's eligibility window.
func (s *Service) scheduleNext(ctx context.Context, accountID uuid.UUID, checkupType string, actualDate time.Time) error {
	dob, gender, err := s.profiles.ProfileInfo(ctx, accountID)
	if err != nil {
		return err
	}
	if dob == nil {
		return nil
	}
	entry, ok := FindEntry(checkupType, Age(*dob, actualDate), gender)
	if !ok {
		return nil
	}
	next := &Checkup{
		AccountID:   accountID,
		CheckupType: checkupType,
		DueDate:     AddMonths(actualDate, entry.IntervalMonths),
	}
	if err := s.checkups.Create(ctx, next); err != nil {
		return fmt.Errorf("schedule next %s: %w", checkupType, err)
	}
	metrics.RecordCreated("checkup")
	return nil
}

func (s *Service) Update(ctx context.Context, c *Checkup) error {
	existing, err := s.Get(ctx, c.AccountID, c.ID)
	if err != nil {
		return err
	}
	if c.CheckupType == "" {
		c.CheckupType = existing.CheckupType
	}
	if c.DueDate.IsZero() {
		c.DueDate = existing.DueDate
	}
	if err := s.encryptNotes(c); err != nil {
		return err
	}
	if err := s.checkups.Update(ctx, c); err != nil {
		return err
	}
	return s.decryptNotes(c)
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if _, err := s.Get(ctx, accountID, id); err != nil {
		return err
	}
	return s.checkups.Delete(ctx, id)
}

func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Checkup, int, error) {
	items, total, err := s.checkups.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range items {
		if err := s.decryptNotes(c); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// ListPending returns all outstanding checkups, oldest due date first.
func (s *Service) ListPending(ctx context.Context, accountID uuid.UUID) ([]*Checkup, error) {
	return s.checkups.ListPending(ctx, accountID)
}

// ExportICS renders a calendar appointment for the checkup's due date.
func (s *Service) ExportICS(ctx context.Context, accountID, id uuid.UUID) (string, error) {
	c, err := s.Get(ctx, accountID, id)
	if err != nil {
		return "", err
	}
	event := ics.AppointmentEvent(
		c.CheckupType,
		fmt.Sprintf("%s\n\nPlease book an appointment with your doctor in time.", c.CheckupType),
		"Doctor's office",
		c.DueDate,
	)
	metrics.RecordCalendarExport()
	return ics.Generate(event), nil
}

func (s *Service) encryptNotes(c *Checkup) error {
	if s.encryptor == nil || c.Notes == nil || *c.Notes == "" {
		return nil
	}
	enc, err := s.encryptor.Encrypt(*c.Notes)
	if err != nil {
		return fmt.Errorf("encrypt notes: %w", err)
	}
	c.Notes = &enc
	return nil
}

func (s *Service) decryptNotes(c *Checkup) error {
	if s.encryptor == nil || c.Notes == nil || *c.Notes == "" {
		return nil
	}
	dec, err := s.encryptor.Decrypt(*c.Notes)
	if err != nil {
		return fmt.Errorf("decrypt notes: %w", err)
	}
	c.Notes = &dec
	return nil
}
