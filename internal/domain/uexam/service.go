package uexam

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vitacare/vitacare/internal/platform/ics"
	"github.com/vitacare/vitacare/internal/platform/metrics"
	"github.com/vitacare/vitacare/internal/platform/phi"
	"github.com/vitacare/vitacare/pkg/pagination"
)

// ChildResolver resolves child attributes owned by the subject domain,
// scoped to the account.
type ChildResolver interface {
	ChildName(ctx context.Context, accountID, childID uuid.UUID) (string, error)
	ChildBirthDate(ctx context.Context, accountID, childID uuid.UUID) (time.Time, error)
}

type Service struct {
	exams     ExaminationRepository
	children  ChildResolver
	encryptor *phi.FieldEncryptor
}

func NewService(exams ExaminationRepository, children ChildResolver, encryptor *phi.FieldEncryptor) *Service {
	return &Service{exams: exams, children: children, encryptor: encryptor}
}

// SeedForChild creates one pending examination row per schedule entry for a
// newly registered child.
func (s *Service) SeedForChild(ctx context.Context, accountID, childID uuid.UUID, dateOfBirth time.Time) error {
	for _, scheduled := range GenerateSchedule(dateOfBirth) {
		e := &Examination{
			AccountID:       accountID,
			ChildID:         childID,
			ExaminationType: scheduled.Type,
			DueDate:         scheduled.DueDate,
		}
		if err := s.exams.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", scheduled.Type, err)
		}
	}
	metrics.RecordCreated("uexam")
	return nil
}

// RescheduleForChild recomputes the child's examination rows from the birth
// date. Pending rows move to the recalculated due dates, missing schedule
// entries are created, and completed examinations keep their recorded dates.
func (s *Service) RescheduleForChild(ctx context.Context, accountID, childID uuid.UUID, dateOfBirth time.Time) error {
	existing, _, err := s.exams.ListByChild(ctx, childID, pagination.MaxLimit, 0)
	if err != nil {
		return err
	}
	byType := make(map[string]*Examination, len(existing))
	for _, e := range existing {
		if e.AccountID == accountID {
			byType[e.ExaminationType] = e
		}
	}

	for _, scheduled := range GenerateSchedule(dateOfBirth) {
		e, ok := byType[scheduled.Type]
		if !ok {
			created := &Examination{
				AccountID:       accountID,
				ChildID:         childID,
				ExaminationType: scheduled.Type,
				DueDate:         scheduled.DueDate,
			}
			if err := s.exams.Create(ctx, created); err != nil {
				return fmt.Errorf("create %s: %w", scheduled.Type, err)
			}
			continue
		}
		if e.ActualDate != nil || e.DueDate.Equal(scheduled.DueDate) {
			continue
		}
		e.DueDate = scheduled.DueDate
		if err := s.exams.Update(ctx, e); err != nil {
			return fmt.Errorf("update %s: %w", scheduled.Type, err)
		}
	}
	return nil
}

// Regenerate resolves the child's current birth date and reschedules the
// examination rows derived from it.
func (s *Service) Regenerate(ctx context.Context, accountID, childID uuid.UUID) error {
	dateOfBirth, err := s.children.ChildBirthDate(ctx, accountID, childID)
	if err != nil {
		return err
	}
	return s.RescheduleForChild(ctx, accountID, childID, dateOfBirth)
}

func (s *Service) Create(ctx context.Context, e *Examination) error {
	if e.AccountID == uuid.Nil {
		return fmt.Errorf("account_id is required")
	}
	if e.ChildID == uuid.Nil {
		return fmt.Errorf("child_id is required")
	}
	if e.ExaminationType == "" {
		return fmt.Errorf("examination_type is required")
	}
	if _, err := DueDate(time.Now(), e.ExaminationType); err != nil {
		return err
	}
	if e.DueDate.IsZero() {
		return fmt.Errorf("due_date is required")
	}
	if err := s.encryptNotes(e); err != nil {
		return err
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return err
	}
	metrics.RecordCreated("uexam")
	return s.decryptNotes(e)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Examination, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.AccountID != accountID {
		return nil, fmt.Errorf("examination %s not found", id)
	}
	if err := s.decryptNotes(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, e *Examination) error {
	existing, err := s.Get(ctx, e.AccountID, e.ID)
	if err != nil {
		return err
	}
	if e.DueDate.IsZero() {
		e.DueDate = existing.DueDate
	}
	if err := s.encryptNotes(e); err != nil {
		return err
	}
	if err := s.exams.Update(ctx, e); err != nil {
		return err
	}
	return s.decryptNotes(e)
}

// Complete records the date an examination was performed. A zero actualDate
// reopens the examination.
func (s *Service) Complete(ctx context.Context, accountID, id uuid.UUID, actualDate time.Time, notes *string) error {
	e, err := s.Get(ctx, accountID, id)
	if err != nil {
		return err
	}

	if actualDate.IsZero() {
		e.ActualDate = nil
	} else {
		if actualDate.After(time.Now().AddDate(0, 0, 1)) {
			return fmt.Errorf("actual_date must not be in the future")
		}
		e.ActualDate = &actualDate
		metrics.RecordCompleted("uexam")
	}
	if notes != nil {
		e.Notes = notes
	}
	if err := s.encryptNotes(e); err != nil {
		return err
	}
	return s.exams.Update(ctx, e)
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if _, err := s.Get(ctx, accountID, id); err != nil {
		return err
	}
	return s.exams.Delete(ctx, id)
}

func (s *Service) ListByChild(ctx context.Context, childID uuid.UUID, limit, offset int) ([]*Examination, int, error) {
	items, total, err := s.exams.ListByChild(ctx, childID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range items {
		if err := s.decryptNotes(e); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Examination, int, error) {
	items, total, err := s.exams.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, e := range items {
		if err := s.decryptNotes(e); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// ListPending returns all outstanding examinations for the account, oldest
// due date first.
func (s *Service) ListPending(ctx context.Context, accountID uuid.UUID) ([]*Examination, error) {
	return s.exams.ListPending(ctx, accountID)
}

// ExportICS renders a calendar appointment for the examination's due date.
func (s *Service) ExportICS(ctx context.Context, accountID, id uuid.UUID) (string, error) {
	e, err := s.Get(ctx, accountID, id)
	if err != nil {
		return "", err
	}

	childName, err := s.children.ChildName(ctx, accountID, e.ChildID)
	if err != nil {
		return "", fmt.Errorf("resolve child name: %w", err)
	}

	event := ics.AppointmentEvent(
		fmt.Sprintf("%s - %s", e.ExaminationType, childName),
		fmt.Sprintf("%s for %s\n\nPlease book an appointment with your pediatrician in time.", e.ExaminationType, childName),
		"Pediatric practice",
		e.DueDate,
	)
	metrics.RecordCalendarExport()
	return ics.Generate(event), nil
}

func (s *Service) encryptNotes(e *Examination) error {
	if s.encryptor == nil || e.Notes == nil || *e.Notes == "" {
		return nil
	}
	enc, err := s.encryptor.Encrypt(*e.Notes)
	if err != nil {
		return fmt.Errorf("encrypt notes: %w", err)
	}
	e.Notes = &enc
	return nil
}

func (s *Service) decryptNotes(e *Examination) error {
	if s.encryptor == nil || e.Notes == nil || *e.Notes == "" {
		return nil
	}
	dec, err := s.encryptor.Decrypt(*e.Notes)
	if err != nil {
		return fmt.Errorf("decrypt notes: %w", err)
	}
	e.Notes = &dec
	return nil
}
