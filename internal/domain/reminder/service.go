package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vitacare/vitacare/internal/domain/checkup"
	"github.com/vitacare/vitacare/internal/domain/uexam"
	"github.com/vitacare/vitacare/internal/domain/vaccination"
	"github.com/vitacare/vitacare/internal/platform/metrics"
)

type ExaminationSource interface {
	ListPending(ctx context.Context, accountID uuid.UUID) ([]*uexam.Examination, error)
}

type CheckupSource interface {
	ListPending(ctx context.Context, accountID uuid.UUID) ([]*checkup.Checkup, error)
}

type VaccinationSource interface {
	ListDue(ctx context.Context, accountID uuid.UUID) ([]*vaccination.Vaccination, error)
}

// AccountInfo supplies child names for reminder messages and the account's
// reminder snooze.
type AccountInfo interface {
	ChildNames(ctx context.Context, accountID uuid.UUID) (map[uuid.UUID]string, error)
	ReminderDismissedUntil(ctx context.Context, accountID uuid.UUID) (*time.Time, error)
}

type Service struct {
	exams        ExaminationSource
	checkups     CheckupSource
	vaccinations VaccinationSource
	accounts     AccountInfo
	horizonDays  int
	urgentWithin int
}

func NewService(exams ExaminationSource, checkups CheckupSource, vaccinations VaccinationSource, accounts AccountInfo, horizonDays, urgentWithin int) *Service {
	return &Service{
		exams:        exams,
		checkups:     checkups,
		vaccinations: vaccinations,
		accounts:     accounts,
		horizonDays:  horizonDays,
		urgentWithin: urgentWithin,
	}
}

func (s *Service) collectEvents(ctx context.Context, accountID uuid.UUID) ([]Event, error) {
	var events []Event

	exams, err := s.exams.ListPending(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, e := range exams {
		childID := e.ChildID
		events = append(events, Event{
			Kind:      KindUExamination,
			ID:        e.ID,
			SubjectID: &childID,
			Title:     e.ExaminationType,
			DueDate:   e.DueDate,
			Completed: e.Completed(),
		})
	}

	checkups, err := s.checkups.ListPending(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, c := range checkups {
		events = append(events, Event{
			Kind:      KindCheckup,
			ID:        c.ID,
			Title:     c.CheckupType,
			DueDate:   c.DueDate,
			Completed: c.Completed(),
		})
	}

	vaccinations, err := s.vaccinations.ListDue(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, v := range vaccinations {
		if v.NextDueDate == nil {
			continue
		}
		events = append(events, Event{
			Kind:      KindVaccination,
			ID:        v.ID,
			SubjectID: v.ChildID,
			Title:     v.VaccineName,
			DueDate:   *v.NextDueDate,
			Completed: false,
		})
	}
	return events, nil
}

// Reminders classifies everything pending for the account. While a reminder
// snooze is active the list is empty.
func (s *Service) Reminders(ctx context.Context, accountID uuid.UUID, ref time.Time) ([]Reminder, error) {
	dismissedUntil, err := s.accounts.ReminderDismissedUntil(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if dismissedUntil != nil && ref.Before(*dismissedUntil) {
		return nil, nil
	}

	events, err := s.collectEvents(ctx, accountID)
	if err != nil {
		return nil, err
	}
	names, err := s.accounts.ChildNames(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Records of deleted children are skipped rather than failing the
	// whole listing.
	reminders, err := Classify(events, names, ref, s.horizonDays, s.urgentWithin, DropDangling)
	if err != nil {
		return nil, err
	}
	for _, r := range reminders {
		metrics.RecordReminderClassified(r.Urgency)
	}
	return reminders, nil
}

func (s *Service) Summary(ctx context.Context, accountID uuid.UUID, ref time.Time) (Summary, error) {
	reminders, err := s.Reminders(ctx, accountID, ref)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(reminders), nil
}

// Messages renders the account's reminders as sentences, most pressing
// first.
func (s *Service) Messages(ctx context.Context, accountID uuid.UUID, ref time.Time) ([]string, error) {
	reminders, err := s.Reminders(ctx, accountID, ref)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(reminders))
	for i, r := range reminders {
		out[i] = FormatMessage(r)
	}
	return out, nil
}

// Digest returns the one-line notification text for the account, empty when
// nothing is pending or reminders are snoozed.
func (s *Service) Digest(ctx context.Context, accountID uuid.UUID, ref time.Time) (string, error) {
	summary, err := s.Summary(ctx, accountID, ref)
	if err != nil {
		return "", err
	}
	return DigestMessage(summary), nil
}
