package vaccination

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vitacare/vitacare/internal/platform/ics"
	"github.com/vitacare/vitacare/internal/platform/metrics"
	"github.com/vitacare/vitacare/internal/platform/phi"
)

type Service struct {
	vaccinations VaccinationRepository
	encryptor    *phi.FieldEncryptor
}

func NewService(vaccinations VaccinationRepository, encryptor *phi.FieldEncryptor) *Service {
	return &Service{vaccinations: vaccinations, encryptor: encryptor}
}

func (s *Service) validate(v *Vaccination) error {
	if v.AccountID == uuid.Nil {
		return fmt.Errorf("account_id is required")
	}
	if v.VaccineName == "" {
		return fmt.Errorf("vaccine_name is required")
	}
	// Catalog vaccines carry their catalog category; free-text entries fall
	// into Sonstige unless a category was given.
	if entry, ok := FindByName(v.VaccineName); ok {
		v.VaccineName = entry.Name
		v.Category = entry.Category
	} else if v.Category == "" {
		v.Category = CategoryOther
	}
	if v.GivenAt != nil && v.GivenAt.After(time.Now().AddDate(0, 0, 1)) {
		return fmt.Errorf("given_at must not be in the future")
	}
	if v.GivenAt != nil && v.NextDueDate != nil && !v.NextDueDate.After(*v.GivenAt) {
		return fmt.Errorf("next_due_date must be after given_at")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, v *Vaccination) error {
	if err := s.validate(v); err != nil {
		return err
	}
	if err := s.encryptNotes(v); err != nil {
		return err
	}
	if err := s.vaccinations.Create(ctx, v); err != nil {
		return err
	}
	metrics.RecordCreated("vaccination")
	return s.decryptNotes(v)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Vaccination, error) {
	v, err := s.vaccinations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.AccountID != accountID {
		return nil, fmt.Errorf("vaccination %s not found", id)
	}
	if err := s.decryptNotes(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, v *Vaccination) error {
	existing, err := s.Get(ctx, v.AccountID, v.ID)
	if err != nil {
		return err
	}
	if v.VaccineName == "" {
		v.VaccineName = existing.VaccineName
	}
	if v.ChildID == nil {
		v.ChildID = existing.ChildID
	}
	if err := s.validate(v); err != nil {
		return err
	}
	if err := s.encryptNotes(v); err != nil {
		return err
	}
	if err := s.vaccinations.Update(ctx, v); err != nil {
		return err
	}
	return s.decryptNotes(v)
}

// RecordDose marks the scheduled dose as given and clears the due date. An
// optional nextDue schedules the following booster.
func (s *Service) RecordDose(ctx context.Context, accountID, id uuid.UUID, givenAt time.Time, nextDue *time.Time) error {
	v, err := s.Get(ctx, accountID, id)
	if err != nil {
		return err
	}
	if givenAt.IsZero() {
		return fmt.Errorf("given_at is required")
	}
	if givenAt.After(time.Now().AddDate(0, 0, 1)) {
		return fmt.Errorf("given_at must not be in the future")
	}
	v.GivenAt = &givenAt
	v.NextDueDate = nextDue
	if v.NextDueDate != nil && !v.NextDueDate.After(givenAt) {
		return fmt.Errorf("next_due_date must be after given_at")
	}
	if err := s.encryptNotes(v); err != nil {
		return err
	}
	if err := s.vaccinations.Update(ctx, v); err != nil {
		return err
	}
	metrics.RecordCompleted("vaccination")
	return nil
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if _, err := s.Get(ctx, accountID, id); err != nil {
		return err
	}
	return s.vaccinations.Delete(ctx, id)
}

func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Vaccination, int, error) {
	items, total, err := s.vaccinations.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range items {
		if err := s.decryptNotes(v); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (s *Service) ListByChild(ctx context.Context, childID uuid.UUID, limit, offset int) ([]*Vaccination, int, error) {
	items, total, err := s.vaccinations.ListByChild(ctx, childID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range items {
		if err := s.decryptNotes(v); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

// ListDue returns vaccinations with an outstanding booster, oldest first.
func (s *Service) ListDue(ctx context.Context, accountID uuid.UUID) ([]*Vaccination, error) {
	return s.vaccinations.ListDue(ctx, accountID)
}

// ExportICS renders a calendar appointment for the next scheduled dose.
func (s *Service) ExportICS(ctx context.Context, accountID, id uuid.UUID) (string, error) {
	v, err := s.Get(ctx, accountID, id)
	if err != nil {
		return "", err
	}
	if v.NextDueDate == nil {
		return "", fmt.Errorf("vaccination %s has no scheduled dose", id)
	}
	event := ics.AppointmentEvent(
		fmt.Sprintf("Vaccination: %s", v.VaccineName),
		fmt.Sprintf("%s\n\nPlease book an appointment with your doctor in time.", v.VaccineName),
		"Doctor's office",
		*v.NextDueDate,
	)
	metrics.RecordCalendarExport()
	return ics.Generate(event), nil
}

func (s *Service) encryptNotes(v *Vaccination) error {
	if s.encryptor == nil || v.Notes == nil || *v.Notes == "" {
		return nil
	}
	enc, err := s.encryptor.Encrypt(*v.Notes)
	if err != nil {
		return fmt.Errorf("encrypt notes: %w", err)
	}
	v.Notes = &enc
	return nil
}

func (s *Service) decryptNotes(v *Vaccination) error {
	if s.encryptor == nil || v.Notes == nil || *v.Notes == "" {
		return nil
	}
	dec, err := s.encryptor.Decrypt(*v.Notes)
	if err != nil {
		return fmt.Errorf("decrypt notes: %w", err)
	}
	v.Notes = &dec
	return nil
}
