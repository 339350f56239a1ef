package vaccination

import (
	"context"

	"github.com/google/uuid"
)

type VaccinationRepository interface {
	Create(ctx context.Context, v *Vaccination) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vaccination, error)
	Update(ctx context.Context, v *Vaccination) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Vaccination, int, error)
	ListByChild(ctx context.Context, childID uuid.UUID, limit, offset int) ([]*Vaccination, int, error)
	// ListDue returns vaccinations with an outstanding next dose, oldest first.
	ListDue(ctx context.Context, accountID uuid.UUID) ([]*Vaccination, error)
}
