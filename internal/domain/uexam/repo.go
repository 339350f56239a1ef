package uexam

import (
	"context"

	"github.com/google/uuid"
)

type ExaminationRepository interface {
	Create(ctx context.Context, e *Examination) error
	GetByID(ctx context.Context, id uuid.UUID) (*Examination, error)
	Update(ctx context.Context, e *Examination) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Examination, int, error)
	ListByChild(ctx context.Context, childID uuid.UUID, limit, offset int) ([]*Examination, int, error)
	ListPending(ctx context.Context, accountID uuid.UUID) ([]*Examination, error)
}
