package checkup

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CheckupRepository interface {
	Create(ctx context.Context, c *Checkup) error
	GetByID(ctx context.Context, id uuid.UUID) (*Checkup, error)
	Update(ctx context.Context, c *Checkup) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Checkup, int, error)
	ListPending(ctx context.Context, accountID uuid.UUID) ([]*Checkup, error)
	// LastCompleted returns the most recent actual date per checkup type.
	LastCompleted(ctx context.Context, accountID uuid.UUID) (map[string]time.Time, error)
	// PendingByType returns the open row for a checkup type, or nil.
	PendingByType(ctx context.Context, accountID uuid.UUID, checkupType string) (*Checkup, error)
}
