package subject

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	Get(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	SetReminderDismissedUntil(ctx context.Context, accountID uuid.UUID, until *time.Time) error
}

type ChildRepository interface {
	Create(ctx context.Context, c *Child) error
	GetByID(ctx context.Context, id uuid.UUID) (*Child, error)
	Update(ctx context.Context, c *Child) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Child, int, error)
}
