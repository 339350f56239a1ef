package push

import (
	"context"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	GetByEndpoint(ctx context.Context, accountID uuid.UUID, endpoint string) (*Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Subscription, error)
	Count(ctx context.Context) (int, error)
}
