package push

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vitacare/vitacare/internal/platform/metrics"
	"github.com/vitacare/vitacare/internal/platform/notification"
)

type Service struct {
	subs SubscriptionRepository
}

func NewService(subs SubscriptionRepository) *Service {
	return &Service{subs: subs}
}

// Subscribe registers a browser subscription. Re-registering an endpoint the
// account already has replaces its keys.
func (s *Service) Subscribe(ctx context.Context, sub *Subscription) error {
	if sub.AccountID == uuid.Nil {
		return fmt.Errorf("account_id is required")
	}
	if sub.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if sub.P256dh == "" || sub.Auth == "" {
		return fmt.Errorf("p256dh and auth keys are required")
	}

	existing, err := s.subs.GetByEndpoint(ctx, sub.AccountID, sub.Endpoint)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := s.subs.Delete(ctx, existing.ID); err != nil {
			return err
		}
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		return err
	}
	s.updateGauge(ctx)
	return nil
}

func (s *Service) Unsubscribe(ctx context.Context, accountID, id uuid.UUID) error {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("subscription %s not found", id)
	}
	if sub.AccountID != accountID {
		return fmt.Errorf("subscription %s not found", id)
	}
	if err := s.subs.Delete(ctx, id); err != nil {
		return err
	}
	s.updateGauge(ctx)
	return nil
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Subscription, error) {
	return s.subs.ListByAccount(ctx, accountID)
}

func (s *Service) updateGauge(ctx context.Context) {
	if total, err := s.subs.Count(ctx); err == nil {
		metrics.SetPushSubscriptions(total)
	}
}

// -- notification.SubscriptionResolver --

// SubscriptionsForRecipient resolves the account's subscriptions for web
// push delivery. The recipient is the account UUID in string form.
func (s *Service) SubscriptionsForRecipient(ctx context.Context, recipient string) ([]notification.WebPushSubscription, error) {
	accountID, err := uuid.Parse(recipient)
	if err != nil {
		return nil, fmt.Errorf("recipient is not an account id: %w", err)
	}
	subs, err := s.subs.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]notification.WebPushSubscription, len(subs))
	for i, sub := range subs {
		out[i] = notification.WebPushSubscription{
			ID:       sub.ID.String(),
			Endpoint: sub.Endpoint,
			P256dh:   sub.P256dh,
			Auth:     sub.Auth,
		}
	}
	return out, nil
}

// RemoveSubscription prunes a subscription the push service reported gone.
func (s *Service) RemoveSubscription(ctx context.Context, id string) error {
	subID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid subscription id: %w", err)
	}
	if err := s.subs.Delete(ctx, subID); err != nil {
		return err
	}
	s.updateGauge(ctx)
	return nil
}
