package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
)

// WebPushSubscription is the browser subscription a push message is
// delivered to.
type WebPushSubscription struct {
	ID       string
	Endpoint string
	P256dh   string
	Auth     string
}

// SubscriptionResolver maps a recipient (the account UUID) to its registered
// push subscriptions and removes subscriptions the push service reports gone.
type SubscriptionResolver interface {
	SubscriptionsForRecipient(ctx context.Context, recipient string) ([]WebPushSubscription, error)
	RemoveSubscription(ctx context.Context, id string) error
}

// WebPushSender delivers push messages via the Web Push protocol (RFC 8030)
// using VAPID authentication.
type WebPushSender struct {
	resolver SubscriptionResolver
	options  webpush.Options
	logger   zerolog.Logger
}

// NewWebPushSender creates a WebPushSender with the given VAPID key pair.
func NewWebPushSender(resolver SubscriptionResolver, vapidPublic, vapidPrivate, subject string, logger zerolog.Logger) *WebPushSender {
	return &WebPushSender{
		resolver: resolver,
		options: webpush.Options{
			VAPIDPublicKey:  vapidPublic,
			VAPIDPrivateKey: vapidPrivate,
			Subscriber:      subject,
			TTL:             60 * 60 * 24,
		},
		logger: logger,
	}
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendPush delivers the message to every subscription registered for the
// recipient. Subscriptions rejected with 404 or 410 are pruned. An error is
// returned only when no subscription accepted the message.
func (s *WebPushSender) SendPush(ctx context.Context, recipient, title, body string) error {
	subs, err := s.resolver.SubscriptionsForRecipient(ctx, recipient)
	if err != nil {
		return fmt.Errorf("resolve subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return fmt.Errorf("no push subscriptions for recipient %s", recipient)
	}

	payload, err := json.Marshal(pushPayload{Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	delivered := 0
	for _, sub := range subs {
		resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}, &s.options)
		if err != nil {
			s.logger.Warn().Err(err).Str("subscription_id", sub.ID).Msg("push delivery failed")
			continue
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			// The push service no longer knows this subscription.
			if err := s.resolver.RemoveSubscription(ctx, sub.ID); err != nil {
				s.logger.Warn().Err(err).Str("subscription_id", sub.ID).Msg("prune stale subscription")
			}
		default:
			if resp.StatusCode < 300 {
				delivered++
			} else {
				s.logger.Warn().Int("status", resp.StatusCode).Str("subscription_id", sub.ID).Msg("push service rejected message")
			}
		}
	}

	if delivered == 0 {
		return fmt.Errorf("push delivery failed for all %d subscriptions", len(subs))
	}
	return nil
}
