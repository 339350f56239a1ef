package push

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitacare/vitacare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type subscriptionRepoPG struct{ pool *pgxpool.Pool }

func NewSubscriptionRepoPG(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepoPG{pool: pool}
}

func (r *subscriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const subCols = `id, account_id, endpoint, p256dh, auth, device_name, created_at`

func (r *subscriptionRepoPG) scanSubscription(row pgx.Row) (*Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.AccountID, &s.Endpoint, &s.P256dh, &s.Auth,
		&s.DeviceName, &s.CreatedAt)
	return &s, err
}

func (r *subscriptionRepoPG) Create(ctx context.Context, s *Subscription) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO push_subscriptions (id, account_id, endpoint, p256dh, auth, device_name)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.AccountID, s.Endpoint, s.P256dh, s.Auth, s.DeviceName)
	return err
}

func (r *subscriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	return r.scanSubscription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+subCols+` FROM push_subscriptions WHERE id = $1`, id))
}

func (r *subscriptionRepoPG) GetByEndpoint(ctx context.Context, accountID uuid.UUID, endpoint string) (*Subscription, error) {
	s, err := r.scanSubscription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+subCols+` FROM push_subscriptions WHERE account_id = $1 AND endpoint = $2`,
		accountID, endpoint))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *subscriptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id)
	return err
}

func (r *subscriptionRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Subscription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+subCols+` FROM push_subscriptions WHERE account_id = $1 ORDER BY created_at ASC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Subscription
	for rows.Next() {
		s, err := r.scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *subscriptionRepoPG) Count(ctx context.Context) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM push_subscriptions`).Scan(&total)
	return total, err
}
