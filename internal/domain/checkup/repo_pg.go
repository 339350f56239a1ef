package checkup

import (
	"context"
	"errors"
	"time"

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

type checkupRepoPG struct{ pool *pgxpool.Pool }

func NewCheckupRepoPG(pool *pgxpool.Pool) CheckupRepository {
	return &checkupRepoPG{pool: pool}
}

func (r *checkupRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const checkupCols = `id, account_id, checkup_type, due_date, actual_date, notes, created_at, updated_at`

func (r *checkupRepoPG) scanCheckup(row pgx.Row) (*Checkup, error) {
	var c Checkup
	err := row.Scan(&c.ID, &c.AccountID, &c.CheckupType, &c.DueDate,
		&c.ActualDate, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *checkupRepoPG) Create(ctx context.Context, c *Checkup) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO checkups (id, account_id, checkup_type, due_date, actual_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.ID, c.AccountID, c.CheckupType, c.DueDate, c.ActualDate, c.Notes)
	return err
}

func (r *checkupRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Checkup, error) {
	return r.scanCheckup(r.conn(ctx).QueryRow(ctx,
		`SELECT `+checkupCols+` FROM checkups WHERE id = $1`, id))
}

func (r *checkupRepoPG) Update(ctx context.Context, c *Checkup) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE checkups SET due_date=$2, actual_date=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.DueDate, c.ActualDate, c.Notes)
	return err
}

func (r *checkupRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM checkups WHERE id = $1`, id)
	return err
}

func (r *checkupRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Checkup, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM checkups WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+checkupCols+` FROM checkups WHERE account_id = $1 ORDER BY due_date ASC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *checkupRepoPG) ListPending(ctx context.Context, accountID uuid.UUID) ([]*Checkup, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+checkupCols+` FROM checkups WHERE account_id = $1 AND actual_date IS NULL ORDER BY due_date ASC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *checkupRepoPG) LastCompleted(ctx context.Context, accountID uuid.UUID) (map[string]time.Time, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT checkup_type, MAX(actual_date) FROM checkups
		WHERE account_id = $1 AND actual_date IS NOT NULL
		GROUP BY checkup_type`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var typ string
		var last time.Time
		if err := rows.Scan(&typ, &last); err != nil {
			return nil, err
		}
		out[typ] = last
	}
	return out, rows.Err()
}

func (r *checkupRepoPG) PendingByType(ctx context.Context, accountID uuid.UUID, checkupType string) (*Checkup, error) {
	c, err := r.scanCheckup(r.conn(ctx).QueryRow(ctx,
		`SELECT `+checkupCols+` FROM checkups
		 WHERE account_id = $1 AND checkup_type = $2 AND actual_date IS NULL
		 ORDER BY due_date ASC LIMIT 1`,
		accountID, checkupType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *checkupRepoPG) collect(rows pgx.Rows) ([]*Checkup, error) {
	var items []*Checkup
	for rows.Next() {
		c, err := r.scanCheckup(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
