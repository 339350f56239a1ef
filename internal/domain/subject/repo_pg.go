package subject

import (
	"context"
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

// =========== Profile Repository ===========

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepoPG{pool: pool}
}

func (r *profileRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const profileCols = `id, full_name, date_of_birth, gender, location, email,
	reminder_dismissed_until, created_at, updated_at`

func (r *profileRepoPG) scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.FullName, &p.DateOfBirth, &p.Gender, &p.Location,
		&p.Email, &p.ReminderDismissedUntil, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *profileRepoPG) Get(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	return r.scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id = $1`, accountID))
}

func (r *profileRepoPG) Upsert(ctx context.Context, p *Profile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO profiles (id, full_name, date_of_birth, gender, location, email)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			location = EXCLUDED.location,
			email = EXCLUDED.email,
			updated_at = NOW()`,
		p.ID, p.FullName, p.DateOfBirth, p.Gender, p.Location, p.Email)
	return err
}

func (r *profileRepoPG) SetReminderDismissedUntil(ctx context.Context, accountID uuid.UUID, until *time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE profiles SET reminder_dismissed_until = $2, updated_at = NOW() WHERE id = $1`,
		accountID, until)
	return err
}

// =========== Child Repository ===========

type childRepoPG struct{ pool *pgxpool.Pool }

func NewChildRepoPG(pool *pgxpool.Pool) ChildRepository {
	return &childRepoPG{pool: pool}
}

func (r *childRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const childCols = `id, account_id, first_name, last_name, date_of_birth, created_at, updated_at`

func (r *childRepoPG) scanChild(row pgx.Row) (*Child, error) {
	var c Child
	err := row.Scan(&c.ID, &c.AccountID, &c.FirstName, &c.LastName,
		&c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *childRepoPG) Create(ctx context.Context, c *Child) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO children (id, account_id, first_name, last_name, date_of_birth)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.AccountID, c.FirstName, c.LastName, c.DateOfBirth)
	return err
}

func (r *childRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Child, error) {
	return r.scanChild(r.conn(ctx).QueryRow(ctx,
		`SELECT `+childCols+` FROM children WHERE id = $1`, id))
}

func (r *childRepoPG) Update(ctx context.Context, c *Child) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE children SET first_name=$2, last_name=$3, date_of_birth=$4, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.FirstName, c.LastName, c.DateOfBirth)
	return err
}

func (r *childRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM children WHERE id = $1`, id)
	return err
}

func (r *childRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Child, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM children WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+childCols+` FROM children WHERE account_id = $1 ORDER BY date_of_birth DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Child
	for rows.Next() {
		c, err := r.scanChild(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}
