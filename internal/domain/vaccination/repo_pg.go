package vaccination

import (
	"context"

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

type vaccinationRepoPG struct{ pool *pgxpool.Pool }

func NewVaccinationRepoPG(pool *pgxpool.Pool) VaccinationRepository {
	return &vaccinationRepoPG{pool: pool}
}

func (r *vaccinationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const vaccCols = `id, account_id, child_id, vaccine_name, category,
	given_at, next_due_date, notes, created_at, updated_at`

func (r *vaccinationRepoPG) scanVaccination(row pgx.Row) (*Vaccination, error) {
	var v Vaccination
	err := row.Scan(&v.ID, &v.AccountID, &v.ChildID, &v.VaccineName, &v.Category,
		&v.GivenAt, &v.NextDueDate, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *vaccinationRepoPG) Create(ctx context.Context, v *Vaccination) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vaccinations (id, account_id, child_id, vaccine_name, category, given_at, next_due_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		v.ID, v.AccountID, v.ChildID, v.VaccineName, v.Category, v.GivenAt, v.NextDueDate, v.Notes)
	return err
}

func (r *vaccinationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Vaccination, error) {
	return r.scanVaccination(r.conn(ctx).QueryRow(ctx,
		`SELECT `+vaccCols+` FROM vaccinations WHERE id = $1`, id))
}

func (r *vaccinationRepoPG) Update(ctx context.Context, v *Vaccination) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE vaccinations SET vaccine_name=$2, category=$3, given_at=$4, next_due_date=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.VaccineName, v.Category, v.GivenAt, v.NextDueDate, v.Notes)
	return err
}

func (r *vaccinationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM vaccinations WHERE id = $1`, id)
	return err
}

func (r *vaccinationRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Vaccination, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM vaccinations WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+vaccCols+` FROM vaccinations WHERE account_id = $1 ORDER BY given_at DESC NULLS FIRST LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *vaccinationRepoPG) ListByChild(ctx context.Context, childID uuid.UUID, limit, offset int) ([]*Vaccination, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM vaccinations WHERE child_id = $1`, childID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+vaccCols+` FROM vaccinations WHERE child_id = $1 ORDER BY given_at DESC NULLS FIRST LIMIT $2 OFFSET $3`,
		childID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *vaccinationRepoPG) ListDue(ctx context.Context, accountID uuid.UUID) ([]*Vaccination, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+vaccCols+` FROM vaccinations WHERE account_id = $1 AND next_due_date IS NOT NULL ORDER BY next_due_date ASC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *vaccinationRepoPG) collect(rows pgx.Rows) ([]*Vaccination, error) {
	var items []*Vaccination
	for rows.Next() {
		v, err := r.scanVaccination(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}
