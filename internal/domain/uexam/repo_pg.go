package uexam

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

type examinationRepoPG struct{ pool *pgxpool.Pool }

func NewExaminationRepoPG(pool *pgxpool.Pool) ExaminationRepository {
	return &examinationRepoPG{pool: pool}
}

func (r *examinationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const examCols = `id, account_id, child_id, examination_type, due_date,
	actual_date, notes, created_at, updated_at`

func (r *examinationRepoPG) scanExam(row pgx.Row) (*Examination, error) {
	var e Examination
	err := row.Scan(&e.ID, &e.AccountID, &e.ChildID, &e.ExaminationType,
		&e.DueDate, &e.ActualDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *examinationRepoPG) Create(ctx context.Context, e *Examination) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO u_examinations (id, account_id, child_id, examination_type, due_date, actual_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.AccountID, e.ChildID, e.ExaminationType, e.DueDate, e.ActualDate, e.Notes)
	return err
}

func (r *examinationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Examination, error) {
	return r.scanExam(r.conn(ctx).QueryRow(ctx,
		`SELECT `+examCols+` FROM u_examinations WHERE id = $1`, id))
}

func (r *examinationRepoPG) Update(ctx context.Context, e *Examination) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE u_examinations SET due_date=$2, actual_date=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.DueDate, e.ActualDate, e.Notes)
	return err
}

func (r *examinationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM u_examinations WHERE id = $1`, id)
	return err
}

func (r *examinationRepoPG) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Examination, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM u_examinations WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+examCols+` FROM u_examinations WHERE account_id = $1 ORDER BY due_date ASC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *examinationRepoPG) ListByChild(ctx context.Context, childID uuid.UUID, limit, offset int) ([]*Examination, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM u_examinations WHERE child_id = $1`, childID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+examCols+` FROM u_examinations WHERE child_id = $1 ORDER BY due_date ASC LIMIT $2 OFFSET $3`,
		childID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *examinationRepoPG) ListPending(ctx context.Context, accountID uuid.UUID) ([]*Examination, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+examCols+` FROM u_examinations WHERE account_id = $1 AND actual_date IS NULL ORDER BY due_date ASC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *examinationRepoPG) collect(rows pgx.Rows, total int) ([]*Examination, int, error) {
	var items []*Examination
	for rows.Next() {
		e, err := r.scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}
