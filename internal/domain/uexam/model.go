package uexam

import (
	"time"

	"github.com/google/uuid"
)

// Examination maps to the u_examinations table. One row exists per child and
// examination type; ActualDate is nil while the examination is outstanding.
type Examination struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	AccountID       uuid.UUID  `db:"account_id" json:"account_id"`
	ChildID         uuid.UUID  `db:"child_id" json:"child_id"`
	ExaminationType string     `db:"examination_type" json:"examination_type"`
	DueDate         time.Time  `db:"due_date" json:"due_date"`
	ActualDate      *time.Time `db:"actual_date" json:"actual_date,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Completed reports whether the examination has been performed.
func (e *Examination) Completed() bool {
	return e.ActualDate != nil
}
