package checkup

import (
	"time"

	"github.com/google/uuid"
)

// Checkup maps to the checkups table. Pending rows carry the next due date
// for a checkup type; completing one records the actual date and rolls the
// schedule forward.
type Checkup struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AccountID   uuid.UUID  `db:"account_id" json:"account_id"`
	CheckupType string     `db:"checkup_type" json:"checkup_type"`
	DueDate     time.Time  `db:"due_date" json:"due_date"`
	ActualDate  *time.Time `db:"actual_date" json:"actual_date,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Completed reports whether the checkup has been performed.
func (c *Checkup) Completed() bool {
	return c.ActualDate != nil
}

// PlannedCheckup is a computed view of one applicable checkup type with its
// next due date, returned by the plan endpoint.
type PlannedCheckup struct {
	Type           string     `json:"type"`
	Description    string     `json:"description"`
	IntervalMonths int        `json:"interval_months"`
	DueDate        time.Time  `json:"due_date"`
	LastDone       *time.Time `json:"last_done,omitempty"`
}
