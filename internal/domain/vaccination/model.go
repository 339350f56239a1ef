package vaccination

import (
	"time"

	"github.com/google/uuid"
)

// Vaccination maps to the vaccinations table. ChildID is nil for the account
// holder's own vaccinations. NextDueDate is set explicitly when a booster is
// scheduled.
type Vaccination struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AccountID   uuid.UUID  `db:"account_id" json:"account_id"`
	ChildID     *uuid.UUID `db:"child_id" json:"child_id,omitempty"`
	VaccineName string     `db:"vaccine_name" json:"vaccine_name"`
	Category    string     `db:"category" json:"category"`
	GivenAt     *time.Time `db:"given_at" json:"given_at,omitempty"`
	NextDueDate *time.Time `db:"next_due_date" json:"next_due_date,omitempty"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Completed reports whether the vaccination dose has been given and no
// booster is outstanding.
func (v *Vaccination) Completed() bool {
	return v.GivenAt != nil && v.NextDueDate == nil
}
