package subject

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted on profiles.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderDiverse = "diverse"
)

// Profile maps to the profiles table. It holds the account holder's own
// demographic data; the profile ID is the account ID.
type Profile struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	FullName               string     `db:"full_name" json:"full_name"`
	DateOfBirth            *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender                 string     `db:"gender" json:"gender,omitempty"`
	Location               string     `db:"location" json:"location,omitempty"`
	Email                  string     `db:"email" json:"email,omitempty"`
	ReminderDismissedUntil *time.Time `db:"reminder_dismissed_until" json:"reminder_dismissed_until,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Child maps to the children table.
type Child struct {
	ID          uuid.UUID `db:"id" json:"id"`
	AccountID   uuid.UUID `db:"account_id" json:"account_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the child's display name.
func (c *Child) FullName() string {
	return c.FirstName + " " + c.LastName
}
