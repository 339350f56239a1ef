package push

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is one browser push registration of an account. Endpoint plus
// the p256dh and auth keys are what the Web Push protocol needs to deliver.
type Subscription struct {
	ID         uuid.UUID `db:"id" json:"id"`
	AccountID  uuid.UUID `db:"account_id" json:"account_id"`
	Endpoint   string    `db:"endpoint" json:"endpoint"`
	P256dh     string    `db:"p256dh" json:"p256dh"`
	Auth       string    `db:"auth" json:"auth"`
	DeviceName string    `db:"device_name" json:"device_name,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
