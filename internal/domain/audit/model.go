package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one persisted audit trail row.
type Entry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	UserRole   string    `db:"user_role" json:"user_role"`
	Resource   string    `db:"resource" json:"resource"`
	Action     string    `db:"action" json:"action"`
	Method     string    `db:"method" json:"method"`
	Path       string    `db:"path" json:"path"`
	StatusCode int       `db:"status_code" json:"status_code"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	RequestID  string    `db:"request_id" json:"request_id"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
