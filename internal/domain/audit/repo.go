package audit

import (
	"context"

	"github.com/medibot/medibot/internal/platform/middleware"
)

// Filters narrow the audit trail listing.
type Filters struct {
	UserID   string
	Resource string
	Action   string
}

type EntryRepository interface {
	Insert(ctx context.Context, e middleware.AuditEntry) error
	List(ctx context.Context, f Filters, limit, offset int) ([]*Entry, int, error)
}
