package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository is the storage contract for the sales ledger.
type SaleRepository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, from, to *time.Time, limit, offset int) ([]*Sale, int, error)
	SummaryByPharmacy(ctx context.Context, pharmacyID uuid.UUID) (*Summary, error)
}
