package inventory

import (
	"context"

	"github.com/google/uuid"
)

// MedicineRepository is the storage contract for the stock catalog.
type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, term string, limit, offset int) ([]*Medicine, int, error)
	ListLowStock(ctx context.Context, pharmacyID uuid.UUID, threshold int) ([]*Medicine, error)

	// AdjustStock applies delta to the medicine's stock in a single
	// conditional statement. A negative delta that would take stock
	// below zero affects no rows and returns ErrInsufficientStock.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}
