package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReportRepository runs the aggregate queries behind each measure.
type ReportRepository interface {
	RevenueByDay(ctx context.Context, pharmacyID uuid.UUID, from, to *time.Time) ([]DailyRevenue, error)
	TopSellingMedicines(ctx context.Context, pharmacyID uuid.UUID, limit int) ([]MedicineSales, error)
	InventoryValue(ctx context.Context, pharmacyID uuid.UUID) (float64, error)
	LowStockCount(ctx context.Context, pharmacyID uuid.UUID, threshold int) (int, error)
	PharmacyStatusCounts(ctx context.Context) ([]StatusCount, error)
}
