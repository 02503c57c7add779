package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/domain/inventory"
	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/platform/auth"
)

const topSellingLimit = 10

type Service struct {
	reports    ReportRepository
	pharmacies pharmacy.PharmacyRepository
}

func NewService(reports ReportRepository, pharmacies pharmacy.PharmacyRepository) *Service {
	return &Service{reports: reports, pharmacies: pharmacies}
}

// Definitions returns the measure catalog. Static: the set only grows
// with a code change.
func (s *Service) Definitions() []Definition {
	return []Definition{
		{ID: MeasureRevenueByDay, Name: "Sales revenue by day", Description: "Daily revenue and sale counts, optionally within a date range.", Scope: "pharmacy"},
		{ID: MeasureTopSelling, Name: "Top-selling medicines", Description: "Medicines ranked by units sold.", Scope: "pharmacy"},
		{ID: MeasureInventoryValue, Name: "Inventory value", Description: "Sum of price times stock across the catalog.", Scope: "pharmacy"},
		{ID: MeasureLowStockCount, Name: "Low stock count", Description: "Number of medicines below the restock threshold.", Scope: "pharmacy"},
		{ID: MeasureStatusCounts, Name: "Pharmacy status counts", Description: "Registry-wide count of pharmacies per status.", Scope: "registry"},
	}
}

// Evaluate runs one pharmacy-scoped measure.
func (s *Service) Evaluate(ctx context.Context, measure string, pharmacyID uuid.UUID, from, to *time.Time) (*Result, error) {
	if err := s.requireOwnership(ctx, pharmacyID); err != nil {
		return nil, err
	}

	result := &Result{Measure: measure, PharmacyID: &pharmacyID, From: from, To: to, EvaluatedAt: time.Now()}
	var err error
	switch measure {
	case MeasureRevenueByDay:
		result.Value, err = s.reports.RevenueByDay(ctx, pharmacyID, from, to)
	case MeasureTopSelling:
		result.Value, err = s.reports.TopSellingMedicines(ctx, pharmacyID, topSellingLimit)
	case MeasureInventoryValue:
		result.Value, err = s.reports.InventoryValue(ctx, pharmacyID)
	case MeasureLowStockCount:
		result.Value, err = s.reports.LowStockCount(ctx, pharmacyID, inventory.LowStockThreshold)
	default:
		return nil, fmt.Errorf("unknown measure: %s", measure)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StatusCounts is the registry-wide measure; the route guard restricts
// it to super admins.
func (s *Service) StatusCounts(ctx context.Context) (*Result, error) {
	counts, err := s.reports.PharmacyStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Measure: MeasureStatusCounts, EvaluatedAt: time.Now(), Value: counts}, nil
}

func (s *Service) requireOwnership(ctx context.Context, pharmacyID uuid.UUID) error {
	if auth.RoleFromContext(ctx) == auth.RoleSuperAdmin {
		return nil
	}
	pharm, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return err
	}
	if auth.UserIDFromContext(ctx) != pharm.OwnerID.String() {
		return pharmacy.ErrNotOwner
	}
	return nil
}
