package reporting

import (
	"time"

	"github.com/google/uuid"
)

// Measure identifiers. Each is evaluated on demand against live data;
// nothing is precomputed.
const (
	MeasureRevenueByDay   = "sales_revenue_by_day"
	MeasureTopSelling     = "top_selling_medicines"
	MeasureInventoryValue = "inventory_value"
	MeasureLowStockCount  = "low_stock_count"
	MeasureStatusCounts   = "pharmacy_status_counts"
)

// Definition describes one available measure.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Scope is "pharmacy" for owner-level measures and "registry"
	// for the super admin view.
	Scope string `json:"scope"`
}

// Result wraps an evaluated measure with its parameters.
type Result struct {
	Measure     string      `json:"measure"`
	PharmacyID  *uuid.UUID  `json:"pharmacy_id,omitempty"`
	From        *time.Time  `json:"from,omitempty"`
	To          *time.Time  `json:"to,omitempty"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
	Value       interface{} `json:"value"`
}

type DailyRevenue struct {
	Day     time.Time `json:"day"`
	Revenue float64   `json:"revenue"`
	Count   int       `json:"count"`
}

type MedicineSales struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Name       string    `json:"name"`
	UnitsSold  int       `json:"units_sold"`
	Revenue    float64   `json:"revenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
