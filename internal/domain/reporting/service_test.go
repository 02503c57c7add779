package reporting

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/domain/sales"
	"github.com/medibot/medibot/internal/platform/auth"
)

type mockReportRepo struct {
	revenue     []DailyRevenue
	topSelling  []MedicineSales
	stockValue  float64
	lowStock    int
	statusRows  []StatusCount
	lastMeasure string
}

func (m *mockReportRepo) RevenueByDay(_ context.Context, _ uuid.UUID, _, _ *time.Time) ([]DailyRevenue, error) {
	m.lastMeasure = MeasureRevenueByDay
	return m.revenue, nil
}

func (m *mockReportRepo) TopSellingMedicines(_ context.Context, _ uuid.UUID, _ int) ([]MedicineSales, error) {
	m.lastMeasure = MeasureTopSelling
	return m.topSelling, nil
}

func (m *mockReportRepo) InventoryValue(_ context.Context, _ uuid.UUID) (float64, error) {
	m.lastMeasure = MeasureInventoryValue
	return m.stockValue, nil
}

func (m *mockReportRepo) LowStockCount(_ context.Context, _ uuid.UUID, _ int) (int, error) {
	m.lastMeasure = MeasureLowStockCount
	return m.lowStock, nil
}

func (m *mockReportRepo) PharmacyStatusCounts(_ context.Context) ([]StatusCount, error) {
	m.lastMeasure = MeasureStatusCounts
	return m.statusRows, nil
}

type mockPharmacyRepo struct {
	pharmacies map[uuid.UUID]*pharmacy.Pharmacy
}

func (m *mockPharmacyRepo) Create(_ context.Context, p *pharmacy.Pharmacy) error { return nil }

func (m *mockPharmacyRepo) GetByID(_ context.Context, id uuid.UUID) (*pharmacy.Pharmacy, error) {
	p, ok := m.pharmacies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPharmacyRepo) GetByOwner(_ context.Context, ownerID uuid.UUID) (*pharmacy.Pharmacy, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockPharmacyRepo) Update(_ context.Context, p *pharmacy.Pharmacy) error { return nil }
func (m *mockPharmacyRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	return nil
}
func (m *mockPharmacyRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }
func (m *mockPharmacyRepo) List(_ context.Context, status string, limit, offset int) ([]*pharmacy.Pharmacy, int, error) {
	return nil, 0, nil
}

func newFixture() (*Service, *mockReportRepo, uuid.UUID, context.Context) {
	reports := &mockReportRepo{}
	ownerID := uuid.New()
	pharm := &pharmacy.Pharmacy{ID: uuid.New(), OwnerID: ownerID, Status: pharmacy.StatusApproved}
	pharmacies := &mockPharmacyRepo{pharmacies: map[uuid.UUID]*pharmacy.Pharmacy{pharm.ID: pharm}}
	ctx := auth.ContextWithUser(context.Background(), ownerID.String(), auth.RolePharmacyAdmin)
	return NewService(reports, pharmacies), reports, pharm.ID, ctx
}

func TestDefinitions_CoverAllMeasures(t *testing.T) {
	svc, _, _, _ := newFixture()

	defs := svc.Definitions()
	want := map[string]bool{
		MeasureRevenueByDay: true, MeasureTopSelling: true, MeasureInventoryValue: true,
		MeasureLowStockCount: true, MeasureStatusCounts: true,
	}
	if len(defs) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(defs))
	}
	for _, d := range defs {
		if !want[d.ID] {
			t.Errorf("unexpected measure %s", d.ID)
		}
	}
}

func TestEvaluate_DispatchesToRepo(t *testing.T) {
	svc, reports, pharmID, ctx := newFixture()

	for _, measure := range []string{MeasureRevenueByDay, MeasureTopSelling, MeasureInventoryValue, MeasureLowStockCount} {
		result, err := svc.Evaluate(ctx, measure, pharmID, nil, nil)
		if err != nil {
			t.Fatalf("Evaluate(%s) error: %v", measure, err)
		}
		if reports.lastMeasure != measure {
			t.Errorf("expected repo call for %s, got %s", measure, reports.lastMeasure)
		}
		if result.Measure != measure {
			t.Errorf("result should echo the measure id, got %s", result.Measure)
		}
	}
}

func TestEvaluate_UnknownMeasure(t *testing.T) {
	svc, _, pharmID, ctx := newFixture()

	if _, err := svc.Evaluate(ctx, "profit_margin", pharmID, nil, nil); err == nil {
		t.Error("expected unknown measure to be rejected")
	}
}

func TestEvaluate_NotOwner(t *testing.T) {
	svc, _, pharmID, _ := newFixture()
	stranger := auth.ContextWithUser(context.Background(), uuid.NewString(), auth.RolePharmacyAdmin)

	if _, err := svc.Evaluate(stranger, MeasureInventoryValue, pharmID, nil, nil); !errors.Is(err, pharmacy.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func strPtr(s string) *string { return &s }

func testSale(name string, qty int, unit float64) *sales.Sale {
	return &sales.Sale{
		ID:           uuid.New(),
		MedicineName: name,
		Quantity:     qty,
		UnitPrice:    unit,
		TotalAmount:  float64(qty) * unit,
		CustomerName: strPtr("Jane Doe"),
		SoldAt:       time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestWriteSalesCSV(t *testing.T) {
	var buf bytes.Buffer
	items := []*sales.Sale{
		testSale("Amoxicillin 500mg", 2, 10),
		testSale("Ibuprofen 200mg", 1, 4.5),
	}
	if err := WriteSalesCSV(&buf, items); err != nil {
		t.Fatalf("WriteSalesCSV() error: %v", err)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 2 rows + totals, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "sale_id,sold_at,medicine") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Amoxicillin 500mg,2,10.00,20.00,Jane Doe") {
		t.Errorf("unexpected sale row: %s", lines[1])
	}
	if !strings.Contains(lines[3], "TOTAL,24.50") {
		t.Errorf("expected totals row with 24.50, got: %s", lines[3])
	}
}

func TestWriteInvoiceCSV(t *testing.T) {
	var buf bytes.Buffer
	sale := testSale("Amoxicillin 500mg", 3, 10)
	if err := WriteInvoiceCSV(&buf, sale); err != nil {
		t.Fatalf("WriteInvoiceCSV() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "invoice,"+sale.ID.String()) {
		t.Error("invoice header missing sale id")
	}
	if !strings.Contains(out, "Amoxicillin 500mg,3,10.00,30.00") {
		t.Errorf("line item missing, got:\n%s", out)
	}
	if !strings.Contains(out, "TOTAL,,,30.00") {
		t.Errorf("total row missing, got:\n%s", out)
	}
}
