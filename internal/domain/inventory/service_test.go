package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/platform/auth"
)

// -- Mock Repositories --

type mockMedicineRepo struct {
	medicines map[uuid.UUID]*Medicine
}

func newMockMedicineRepo() *mockMedicineRepo {
	return &mockMedicineRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (m *mockMedicineRepo) Create(_ context.Context, med *Medicine) error {
	if med.ID == uuid.Nil {
		med.ID = uuid.New()
	}
	med.CreatedAt = time.Now()
	med.UpdatedAt = time.Now()
	m.medicines[med.ID] = med
	return nil
}

func (m *mockMedicineRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return med, nil
}

func (m *mockMedicineRepo) Update(_ context.Context, med *Medicine) error {
	if _, ok := m.medicines[med.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.medicines[med.ID] = med
	return nil
}

func (m *mockMedicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.medicines, id)
	return nil
}

func (m *mockMedicineRepo) ListByPharmacy(_ context.Context, pharmacyID uuid.UUID, term string, limit, offset int) ([]*Medicine, int, error) {
	var result []*Medicine
	for _, med := range m.medicines {
		if med.PharmacyID != pharmacyID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(med.Name), strings.ToLower(term)) {
			continue
		}
		result = append(result, med)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockMedicineRepo) ListLowStock(_ context.Context, pharmacyID uuid.UUID, threshold int) ([]*Medicine, error) {
	var result []*Medicine
	for _, med := range m.medicines {
		if med.PharmacyID == pharmacyID && med.Stock < threshold {
			result = append(result, med)
		}
	}
	return result, nil
}

func (m *mockMedicineRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	med, ok := m.medicines[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if med.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	med.Stock += delta
	return nil
}

type mockPharmacyRepo struct {
	pharmacies map[uuid.UUID]*pharmacy.Pharmacy
}

func newMockPharmacyRepo() *mockPharmacyRepo {
	return &mockPharmacyRepo{pharmacies: make(map[uuid.UUID]*pharmacy.Pharmacy)}
}

func (m *mockPharmacyRepo) Create(_ context.Context, p *pharmacy.Pharmacy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.pharmacies[p.ID] = p
	return nil
}

func (m *mockPharmacyRepo) GetByID(_ context.Context, id uuid.UUID) (*pharmacy.Pharmacy, error) {
	p, ok := m.pharmacies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPharmacyRepo) GetByOwner(_ context.Context, ownerID uuid.UUID) (*pharmacy.Pharmacy, error) {
	for _, p := range m.pharmacies {
		if p.OwnerID == ownerID {
			return p, nil
		}
	}
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

// -- Test fixtures --

type fixture struct {
	svc      *Service
	ownerID  uuid.UUID
	pharmacy *pharmacy.Pharmacy
	ctx      context.Context
}

func newFixture() *fixture {
	pharmacies := newMockPharmacyRepo()
	ownerID := uuid.New()
	pharm := &pharmacy.Pharmacy{
		ID:      uuid.New(),
		Name:    "City Pharmacy",
		OwnerID: ownerID,
		Status:  pharmacy.StatusApproved,
	}
	pharmacies.pharmacies[pharm.ID] = pharm

	return &fixture{
		svc:      NewService(newMockMedicineRepo(), pharmacies),
		ownerID:  ownerID,
		pharmacy: pharm,
		ctx:      auth.ContextWithUser(context.Background(), ownerID.String(), auth.RolePharmacyAdmin),
	}
}

// -- Tests --

func TestAddMedicine(t *testing.T) {
	f := newFixture()

	m := &Medicine{PharmacyID: f.pharmacy.ID, Name: "Amoxicillin 500mg", Price: 12.50, Stock: 40}
	if err := f.svc.Add(f.ctx, m); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("expected an ID to be assigned")
	}
}

func TestAddMedicine_Validation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name string
		m    Medicine
	}{
		{"missing name", Medicine{PharmacyID: f.pharmacy.ID, Price: 1}},
		{"negative price", Medicine{PharmacyID: f.pharmacy.ID, Name: "X", Price: -1}},
		{"negative stock", Medicine{PharmacyID: f.pharmacy.ID, Name: "X", Price: 1, Stock: -5}},
	}
	for _, tc := range cases {
		if err := f.svc.Add(f.ctx, &tc.m); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestAddMedicine_OtherOwnersPharmacy(t *testing.T) {
	f := newFixture()
	stranger := auth.ContextWithUser(context.Background(), uuid.NewString(), auth.RolePharmacyAdmin)

	m := &Medicine{PharmacyID: f.pharmacy.ID, Name: "Ibuprofen", Price: 3}
	if err := f.svc.Add(stranger, m); !errors.Is(err, pharmacy.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestListMedicines_SearchTerm(t *testing.T) {
	f := newFixture()
	for _, name := range []string{"Paracetamol 500mg", "Paracetamol Syrup", "Ibuprofen"} {
		m := &Medicine{PharmacyID: f.pharmacy.ID, Name: name, Price: 2, Stock: 10}
		if err := f.svc.Add(f.ctx, m); err != nil {
			t.Fatalf("Add(%s) error: %v", name, err)
		}
	}

	items, total, err := f.svc.List(f.ctx, f.pharmacy.ID, "paracetamol", 20, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 matches, got total=%d len=%d", total, len(items))
	}
}

func TestLowStock(t *testing.T) {
	f := newFixture()
	low := &Medicine{PharmacyID: f.pharmacy.ID, Name: "Insulin", Price: 50, Stock: 3}
	ok := &Medicine{PharmacyID: f.pharmacy.ID, Name: "Aspirin", Price: 1, Stock: 200}
	for _, m := range []*Medicine{low, ok} {
		if err := f.svc.Add(f.ctx, m); err != nil {
			t.Fatalf("Add() error: %v", err)
		}
	}

	items, err := f.svc.LowStock(f.ctx, f.pharmacy.ID)
	if err != nil {
		t.Fatalf("LowStock() error: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Insulin" {
		t.Errorf("expected only Insulin below threshold, got %v", items)
	}
}

func TestRestock(t *testing.T) {
	f := newFixture()
	m := &Medicine{PharmacyID: f.pharmacy.ID, Name: "Aspirin", Price: 1, Stock: 5}
	if err := f.svc.Add(f.ctx, m); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	updated, err := f.svc.Restock(f.ctx, m.ID, 20)
	if err != nil {
		t.Fatalf("Restock() error: %v", err)
	}
	if updated.Stock != 25 {
		t.Errorf("expected stock 25, got %d", updated.Stock)
	}

	if _, err := f.svc.Restock(f.ctx, m.ID, 0); err == nil {
		t.Error("expected error for non-positive quantity")
	}
}

func TestAdjustStock_NeverGoesNegative(t *testing.T) {
	repo := newMockMedicineRepo()
	m := &Medicine{Name: "Aspirin", Stock: 2}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := repo.AdjustStock(context.Background(), m.ID, -3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if m.Stock != 2 {
		t.Errorf("stock should be unchanged after refused decrement, got %d", m.Stock)
	}

	if err := repo.AdjustStock(context.Background(), m.ID, -2); err != nil {
		t.Fatalf("AdjustStock() error: %v", err)
	}
	if m.Stock != 0 {
		t.Errorf("expected stock 0, got %d", m.Stock)
	}
}

func TestUpdateMedicine_SuperAdminAllowed(t *testing.T) {
	f := newFixture()
	m := &Medicine{PharmacyID: f.pharmacy.ID, Name: "Aspirin", Price: 1, Stock: 5}
	if err := f.svc.Add(f.ctx, m); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	superCtx := auth.ContextWithUser(context.Background(), uuid.NewString(), auth.RoleSuperAdmin)
	m.Price = 2
	if _, err := f.svc.Update(superCtx, m); err != nil {
		t.Errorf("super admin update should succeed, got %v", err)
	}
}
