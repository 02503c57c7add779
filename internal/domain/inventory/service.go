package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/platform/auth"
)

type Service struct {
	medicines  MedicineRepository
	pharmacies pharmacy.PharmacyRepository
}

func NewService(medicines MedicineRepository, pharmacies pharmacy.PharmacyRepository) *Service {
	return &Service{medicines: medicines, pharmacies: pharmacies}
}

// Add creates a medicine in the caller's pharmacy catalog.
func (s *Service) Add(ctx context.Context, m *Medicine) error {
	if err := validateMedicine(m); err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, m.PharmacyID); err != nil {
		return err
	}
	return s.medicines.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, m.PharmacyID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, m *Medicine) (*Medicine, error) {
	existing, err := s.medicines.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, existing.PharmacyID); err != nil {
		return nil, err
	}
	m.PharmacyID = existing.PharmacyID
	if err := validateMedicine(m); err != nil {
		return nil, err
	}
	if err := s.medicines.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.medicines.GetByID(ctx, m.ID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, existing.PharmacyID); err != nil {
		return err
	}
	return s.medicines.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, pharmacyID uuid.UUID, term string, limit, offset int) ([]*Medicine, int, error) {
	if err := s.requireOwnership(ctx, pharmacyID); err != nil {
		return nil, 0, err
	}
	return s.medicines.ListByPharmacy(ctx, pharmacyID, term, limit, offset)
}

// LowStock lists medicines under the restock threshold for the
// dashboard's low stock panel.
func (s *Service) LowStock(ctx context.Context, pharmacyID uuid.UUID) ([]*Medicine, error) {
	if err := s.requireOwnership(ctx, pharmacyID); err != nil {
		return nil, err
	}
	return s.medicines.ListLowStock(ctx, pharmacyID, LowStockThreshold)
}

// Restock adds quantity to a medicine's stock and returns the updated
// row. Quantity must be positive; sales are the only path that
// decrements stock.
func (s *Service) Restock(ctx context.Context, id uuid.UUID, quantity int) (*Medicine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	existing, err := s.medicines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, existing.PharmacyID); err != nil {
		return nil, err
	}
	if err := s.medicines.AdjustStock(ctx, id, quantity); err != nil {
		return nil, err
	}
	return s.medicines.GetByID(ctx, id)
}

func validateMedicine(m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	if m.Stock < 0 {
		return fmt.Errorf("stock_quantity cannot be negative")
	}
	return nil
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
