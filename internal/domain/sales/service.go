package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/domain/inventory"
	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/platform/auth"
	"github.com/medibot/medibot/internal/platform/db"
)

// Service keeps the sales ledger and the stock counts consistent:
// every mutation runs the ledger write and the stock adjustment in
// one database transaction.
type Service struct {
	sales      SaleRepository
	medicines  inventory.MedicineRepository
	pharmacies pharmacy.PharmacyRepository
	runTx      func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewService(pool *pgxpool.Pool, sales SaleRepository, medicines inventory.MedicineRepository, pharmacies pharmacy.PharmacyRepository) *Service {
	s := &Service{sales: sales, medicines: medicines, pharmacies: pharmacies}
	if pool != nil {
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	} else {
		// Tests run with map-backed repos and no pool.
		s.runTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

// Record inserts a sale and decrements the medicine's stock. The unit
// price is taken from the catalog at the time of sale, so later price
// edits don't rewrite history.
func (s *Service) Record(ctx context.Context, pharmacyID uuid.UUID, req *RecordRequest) (*Sale, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}
	if err := s.requireOwnership(ctx, pharmacyID); err != nil {
		return nil, err
	}

	var sale *Sale
	err := s.runTx(ctx, func(ctx context.Context) error {
		med, err := s.medicines.GetByID(ctx, req.MedicineID)
		if err != nil {
			return fmt.Errorf("medicine not found: %w", err)
		}
		if med.PharmacyID != pharmacyID {
			return fmt.Errorf("medicine does not belong to this pharmacy")
		}
		if err := s.medicines.AdjustStock(ctx, med.ID, -req.Quantity); err != nil {
			return err
		}
		sale = &Sale{
			PharmacyID:    pharmacyID,
			MedicineID:    med.ID,
			MedicineName:  med.Name,
			Quantity:      req.Quantity,
			UnitPrice:     med.Price,
			TotalAmount:   float64(req.Quantity) * med.Price,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			SoldAt:        time.Now(),
		}
		return s.sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Edit changes a sale's quantity, and optionally the medicine it was
// sold from, correcting stock on both sides in one transaction.
// Growing a sale can still fail with ErrInsufficientStock.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req *EditRequest) (*Sale, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	var updated *Sale
	err := s.runTx(ctx, func(ctx context.Context) error {
		existing, err := s.sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOwnership(ctx, existing.PharmacyID); err != nil {
			return err
		}

		switch {
		case req.MedicineID != nil && *req.MedicineID != existing.MedicineID:
			// Moving to another medicine: return the old units, then
			// draw the new quantity from the new medicine at its
			// current catalog price.
			med, err := s.medicines.GetByID(ctx, *req.MedicineID)
			if err != nil {
				return fmt.Errorf("medicine not found: %w", err)
			}
			if med.PharmacyID != existing.PharmacyID {
				return fmt.Errorf("medicine does not belong to this pharmacy")
			}
			if err := s.medicines.AdjustStock(ctx, existing.MedicineID, existing.Quantity); err != nil {
				return err
			}
			if err := s.medicines.AdjustStock(ctx, med.ID, -req.Quantity); err != nil {
				return err
			}
			existing.MedicineID = med.ID
			existing.MedicineName = med.Name
			existing.UnitPrice = med.Price
		default:
			if delta := existing.Quantity - req.Quantity; delta != 0 {
				if err := s.medicines.AdjustStock(ctx, existing.MedicineID, delta); err != nil {
					return err
				}
			}
		}

		existing.Quantity = req.Quantity
		existing.TotalAmount = float64(req.Quantity) * existing.UnitPrice
		if req.CustomerName != nil {
			existing.CustomerName = req.CustomerName
		}
		if req.CustomerPhone != nil {
			existing.CustomerPhone = req.CustomerPhone
		}
		if err := s.sales.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes a sale and returns its quantity to stock.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		existing, err := s.sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOwnership(ctx, existing.PharmacyID); err != nil {
			return err
		}
		if err := s.medicines.AdjustStock(ctx, existing.MedicineID, existing.Quantity); err != nil {
			return err
		}
		return s.sales.Delete(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, sale.PharmacyID); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, pharmacyID uuid.UUID, from, to *time.Time, limit, offset int) ([]*Sale, int, error) {
	if err := s.requireOwnership(ctx, pharmacyID); err != nil {
		return nil, 0, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, 0, fmt.Errorf("date range end precedes start")
	}
	return s.sales.ListByPharmacy(ctx, pharmacyID, from, to, limit, offset)
}

func (s *Service) Summary(ctx context.Context, pharmacyID uuid.UUID) (*Summary, error) {
	if err := s.requireOwnership(ctx, pharmacyID); err != nil {
		return nil, err
	}
	return s.sales.SummaryByPharmacy(ctx, pharmacyID)
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
