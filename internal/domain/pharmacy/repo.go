package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type PharmacyRepository interface {
	Create(ctx context.Context, p *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Pharmacy, error)
	Update(ctx context.Context, p *Pharmacy) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit, offset int) ([]*Pharmacy, int, error)
}

type StaffRepository interface {
	Create(ctx context.Context, s *StaffMember) error
	GetByID(ctx context.Context, id uuid.UUID) (*StaffMember, error)
	Update(ctx context.Context, s *StaffMember) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*StaffMember, error)
}
