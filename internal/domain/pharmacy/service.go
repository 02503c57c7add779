package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibot/medibot/internal/platform/auth"
)

var ErrNotOwner = errors.New("pharmacy does not belong to this account")

var validStatuses = map[string]bool{
	StatusPending: true, StatusApproved: true, StatusRejected: true,
}

var validPositions = map[string]bool{
	"pharmacist": true, "cashier": true, "manager": true, "technician": true,
}

type Service struct {
	pharmacies PharmacyRepository
	staff      StaffRepository
}

func NewService(pharmacies PharmacyRepository, staff StaffRepository) *Service {
	return &Service{pharmacies: pharmacies, staff: staff}
}

// Register creates a pharmacy in pending status, owned by the signed-in
// pharmacy admin. One pharmacy per owner.
func (s *Service) Register(ctx context.Context, p *Pharmacy) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Address == "" {
		return fmt.Errorf("address is required")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude out of range: %v", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude out of range: %v", p.Longitude)
	}

	ownerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return fmt.Errorf("no signed-in user")
	}
	if existing, err := s.pharmacies.GetByOwner(ctx, ownerID); err == nil && existing != nil {
		return fmt.Errorf("account already owns pharmacy %q", existing.Name)
	}

	p.OwnerID = ownerID
	p.Status = StatusPending
	return s.pharmacies.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return s.pharmacies.GetByID(ctx, id)
}

// Mine returns the pharmacy owned by the signed-in pharmacy admin.
func (s *Service) Mine(ctx context.Context) (*Pharmacy, error) {
	ownerID, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("no signed-in user")
	}
	return s.pharmacies.GetByOwner(ctx, ownerID)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Pharmacy, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.pharmacies.List(ctx, status, limit, offset)
}

// Update edits pharmacy details. Pharmacy admins may only edit their own
// pharmacy; super admins may edit any.
func (s *Service) Update(ctx context.Context, p *Pharmacy) (*Pharmacy, error) {
	existing, err := s.pharmacies.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, existing); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.pharmacies.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.pharmacies.GetByID(ctx, p.ID)
}

// SetStatus transitions a pharmacy's registry status. Super admin only;
// the route guard enforces that, the service validates the target status.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Pharmacy, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	if err := s.pharmacies.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.pharmacies.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.pharmacies.Delete(ctx, id)
}

// -- Staff roster --

func (s *Service) AddStaff(ctx context.Context, m *StaffMember) error {
	if m.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if m.Position == "" {
		m.Position = "pharmacist"
	}
	if !validPositions[m.Position] {
		return fmt.Errorf("invalid position: %s", m.Position)
	}

	pharm, err := s.pharmacies.GetByID(ctx, m.PharmacyID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, pharm); err != nil {
		return err
	}
	return s.staff.Create(ctx, m)
}

func (s *Service) ListStaff(ctx context.Context, pharmacyID uuid.UUID) ([]*StaffMember, error) {
	pharm, err := s.pharmacies.GetByID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, pharm); err != nil {
		return nil, err
	}
	return s.staff.ListByPharmacy(ctx, pharmacyID)
}

func (s *Service) UpdateStaff(ctx context.Context, m *StaffMember) (*StaffMember, error) {
	existing, err := s.staff.GetByID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	pharm, err := s.pharmacies.GetByID(ctx, existing.PharmacyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, pharm); err != nil {
		return nil, err
	}
	if m.Position != "" && !validPositions[m.Position] {
		return nil, fmt.Errorf("invalid position: %s", m.Position)
	}
	m.PharmacyID = existing.PharmacyID
	if err := s.staff.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.staff.GetByID(ctx, m.ID)
}

func (s *Service) RemoveStaff(ctx context.Context, id uuid.UUID) error {
	existing, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	pharm, err := s.pharmacies.GetByID(ctx, existing.PharmacyID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, pharm); err != nil {
		return err
	}
	return s.staff.Delete(ctx, id)
}

// requireOwnership allows the pharmacy's owner and super admins through.
func (s *Service) requireOwnership(ctx context.Context, p *Pharmacy) error {
	if auth.RoleFromContext(ctx) == auth.RoleSuperAdmin {
		return nil
	}
	if auth.UserIDFromContext(ctx) != p.OwnerID.String() {
		return ErrNotOwner
	}
	return nil
}
