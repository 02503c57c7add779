package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Pharmacy maps to the pharmacies table. A pharmacy enters the registry as
// pending and only shows up in the public locator once a super admin
// approves it.
type Pharmacy struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// StaffMember maps to the pharmacy_staff table: the roster a pharmacy
// admin manages for their own pharmacy.
type StaffMember struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PharmacyID uuid.UUID `db:"pharmacy_id" json:"pharmacy_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Position   string    `db:"position" json:"position"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StatusUpdateRequest is the payload for the approval endpoint.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
