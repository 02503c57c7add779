package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Medicine maps to the medicines table: one stocked product at one
// pharmacy. Stock can never go below zero; decrements are applied
// conditionally in SQL and the table carries a CHECK constraint.
type Medicine struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PharmacyID  uuid.UUID  `db:"pharmacy_id" json:"pharmacy_id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Price       float64    `db:"price" json:"price"`
	Stock       int        `db:"stock_quantity" json:"stock_quantity"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// LowStockThreshold marks medicines that need restocking in the
// dashboard's low stock panel.
const LowStockThreshold = 10
