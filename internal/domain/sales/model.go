package sales

import (
	"time"

	"github.com/google/uuid"
)

// Sale records one over-the-counter transaction. TotalAmount is always
// Quantity * UnitPrice; the service recomputes it on every write.
type Sale struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PharmacyID    uuid.UUID `db:"pharmacy_id" json:"pharmacy_id"`
	MedicineID    uuid.UUID `db:"medicine_id" json:"medicine_id"`
	MedicineName  string    `db:"medicine_name" json:"medicine_name,omitempty"`
	Quantity      int       `db:"quantity" json:"quantity"`
	UnitPrice     float64   `db:"unit_price" json:"unit_price"`
	TotalAmount   float64   `db:"total_amount" json:"total_amount"`
	CustomerName  *string   `db:"customer_name" json:"customer_name,omitempty"`
	CustomerPhone *string   `db:"customer_phone" json:"customer_phone,omitempty"`
	SoldAt        time.Time `db:"sold_at" json:"sold_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// RecordRequest is the payload for recording a sale. Unit price comes
// from the medicine catalog, not the client.
type RecordRequest struct {
	MedicineID    uuid.UUID `json:"medicine_id"`
	Quantity      int       `json:"quantity"`
	CustomerName  *string   `json:"customer_name,omitempty"`
	CustomerPhone *string   `json:"customer_phone,omitempty"`
}

// EditRequest adjusts an existing sale. A non-nil MedicineID moves the
// sale to another medicine; stock on both sides is corrected.
type EditRequest struct {
	MedicineID    *uuid.UUID `json:"medicine_id,omitempty"`
	Quantity      int        `json:"quantity"`
	CustomerName  *string    `json:"customer_name,omitempty"`
	CustomerPhone *string    `json:"customer_phone,omitempty"`
}

// Summary aggregates a pharmacy's sales for the dashboard header.
type Summary struct {
	TotalSales   int     `db:"total_sales" json:"total_sales"`
	TotalRevenue float64 `db:"total_revenue" json:"total_revenue"`
}
