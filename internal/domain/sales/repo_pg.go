package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type saleRepoPG struct{ pool *pgxpool.Pool }

func NewSaleRepoPG(pool *pgxpool.Pool) SaleRepository {
	return &saleRepoPG{pool: pool}
}

func (r *saleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// medicine_name is joined in so listings and exports don't need a
// second round trip per row.
const saleCols = `s.id, s.pharmacy_id, s.medicine_id, COALESCE(m.name, ''), s.quantity,
	s.unit_price, s.total_amount, s.customer_name, s.customer_phone, s.sold_at, s.created_at, s.updated_at`

func (r *saleRepoPG) scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.PharmacyID, &s.MedicineID, &s.MedicineName, &s.Quantity,
		&s.UnitPrice, &s.TotalAmount, &s.CustomerName, &s.CustomerPhone, &s.SoldAt, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *saleRepoPG) Create(ctx context.Context, s *Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SoldAt.IsZero() {
		s.SoldAt = time.Now()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sales (id, pharmacy_id, medicine_id, quantity, unit_price, total_amount, customer_name, customer_phone, sold_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.PharmacyID, s.MedicineID, s.Quantity, s.UnitPrice, s.TotalAmount, s.CustomerName, s.CustomerPhone, s.SoldAt)
	return err
}

func (r *saleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return r.scanSale(r.conn(ctx).QueryRow(ctx, `
		SELECT `+saleCols+` FROM sales s
		LEFT JOIN medicines m ON m.id = s.medicine_id
		WHERE s.id = $1`, id))
}

func (r *saleRepoPG) Update(ctx context.Context, s *Sale) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE sales SET medicine_id=$2, quantity=$3, unit_price=$4, total_amount=$5,
			customer_name=$6, customer_phone=$7, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.MedicineID, s.Quantity, s.UnitPrice, s.TotalAmount, s.CustomerName, s.CustomerPhone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *saleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return err
}

func (r *saleRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, from, to *time.Time, limit, offset int) ([]*Sale, int, error) {
	where := ` WHERE s.pharmacy_id = $1`
	args := []interface{}{pharmacyID}
	if from != nil {
		args = append(args, *from)
		where += fmt.Sprintf(` AND s.sold_at >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		where += fmt.Sprintf(` AND s.sold_at <= $%d`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM sales s`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM sales s
		LEFT JOIN medicines m ON m.id = s.medicine_id
		%s ORDER BY s.sold_at DESC LIMIT $%d OFFSET $%d`,
		saleCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Sale
	for rows.Next() {
		s, err := r.scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *saleRepoPG) SummaryByPharmacy(ctx context.Context, pharmacyID uuid.UUID) (*Summary, error) {
	var sum Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM sales WHERE pharmacy_id = $1`, pharmacyID).Scan(&sum.TotalSales, &sum.TotalRevenue)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}
