package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/db"
)

// ErrInsufficientStock is returned when a decrement would take stock
// below zero. The check happens inside the UPDATE so concurrent sales
// cannot oversell.
var ErrInsufficientStock = errors.New("insufficient stock")

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository {
	return &medicineRepoPG{pool: pool}
}

func (r *medicineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medicineCols = `id, pharmacy_id, name, description, category, price, stock_quantity, expiry_date, created_at, updated_at`

func (r *medicineRepoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.PharmacyID, &m.Name, &m.Description, &m.Category,
		&m.Price, &m.Stock, &m.ExpiryDate, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicines (id, pharmacy_id, name, description, category, price, stock_quantity, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.PharmacyID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.ExpiryDate)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicines WHERE id = $1`, id))
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET name=$2, description=$3, category=$4, price=$5,
			stock_quantity=$6, expiry_date=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Category, m.Price, m.Stock, m.ExpiryDate)
	return err
}

func (r *medicineRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	return err
}

func (r *medicineRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, term string, limit, offset int) ([]*Medicine, int, error) {
	where := ` WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}
	if term != "" {
		where += ` AND (name ILIKE $2 OR category ILIKE $2)`
		args = append(args, "%"+term+"%")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicines`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM medicines%s ORDER BY name LIMIT $%d OFFSET $%d`,
		medicineCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *medicineRepoPG) ListLowStock(ctx context.Context, pharmacyID uuid.UUID, threshold int) ([]*Medicine, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medicineCols+` FROM medicines
		WHERE pharmacy_id = $1 AND stock_quantity < $2
		ORDER BY stock_quantity, name`, pharmacyID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *medicineRepoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No rows: either the medicine is gone or the decrement would
	// have gone negative. Tell those apart for the caller.
	var exists bool
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM medicines WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrInsufficientStock
}
