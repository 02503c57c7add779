package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) RevenueByDay(ctx context.Context, pharmacyID uuid.UUID, from, to *time.Time) ([]DailyRevenue, error) {
	where := ` WHERE pharmacy_id = $1`
	args := []interface{}{pharmacyID}
	if from != nil {
		args = append(args, *from)
		where += fmt.Sprintf(` AND sold_at >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		where += fmt.Sprintf(` AND sold_at <= $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', sold_at) AS day, COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales`+where+`
		GROUP BY day ORDER BY day`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Day, &d.Revenue, &d.Count); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *reportRepoPG) TopSellingMedicines(ctx context.Context, pharmacyID uuid.UUID, limit int) ([]MedicineSales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.medicine_id, COALESCE(m.name, ''), SUM(s.quantity), SUM(s.total_amount)
		FROM sales s
		LEFT JOIN medicines m ON m.id = s.medicine_id
		WHERE s.pharmacy_id = $1
		GROUP BY s.medicine_id, m.name
		ORDER BY SUM(s.quantity) DESC LIMIT $2`, pharmacyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MedicineSales
	for rows.Next() {
		var m MedicineSales
		if err := rows.Scan(&m.MedicineID, &m.Name, &m.UnitsSold, &m.Revenue); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *reportRepoPG) InventoryValue(ctx context.Context, pharmacyID uuid.UUID) (float64, error) {
	var value float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(price * stock_quantity), 0)
		FROM medicines WHERE pharmacy_id = $1`, pharmacyID).Scan(&value)
	return value, err
}

func (r *reportRepoPG) LowStockCount(ctx context.Context, pharmacyID uuid.UUID, threshold int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM medicines
		WHERE pharmacy_id = $1 AND stock_quantity < $2`, pharmacyID, threshold).Scan(&count)
	return count, err
}

func (r *reportRepoPG) PharmacyStatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM pharmacies GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StatusCount
	for rows.Next() {
		var s StatusCount
		if err := rows.Scan(&s.Status, &s.Count); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
