package locator

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stockRepoPG struct{ pool *pgxpool.Pool }

func NewStockRepoPG(pool *pgxpool.Pool) StockRepository {
	return &stockRepoPG{pool: pool}
}

func (r *stockRepoPG) ApprovedPharmacies(ctx context.Context) ([]Place, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, latitude, longitude, phone
		FROM pharmacies WHERE status = 'approved' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude, &p.Phone); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (r *stockRepoPG) SearchStock(ctx context.Context, term string, minStock int) ([]*Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.address, p.latitude, p.longitude, p.phone,
			m.id, m.name, m.price, m.stock_quantity
		FROM pharmacies p
		JOIN medicines m ON m.pharmacy_id = p.id
		WHERE p.status = 'approved'
			AND m.name ILIKE '%' || $1 || '%'
			AND m.stock_quantity >= $2
		ORDER BY p.name, m.name`, term, minStock)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPharmacy := make(map[uuid.UUID]*Candidate)
	var ordered []*Candidate
	for rows.Next() {
		var place Place
		var med MatchedMedicine
		if err := rows.Scan(&place.ID, &place.Name, &place.Address, &place.Latitude,
			&place.Longitude, &place.Phone, &med.ID, &med.Name, &med.Price, &med.Stock); err != nil {
			return nil, err
		}
		c, ok := byPharmacy[place.ID]
		if !ok {
			c = &Candidate{Place: place}
			byPharmacy[place.ID] = c
			ordered = append(ordered, c)
		}
		c.Medicines = append(c.Medicines, med)
	}
	return ordered, rows.Err()
}

func (r *stockRepoPG) SuggestNames(ctx context.Context, term string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT m.name
		FROM medicines m
		JOIN pharmacies p ON p.id = m.pharmacy_id
		WHERE p.status = 'approved'
			AND m.stock_quantity > 0
			AND m.name ILIKE '%' || $1 || '%'
		ORDER BY m.name LIMIT $2`, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
