package pharmacy

import (
	"context"
	"fmt"

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

// =========== Pharmacy Repository ===========

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyRepoPG(pool *pgxpool.Pool) PharmacyRepository {
	return &pharmacyRepoPG{pool: pool}
}

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pharmacyCols = `id, name, address, latitude, longitude, phone, email, owner_id, status, created_at, updated_at`

func (r *pharmacyRepoPG) scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
		&p.Phone, &p.Email, &p.OwnerID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *pharmacyRepoPG) Create(ctx context.Context, p *Pharmacy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacies (id, name, address, latitude, longitude, phone, email, owner_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Address, p.Latitude, p.Longitude, p.Phone, p.Email, p.OwnerID, p.Status)
	return err
}

func (r *pharmacyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return r.scanPharmacy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacies WHERE id = $1`, id))
}

func (r *pharmacyRepoPG) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Pharmacy, error) {
	return r.scanPharmacy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacies WHERE owner_id = $1`, ownerID))
}

func (r *pharmacyRepoPG) Update(ctx context.Context, p *Pharmacy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacies SET name=$2, address=$3, latitude=$4, longitude=$5,
			phone=$6, email=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Address, p.Latitude, p.Longitude, p.Phone, p.Email)
	return err
}

func (r *pharmacyRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE pharmacies SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pharmacyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacies WHERE id = $1`, id)
	return err
}

func (r *pharmacyRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Pharmacy, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacies`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM pharmacies%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		pharmacyCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Pharmacy
	for rows.Next() {
		p, err := r.scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Staff Repository ===========

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, pharmacy_id, full_name, position, email, phone, created_at, updated_at`

func (r *staffRepoPG) scanStaff(row pgx.Row) (*StaffMember, error) {
	var s StaffMember
	err := row.Scan(&s.ID, &s.PharmacyID, &s.FullName, &s.Position,
		&s.Email, &s.Phone, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *staffRepoPG) Create(ctx context.Context, s *StaffMember) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_staff (id, pharmacy_id, full_name, position, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.PharmacyID, s.FullName, s.Position, s.Email, s.Phone)
	return err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StaffMember, error) {
	return r.scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM pharmacy_staff WHERE id = $1`, id))
}

func (r *staffRepoPG) Update(ctx context.Context, s *StaffMember) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_staff SET full_name=$2, position=$3, email=$4, phone=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.FullName, s.Position, s.Email, s.Phone)
	return err
}

func (r *staffRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy_staff WHERE id = $1`, id)
	return err
}

func (r *staffRepoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*StaffMember, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+staffCols+` FROM pharmacy_staff
		WHERE pharmacy_id = $1
		ORDER BY full_name`, pharmacyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*StaffMember
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
