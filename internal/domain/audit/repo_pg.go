package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medibot/medibot/internal/platform/middleware"
)

type entryRepoPG struct{ pool *pgxpool.Pool }

func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository {
	return &entryRepoPG{pool: pool}
}

func (r *entryRepoPG) Insert(ctx context.Context, e middleware.AuditEntry) error {
	var userID *string
	if e.UserID != "" {
		userID = &e.UserID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (id, user_id, user_role, resource, action, method, path,
			status_code, ip_address, user_agent, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.New(), userID, e.UserRole, e.Resource, e.Action, e.Method, e.Path,
		e.StatusCode, e.IPAddress, e.UserAgent, e.RequestID, e.Timestamp)
	return err
}

func (r *entryRepoPG) List(ctx context.Context, f Filters, limit, offset int) ([]*Entry, int, error) {
	where := ""
	var args []interface{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, len(args))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.Resource != "" {
		add("resource = $%d", f.Resource)
	}
	if f.Action != "" {
		add("action = $%d", f.Action)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, user_role, resource, action, method, path,
			status_code, ip_address, user_agent, request_id, occurred_at
		FROM audit_log%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserRole, &e.Resource, &e.Action, &e.Method,
			&e.Path, &e.StatusCode, &e.IPAddress, &e.UserAgent, &e.RequestID, &e.OccurredAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}
