package pg

import (
	"context"
	"database/sql"
	"time"

	"suvidha.org/internal/audit"
	"suvidha.org/internal/ids"
)

var _ audit.Store = (*AuditStore)(nil)

// AuditStore appends and queries immutable audit entries over PostgreSQL.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore wraps a database handle.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Append(ctx context.Context, entry *audit.Entry) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into audit_logs(id, action, user_email, user_role, ip, detail, created_at)
		values($1,$2,$3,$4,$5,$6,$7)`,
		entry.ID, entry.Action, entry.User, entry.Role, entry.IP, entry.Detail, entry.CreatedAt,
	)
	return err
}

// List returns one page of matches, newest first, plus the total count of
// matches across all pages. Filters are case-insensitive substrings.
func (s *AuditStore) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, int, error) {
	filter = filter.Normalize()
	action := "%" + filter.Action + "%"
	user := "%" + filter.User + "%"

	var total int
	err := s.db.QueryRowContext(ctx, `
		select count(*) from audit_logs
		where action ilike $1 and user_email ilike $2`, action, user).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select id, action, user_email, user_role, ip, detail, created_at
		from audit_logs
		where action ilike $1 and user_email ilike $2
		order by created_at desc, id desc
		limit $3 offset $4`,
		action, user, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.User, &e.Role, &e.IP, &e.Detail, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
