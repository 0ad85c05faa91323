package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"suvidha.org/internal/auth"
)

const pgUniqueViolation = "23505"

var _ auth.UserStore = (*UserStore)(nil)

// UserStore implements auth.UserStore over PostgreSQL. Lockout transitions
// are single conditional UPDATE statements, so concurrent login attempts
// against the same account serialize at the row level and never lose
// counter updates.
type UserStore struct {
	db *sql.DB
}

// NewUserStore wraps a database handle.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, email, password_hash, role, department_id, active,
	two_factor_enabled, failed_attempts, locked_until, last_login, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*auth.Account, error) {
	var (
		a          auth.Account
		department sql.NullString
		locked     sql.NullTime
		lastLogin  sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &department,
		&a.Active, &a.TwoFactorEnabled, &a.FailedAttempts, &locked, &lastLogin,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	if department.Valid {
		a.DepartmentID = department.String
	}
	if locked.Valid {
		t := locked.Time
		a.LockedUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *UserStore) Create(ctx context.Context, a *auth.Account) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, name, email, password_hash, role, department_id, active,
			two_factor_enabled, two_factor_secret, failed_attempts, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.Name, auth.NormalizeEmail(a.Email), a.PasswordHash, a.Role,
		nullString(a.DepartmentID), a.Active, a.TwoFactorEnabled,
		nullString(a.TwoFactorSecret), a.FailedAttempts, a.CreatedAt, a.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return auth.ErrConflict
	}
	return err
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanAccount(row)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, auth.NormalizeEmail(email))
	return scanAccount(row)
}

func (s *UserStore) List(ctx context.Context) ([]*auth.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, id string, upd auth.AccountUpdate) (*auth.Account, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Role != nil {
		add("role", *upd.Role)
	}
	if upd.DepartmentID != nil {
		add("department_id", nullString(*upd.DepartmentID))
	}
	if upd.Active != nil {
		add("active", *upd.Active)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	row := s.db.QueryRowContext(ctx, `
		update users set `+strings.Join(sets, ", ")+`
		where id = $1
		returning `+userColumns, args...)
	return scanAccount(row)
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// RecordFailure applies one failed-attempt transition. The where clause
// excludes rows whose lock window is still open, so a concurrent request
// that already locked the account turns this into a no-op.
func (s *UserStore) RecordFailure(ctx context.Context, id string, threshold int, lockFor time.Duration, now time.Time) (*auth.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		update users set
			failed_attempts = case when failed_attempts + 1 >= $2 then 0 else failed_attempts + 1 end,
			locked_until    = case when failed_attempts + 1 >= $2 then $3 else locked_until end,
			updated_at      = $4
		where id = $1 and (locked_until is null or locked_until <= $4)
		returning `+userColumns, id, threshold, now.Add(lockFor), now)
	account, err := scanAccount(row)
	if errors.Is(err, auth.ErrNotFound) {
		// Either the account is gone or another request locked it first;
		// re-read to distinguish.
		return s.FindByID(ctx, id)
	}
	return account, err
}

// RecordSuccess resets the counter, clears any lock and stamps last_login.
func (s *UserStore) RecordSuccess(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set failed_attempts = 0, locked_until = null,
			last_login = $2, updated_at = $2
		where id = $1`, id, now)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
