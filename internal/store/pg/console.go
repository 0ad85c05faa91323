package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"suvidha.org/internal/console"
)

var _ console.Store = (*ConsoleStore)(nil)

// ConsoleStore persists departments and the settings singleton.
type ConsoleStore struct {
	db *sql.DB
}

// NewConsoleStore wraps a database handle.
func NewConsoleStore(db *sql.DB) *ConsoleStore {
	return &ConsoleStore{db: db}
}

const departmentColumns = `id, name, icon, color, description, service_hours, enabled, created_at, updated_at`

func scanDepartment(row interface{ Scan(...any) error }) (*console.Department, error) {
	var d console.Department
	err := row.Scan(&d.ID, &d.Name, &d.Icon, &d.Color, &d.Description,
		&d.ServiceHours, &d.Enabled, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, console.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *ConsoleStore) CreateDepartment(ctx context.Context, d *console.Department) error {
	_, err := s.db.ExecContext(ctx, `
		insert into departments(id, name, icon, color, description, service_hours, enabled, created_at, updated_at)
		values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.Name, d.Icon, d.Color, d.Description, d.ServiceHours, d.Enabled, d.CreatedAt, d.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return console.ErrConflict
	}
	return err
}

func (s *ConsoleStore) GetDepartment(ctx context.Context, id string) (*console.Department, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+departmentColumns+` from departments where id=$1`, id)
	return scanDepartment(row)
}

func (s *ConsoleStore) ListDepartments(ctx context.Context) ([]*console.Department, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+departmentColumns+` from departments order by created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*console.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *ConsoleStore) UpdateDepartment(ctx context.Context, id string, upd console.DepartmentUpdate) (*console.Department, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Icon != nil {
		add("icon", *upd.Icon)
	}
	if upd.Color != nil {
		add("color", *upd.Color)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.ServiceHours != nil {
		add("service_hours", *upd.ServiceHours)
	}
	if upd.Enabled != nil {
		add("enabled", *upd.Enabled)
	}
	row := s.db.QueryRowContext(ctx, `
		update departments set `+strings.Join(sets, ", ")+`
		where id = $1
		returning `+departmentColumns, args...)
	return scanDepartment(row)
}

func (s *ConsoleStore) DeleteDepartment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from departments where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return console.ErrNotFound
	}
	return nil
}

func (s *ConsoleStore) GetSettings(ctx context.Context) (*console.Settings, error) {
	var st console.Settings
	var methods string
	err := s.db.QueryRowContext(ctx, `
		select session_timeout, default_language, audio_guidance, logging_level,
			ui_theme, printer_model, printer_baud_rate, payment_mode, txn_fee, enabled_methods
		from settings where id = 1`).Scan(
		&st.SessionTimeout, &st.DefaultLanguage, &st.AudioGuidance, &st.LoggingLevel,
		&st.UITheme, &st.PrinterModel, &st.PrinterBaudRate, &st.PaymentMode, &st.TxnFee, &methods)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, console.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if methods != "" {
		st.EnabledMethods = strings.Split(methods, ",")
	}
	return &st, nil
}

func (s *ConsoleStore) SaveSettings(ctx context.Context, st *console.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		insert into settings(id, session_timeout, default_language, audio_guidance, logging_level,
			ui_theme, printer_model, printer_baud_rate, payment_mode, txn_fee, enabled_methods, updated_at)
		values (1,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
		on conflict (id) do update set
			session_timeout = excluded.session_timeout,
			default_language = excluded.default_language,
			audio_guidance = excluded.audio_guidance,
			logging_level = excluded.logging_level,
			ui_theme = excluded.ui_theme,
			printer_model = excluded.printer_model,
			printer_baud_rate = excluded.printer_baud_rate,
			payment_mode = excluded.payment_mode,
			txn_fee = excluded.txn_fee,
			enabled_methods = excluded.enabled_methods,
			updated_at = now()`,
		st.SessionTimeout, st.DefaultLanguage, st.AudioGuidance, st.LoggingLevel,
		st.UITheme, st.PrinterModel, st.PrinterBaudRate, st.PaymentMode, st.TxnFee,
		strings.Join(st.EnabledMethods, ","))
	return err
}
