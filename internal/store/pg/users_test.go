package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"suvidha.org/internal/auth"
)

var userRowColumns = []string{
	"id", "name", "email", "password_hash", "role", "department_id", "active",
	"two_factor_enabled", "failed_attempts", "locked_until", "last_login",
	"created_at", "updated_at",
}

func userRow(id string, attempts int, lockedUntil any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userRowColumns).AddRow(
		id, "Test", "operator@suvidha.gov.in", "$2a$12$hash", "operator", nil, true,
		false, attempts, lockedUntil, nil, now, now,
	)
}

func TestFindByEmailNormalizes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from users where email=").
		WithArgs("operator@suvidha.gov.in").
		WillReturnRows(userRow("u1", 0, nil))

	store := NewUserStore(db)
	account, err := store.FindByEmail(context.Background(), "  Operator@Suvidha.GOV.in ")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if account.ID != "u1" || account.LockedUntil != nil {
		t.Fatalf("unexpected account: %+v", account)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("from users where id=").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	store := NewUserStore(db)
	if _, err := store.FindByID(context.Background(), "missing"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into users").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	store := NewUserStore(db)
	account := &auth.Account{ID: "u2", Email: "operator@suvidha.gov.in"}
	if err := store.Create(context.Background(), account); !errors.Is(err, auth.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRecordFailureTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	until := now.Add(15 * time.Minute)
	mock.ExpectQuery("update users set").
		WithArgs("u1", 5, until, now).
		WillReturnRows(userRow("u1", 0, until))

	store := NewUserStore(db)
	account, err := store.RecordFailure(context.Background(), "u1", 5, 15*time.Minute, now)
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if account.LockedUntil == nil || !account.LockedUntil.Equal(until) {
		t.Fatalf("expected lock until %v, got %+v", until, account.LockedUntil)
	}
	if account.FailedAttempts != 0 {
		t.Fatalf("expected reset counter, got %d", account.FailedAttempts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordFailureConcurrentlyLockedFallsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	until := now.Add(10 * time.Minute)

	// The guarded update matches no rows because another request already
	// locked the account, so the store re-reads it.
	mock.ExpectQuery("update users set").
		WillReturnRows(sqlmock.NewRows(userRowColumns))
	mock.ExpectQuery("from users where id=").
		WithArgs("u1").
		WillReturnRows(userRow("u1", 0, until))

	store := NewUserStore(db)
	account, err := store.RecordFailure(context.Background(), "u1", 5, 15*time.Minute, now)
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if account.LockedUntil == nil || !account.LockedUntil.Equal(until) {
		t.Fatalf("expected existing lock preserved, got %+v", account)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("update users set failed_attempts = 0").
		WithArgs("u1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewUserStore(db)
	if err := store.RecordSuccess(context.Background(), "u1", now); err != nil {
		t.Fatalf("RecordSuccess: %v", err)
	}

	mock.ExpectExec("update users set failed_attempts = 0").
		WithArgs("missing", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := store.RecordSuccess(context.Background(), "missing", now); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateBuildsPartialSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	name := "Renamed"
	active := false
	mock.ExpectQuery("update users set updated_at = now\\(\\), name = \\$2, active = \\$3").
		WithArgs("u1", name, active).
		WillReturnRows(userRow("u1", 0, nil))

	store := NewUserStore(db)
	if _, err := store.Update(context.Background(), "u1", auth.AccountUpdate{Name: &name, Active: &active}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
