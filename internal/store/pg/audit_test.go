package pg

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"suvidha.org/internal/audit"
)

func TestAuditAppendFillsDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into audit_logs").
		WithArgs(sqlmock.AnyArg(), "Admin login", "operator@suvidha.gov.in", "operator",
			"10.0.0.1", "Successful login", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewAuditStore(db)
	entry := &audit.Entry{
		Action: "Admin login",
		User:   "operator@suvidha.gov.in",
		Role:   "operator",
		IP:     "10.0.0.1",
		Detail: "Successful login",
	}
	if err := store.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditListCountsAndPaginates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("select count").
		WithArgs("%login%", "%operator%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("order by created_at desc").
		WithArgs("%login%", "%operator%", 5, 5).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "action", "user_email", "user_role", "ip", "detail", "created_at"}).
			AddRow("e2", "Admin login", "operator@suvidha.gov.in", "operator", "", "", now).
			AddRow("e1", "Failed login", "operator@suvidha.gov.in", "operator", "", "", now.Add(-time.Minute)))

	store := NewAuditStore(db)
	entries, total, err := store.List(context.Background(), audit.Filter{
		Action: "login", User: "operator", Page: 2, Limit: 5,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 12 {
		t.Fatalf("expected total 12, got %d", total)
	}
	if len(entries) != 2 || entries[0].ID != "e2" || entries[1].ID != "e1" {
		t.Fatalf("unexpected page: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditListEmptyFilterMatchesAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select count").
		WithArgs("%%", "%%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("order by created_at desc").
		WithArgs("%%", "%%", 50, 0).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "action", "user_email", "user_role", "ip", "detail", "created_at"}))

	store := NewAuditStore(db)
	entries, total, err := store.List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 0 || len(entries) != 0 {
		t.Fatalf("expected empty result, got total=%d len=%d", total, len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
