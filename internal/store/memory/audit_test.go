package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"suvidha.org/internal/audit"
)

func seedEntries(t *testing.T, s *AuditStore, n int) {
	t.Helper()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		entry := &audit.Entry{
			ID:        fmt.Sprintf("e%03d", i),
			Action:    "Admin login",
			User:      fmt.Sprintf("user%d@suvidha.gov.in", i%3),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Append(context.Background(), entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}

func TestAuditListNewestFirst(t *testing.T) {
	s := NewAuditStore()
	seedEntries(t, s, 5)

	entries, total, err := s.List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 5 || len(entries) != 5 {
		t.Fatalf("got total=%d len=%d", total, len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatalf("entries not newest-first at index %d", i)
		}
	}
}

func TestAuditListPagination(t *testing.T) {
	s := NewAuditStore()
	seedEntries(t, s, 7)

	page1, total, err := s.List(context.Background(), audit.Filter{Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 7 || len(page1) != 3 {
		t.Fatalf("page 1: total=%d len=%d", total, len(page1))
	}
	page3, total, err := s.List(context.Background(), audit.Filter{Page: 3, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 7 || len(page3) != 1 {
		t.Fatalf("page 3: total=%d len=%d", total, len(page3))
	}
	if page3[0].ID != "e000" {
		t.Fatalf("expected oldest entry last, got %s", page3[0].ID)
	}

	// Beyond the last page: empty slice, total still reported.
	empty, total, err := s.List(context.Background(), audit.Filter{Page: 9, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 7 || len(empty) != 0 {
		t.Fatalf("page 9: total=%d len=%d", total, len(empty))
	}
}

func TestAuditListFilters(t *testing.T) {
	s := NewAuditStore()
	seedEntries(t, s, 6)
	if err := s.Append(context.Background(), &audit.Entry{
		ID:     "e999",
		Action: "Config changed",
		User:   "admin@suvidha.gov.in",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, total, err := s.List(context.Background(), audit.Filter{Action: "config"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].ID != "e999" {
		t.Fatalf("action filter: total=%d entries=%+v", total, entries)
	}

	// user0 appears at indices 0 and 3 of the six seeded logins.
	_, total, err = s.List(context.Background(), audit.Filter{User: "USER0"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Fatalf("user filter: total=%d", total)
	}
}

func TestAuditAppendDefaults(t *testing.T) {
	s := NewAuditStore()
	if err := s.Append(context.Background(), &audit.Entry{Action: "Admin logout"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, _, err := s.List(context.Background(), audit.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if entries[0].ID == "" || entries[0].CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", entries[0])
	}
}
