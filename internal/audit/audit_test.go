package audit

import (
	"context"
	"errors"
	"testing"
)

type stubStore struct {
	entries []*Entry
	err     error
}

func (s *stubStore) Append(_ context.Context, entry *Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubStore) List(_ context.Context, _ Filter) ([]*Entry, int, error) {
	return s.entries, len(s.entries), nil
}

func TestFilterNormalize(t *testing.T) {
	cases := []struct {
		in    Filter
		page  int
		limit int
	}{
		{Filter{}, 1, 50},
		{Filter{Page: -3, Limit: 0}, 1, 50},
		{Filter{Page: 2, Limit: 25}, 2, 25},
		{Filter{Page: 1, Limit: 10000}, 1, 500},
	}
	for _, c := range cases {
		got := c.in.Normalize()
		if got.Page != c.page || got.Limit != c.limit {
			t.Fatalf("Normalize(%+v) = %+v, want page=%d limit=%d", c.in, got, c.page, c.limit)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	entry := &Entry{Action: "Admin login", User: "operator@suvidha.gov.in"}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"action substring", Filter{Action: "login"}, true},
		{"action case-insensitive", Filter{Action: "ADMIN"}, true},
		{"action miss", Filter{Action: "logout"}, false},
		{"user substring", Filter{User: "OPERATOR"}, true},
		{"user miss", Filter{User: "nobody"}, false},
		{"both terms", Filter{Action: "login", User: "suvidha"}, true},
		{"one term misses", Filter{Action: "login", User: "nobody"}, false},
	}
	for _, c := range cases {
		if got := c.filter.Matches(entry); got != c.want {
			t.Fatalf("%s: Matches = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRecorderDefaultsUserToSystem(t *testing.T) {
	store := &stubStore{}
	rec := NewRecorder(store)

	rec.Record(context.Background(), "Config changed", "  ", "", "", "logging level set to debug")

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	if store.entries[0].User != "system" {
		t.Fatalf("expected user %q, got %q", "system", store.entries[0].User)
	}
}

func TestRecorderSwallowsAppendErrors(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	rec := NewRecorder(store)

	// Must not panic and must not surface the error to the caller.
	rec.Record(context.Background(), "Admin login", "operator@suvidha.gov.in", "operator", "10.0.0.1", "Successful login")

	if len(store.entries) != 0 {
		t.Fatalf("expected no stored entries, got %d", len(store.entries))
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), "Admin login", "", "", "", "")
}
