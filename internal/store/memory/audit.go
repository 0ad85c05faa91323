package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"suvidha.org/internal/audit"
	"suvidha.org/internal/ids"
)

// AuditStore keeps audit entries in memory, newest last. Entries are never
// updated or deleted.
type AuditStore struct {
	mu      sync.RWMutex
	entries []*audit.Entry

	// FailNext forces the next Append to fail; tests use it to verify that
	// audit writes stay best-effort.
	FailNext bool
}

// NewAuditStore constructs an empty AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Append(_ context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return errors.New("audit store unavailable")
	}
	cp := *entry
	if cp.ID == "" {
		cp.ID = ids.New()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *AuditStore) List(_ context.Context, filter audit.Filter) ([]*audit.Entry, int, error) {
	filter = filter.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*audit.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter.Matches(s.entries[i]) {
			matched = append(matched, s.entries[i])
		}
	}
	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	page := make([]*audit.Entry, end-start)
	for i, e := range matched[start:end] {
		cp := *e
		page[i] = &cp
	}
	return page, total, nil
}

// Len reports the number of stored entries.
func (s *AuditStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
