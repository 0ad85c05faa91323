package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"suvidha.org/internal/console"
)

// ConsoleStore keeps departments and the settings singleton in memory.
type ConsoleStore struct {
	mu          sync.RWMutex
	departments map[string]*console.Department
	settings    *console.Settings
}

// NewConsoleStore constructs an empty ConsoleStore.
func NewConsoleStore() *ConsoleStore {
	return &ConsoleStore{departments: make(map[string]*console.Department)}
}

func (s *ConsoleStore) CreateDepartment(_ context.Context, d *console.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.departments {
		if existing.Name == d.Name {
			return console.ErrConflict
		}
	}
	cp := *d
	s.departments[cp.ID] = &cp
	return nil
}

func (s *ConsoleStore) GetDepartment(_ context.Context, id string) (*console.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, console.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *ConsoleStore) ListDepartments(_ context.Context) ([]*console.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*console.Department, 0, len(s.departments))
	for _, d := range s.departments {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *ConsoleStore) UpdateDepartment(_ context.Context, id string, upd console.DepartmentUpdate) (*console.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, console.ErrNotFound
	}
	if upd.Name != nil {
		d.Name = *upd.Name
	}
	if upd.Icon != nil {
		d.Icon = *upd.Icon
	}
	if upd.Color != nil {
		d.Color = *upd.Color
	}
	if upd.Description != nil {
		d.Description = *upd.Description
	}
	if upd.ServiceHours != nil {
		d.ServiceHours = *upd.ServiceHours
	}
	if upd.Enabled != nil {
		d.Enabled = *upd.Enabled
	}
	d.UpdatedAt = time.Now().UTC()
	cp := *d
	return &cp, nil
}

func (s *ConsoleStore) DeleteDepartment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[id]; !ok {
		return console.ErrNotFound
	}
	delete(s.departments, id)
	return nil
}

func (s *ConsoleStore) GetSettings(_ context.Context) (*console.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, console.ErrNotFound
	}
	cp := *s.settings
	return &cp, nil
}

func (s *ConsoleStore) SaveSettings(_ context.Context, settings *console.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *settings
	s.settings = &cp
	return nil
}
