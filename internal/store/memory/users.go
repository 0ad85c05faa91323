package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"suvidha.org/internal/auth"
)

// UserStore is an in-process auth.UserStore used by tests and single-node
// deployments without Postgres. Lockout transitions are serialized with a
// per-account mutex so concurrent login attempts cannot lose counter
// updates.
type UserStore struct {
	mu       sync.RWMutex
	accounts map[string]*auth.Account
	byEmail  map[string]string

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		accounts: make(map[string]*auth.Account),
		byEmail:  make(map[string]string),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *UserStore) accountLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	if m, ok := s.locks[id]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.locks[id] = m
	return m
}

func clone(a *auth.Account) *auth.Account {
	cp := *a
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		cp.LockedUntil = &t
	}
	if a.LastLogin != nil {
		t := *a.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}

func (s *UserStore) Create(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := auth.NormalizeEmail(account.Email)
	if _, exists := s.byEmail[email]; exists {
		return auth.ErrConflict
	}
	cp := clone(account)
	cp.Email = email
	s.accounts[cp.ID] = cp
	s.byEmail[email] = cp.ID
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return clone(a), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return clone(s.accounts[id]), nil
}

func (s *UserStore) List(_ context.Context) ([]*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*auth.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) Update(_ context.Context, id string, upd auth.AccountUpdate) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if upd.Name != nil {
		a.Name = *upd.Name
	}
	if upd.Role != nil {
		a.Role = *upd.Role
	}
	if upd.DepartmentID != nil {
		a.DepartmentID = *upd.DepartmentID
	}
	if upd.Active != nil {
		a.Active = *upd.Active
	}
	if upd.PasswordHash != nil {
		a.PasswordHash = *upd.PasswordHash
	}
	a.UpdatedAt = time.Now().UTC()
	return clone(a), nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	delete(s.byEmail, a.Email)
	delete(s.accounts, id)
	return nil
}

// RecordFailure applies one failed-attempt transition under the account's
// mutex. Accounts whose lock window is still open are left untouched.
func (s *UserStore) RecordFailure(_ context.Context, id string, threshold int, lockFor time.Duration, now time.Time) (*auth.Account, error) {
	lock := s.accountLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if a.Locked(now) {
		return clone(a), nil
	}
	a.FailedAttempts++
	if a.FailedAttempts >= threshold {
		until := now.Add(lockFor)
		a.LockedUntil = &until
		a.FailedAttempts = 0
	}
	a.UpdatedAt = now
	return clone(a), nil
}

// RecordSuccess resets the counter, clears any lock and stamps last_login.
func (s *UserStore) RecordSuccess(_ context.Context, id string, now time.Time) error {
	lock := s.accountLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	a.FailedAttempts = 0
	a.LockedUntil = nil
	t := now
	a.LastLogin = &t
	a.UpdatedAt = now
	return nil
}
