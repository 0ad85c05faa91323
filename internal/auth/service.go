package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"suvidha.org/internal/ids"
	"suvidha.org/internal/obs"
)

const (
	defaultLockThreshold = 5
	defaultLockWindow    = 15 * time.Minute
	minPasswordLength    = 6
)

// Audit action names, shared with the HTTP layer.
const (
	ActionLogin        = "Admin login"
	ActionLoginFailed  = "Failed login"
	ActionLoginBlocked = "Login blocked"
	ActionLogout       = "Admin logout"
	ActionUserCreated  = "User created"
	ActionUserUpdated  = "User updated"
	ActionUserDeleted  = "User deleted"
)

// Service implements authentication, account lockout and account management.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
	audit  AuditSink
	now    func() time.Time

	lockThreshold int
	lockWindow    time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithAuditSink wires the audit log writer. Without a sink, attempts are
// still processed but leave no audit trail.
func WithAuditSink(sink AuditSink) ServiceOption {
	return func(s *Service) error {
		s.audit = sink
		return nil
	}
}

// WithLockPolicy overrides the failed-attempt threshold and lock window.
func WithLockPolicy(threshold int, window time.Duration) ServiceOption {
	return func(s *Service) error {
		if threshold <= 0 || window <= 0 {
			return errors.New("lock policy values must be positive")
		}
		s.lockThreshold = threshold
		s.lockWindow = window
		return nil
	}
}

// NewService constructs a Service with optional configuration.
func NewService(store UserStore, tokens *TokenIssuer, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("user store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	svc := &Service{
		store:         store,
		tokens:        tokens,
		now:           time.Now,
		lockThreshold: defaultLockThreshold,
		lockWindow:    defaultLockWindow,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// LoginResult carries the outcome of a successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

// Login runs the full authentication flow: lockout pre-check, password
// verification, counter transition, token issuance. Every attempt produces
// exactly one audit record regardless of outcome.
func (s *Service) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	now := s.now().UTC()

	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			obs.ObserveLogin("invalid_credentials")
			s.record(ctx, ActionLoginFailed, email, "", ip, "Unknown email")
			return nil, ErrInvalidCredentials
		}
		obs.ObserveLogin("error")
		return nil, err
	}

	// Locked accounts are rejected before the hash is computed: paying the
	// bcrypt cost here would both slow the reject path and let an attacker
	// keep probing the password while locked.
	if account.Locked(now) {
		lockErr := NewLockedError(*account.LockedUntil, now)
		obs.ObserveLogin("locked")
		s.record(ctx, ActionLoginBlocked, account.Email, string(account.Role), ip,
			fmt.Sprintf("Account locked for %d more minute(s)", lockErr.RetryAfterMinutes()))
		return nil, lockErr
	}

	if !VerifyPassword(account.PasswordHash, password) {
		attempt := account.FailedAttempts + 1
		after, ferr := s.store.RecordFailure(ctx, account.ID, s.lockThreshold, s.lockWindow, now)
		if ferr != nil {
			obs.ObserveLogin("error")
			return nil, ferr
		}
		detail := fmt.Sprintf("Invalid password (attempt %d)", attempt)
		if after.Locked(now) && !account.Locked(now) {
			obs.ObserveLockout()
			detail = fmt.Sprintf("Invalid password (attempt %d), account locked", attempt)
		}
		obs.ObserveLogin("invalid_credentials")
		s.record(ctx, ActionLoginFailed, account.Email, string(account.Role), ip, detail)
		return nil, ErrInvalidCredentials
	}

	// The deactivation check sits after password verification so a correct
	// password against a disabled account neither resets the counter nor
	// clears a pending lock.
	if !account.Active {
		obs.ObserveLogin("disabled")
		s.record(ctx, ActionLoginFailed, account.Email, string(account.Role), ip, "Account deactivated")
		return nil, ErrAccountDisabled
	}

	if err := s.store.RecordSuccess(ctx, account.ID, now); err != nil {
		obs.ObserveLogin("error")
		return nil, err
	}
	account.FailedAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &now

	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		obs.ObserveLogin("error")
		return nil, err
	}

	obs.ObserveLogin("success")
	s.record(ctx, ActionLogin, account.Email, string(account.Role), ip, "Successful login")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// Authenticate resolves a bearer token into a live account. It fails closed
// if the account no longer exists and rejects deactivated accounts.
func (s *Service) Authenticate(ctx context.Context, token string) (*Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	account, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !account.Active {
		return nil, ErrAccountDisabled
	}
	return account, nil
}

// Refresh mints a fresh token for an already-authenticated account.
func (s *Service) Refresh(account *Account) (string, time.Time, error) {
	return s.tokens.Issue(account)
}

// RegisterInput describes a new account registration.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	DepartmentID string
}

// Register creates an account. Only the HTTP layer's role gate restricts the
// caller; the service validates and hashes.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	role := RoleOperator
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := ParseRole(in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, in.Role)
		}
		role = parsed
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	account := &Account{
		ID:           ids.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		DepartmentID: strings.TrimSpace(in.DepartmentID),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateInput describes an admin account mutation.
type UpdateInput struct {
	Name         *string
	Role         *string
	DepartmentID *string
	Active       *bool
	Password     *string
}

// UpdateAccount applies an admin mutation. A new password is hashed here;
// the stored hash is never written by any other path.
func (s *Service) UpdateAccount(ctx context.Context, id string, in UpdateInput) (*Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidInput)
	}
	upd := AccountUpdate{DepartmentID: in.DepartmentID, Active: in.Active}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if in.Role != nil {
		role, ok := ParseRole(*in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, *in.Role)
		}
		upd.Role = &role
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	return s.store.Update(ctx, id, upd)
}

// DeleteAccount removes an account. Audit history keeps its own denormalized
// snapshot of the actor's email and role, so no entries are touched.
func (s *Service) DeleteAccount(ctx context.Context, id string) (*Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts, hashes excluded by serialization.
func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.store.List(ctx)
}

// GetAccount loads a single account by id.
func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) record(ctx context.Context, action, email, role, ip, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, email, role, ip, detail)
}
