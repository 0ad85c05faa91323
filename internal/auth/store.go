package auth

import (
	"context"
	"time"
)

// UserStore describes account persistence. FindByEmail is case-insensitive;
// implementations store emails lower-cased.
//
// RecordFailure and RecordSuccess apply the lockout counter transitions. Each
// call must be atomic with respect to concurrent calls for the same account:
// the Postgres store uses single conditional UPDATE statements, the memory
// store a per-account mutex. A plain read-then-write is a correctness bug
// under concurrent login attempts.
type UserStore interface {
	Create(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context) ([]*Account, error)
	Update(ctx context.Context, id string, upd AccountUpdate) (*Account, error)
	Delete(ctx context.Context, id string) error

	// RecordFailure increments the failed-attempt counter; when the counter
	// reaches threshold it sets locked_until = now + lockFor and resets the
	// counter to zero. Accounts whose lock window is still open are left
	// untouched. It returns the account state after the transition.
	RecordFailure(ctx context.Context, id string, threshold int, lockFor time.Duration, now time.Time) (*Account, error)

	// RecordSuccess resets the failed-attempt counter, clears any lock and
	// stamps last_login.
	RecordSuccess(ctx context.Context, id string, now time.Time) error
}

// AuditSink receives one record per authentication attempt and privileged
// mutation. Implementations are best-effort and must never fail the caller.
type AuditSink interface {
	Record(ctx context.Context, action, userEmail, role, ip, detail string)
}
