package audit

import (
	"context"
	"strings"
	"time"

	"suvidha.org/internal/obs"
)

// Entry is an immutable record of a security-relevant action. The user and
// role fields are denormalized snapshots: deleting an account never rewrites
// its audit history.
type Entry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	User      string    `json:"user"`
	Role      string    `json:"role"`
	IP        string    `json:"ip"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter selects entries by case-insensitive substring on action and user.
// Page numbering starts at 1.
type Filter struct {
	Action string
	User   string
	Page   int
	Limit  int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Normalize clamps pagination values to sane bounds.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

// Matches reports whether the entry satisfies the filter's substring terms.
func (f Filter) Matches(e *Entry) bool {
	if f.Action != "" && !strings.Contains(strings.ToLower(e.Action), strings.ToLower(f.Action)) {
		return false
	}
	if f.User != "" && !strings.Contains(strings.ToLower(e.User), strings.ToLower(f.User)) {
		return false
	}
	return true
}

// Store appends and queries immutable entries. There is no update or delete.
// List returns one page, newest first, plus the total count of matches
// across all pages.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, int, error)
}

// Recorder writes audit entries best-effort: append failures are reported to
// the operational log and swallowed so they never roll back or fail the
// primary operation.
type Recorder struct {
	store Store
}

// NewRecorder wraps a store in best-effort semantics.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends one entry. An empty user is stored as "system".
func (r *Recorder) Record(ctx context.Context, action, user, role, ip, detail string) {
	if r == nil || r.store == nil {
		return
	}
	user = strings.TrimSpace(user)
	if user == "" {
		user = "system"
	}
	entry := &Entry{
		Action: strings.TrimSpace(action),
		User:   user,
		Role:   role,
		IP:     ip,
		Detail: detail,
	}
	if err := r.store.Append(ctx, entry); err != nil {
		obs.LogRequest(map[string]any{
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
			"level":  "error",
			"msg":    "audit append failed",
			"action": entry.Action,
			"error":  err.Error(),
		})
	}
}

// List queries entries through the underlying store.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]*Entry, int, error) {
	return r.store.List(ctx, filter.Normalize())
}
