package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-secret", ttl)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	return issuer
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t, 24*time.Hour)
	account := &Account{ID: "acc-1", Role: RoleSuperAdmin}

	token, expiresAt, err := issuer.Issue(account)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "acc-1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != RoleSuperAdmin {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
}

func TestTokenVerifyFailsClosed(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	token, _, err := issuer.Issue(&Account{ID: "acc-1", Role: RoleOperator})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"tampered":  token[:len(token)-4] + "AAAA",
		"truncated": strings.Join(strings.Split(token, ".")[:2], "."),
	}
	for name, tok := range cases {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestTokenVerifyWrongSecret(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour)
	other := newTestIssuer(t, time.Hour)
	other.secret = []byte("different-secret")

	token, _, err := issuer.Issue(&Account{ID: "acc-1", Role: RoleOperator})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenVerifyExpired(t *testing.T) {
	issuer := newTestIssuer(t, time.Minute)
	now := time.Now()
	issuer.now = func() time.Time { return now }

	token, _, err := issuer.Issue(&Account{ID: "acc-1", Role: RoleOperator})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestLockedErrorMinutes(t *testing.T) {
	now := time.Now()
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{15 * time.Minute, 15},
		{14*time.Minute + time.Second, 15},
		{30 * time.Second, 1},
		{0, 0},
	}
	for _, tc := range cases {
		e := NewLockedError(now.Add(tc.remaining), now)
		if got := e.RetryAfterMinutes(); got != tc.want {
			t.Fatalf("remaining %v: expected %d minute(s), got %d", tc.remaining, tc.want, got)
		}
	}
}
