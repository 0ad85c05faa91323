package auth

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]struct {
		role Role
		ok   bool
	}{
		"super_admin":      {RoleSuperAdmin, true},
		"department_admin": {RoleDepartmentAdmin, true},
		"operator":         {RoleOperator, true},
		" Operator ":       {RoleOperator, true},
		"SUPER_ADMIN":      {RoleSuperAdmin, true},
		"root":             {"", false},
		"":                 {"", false},
	}
	for input, want := range cases {
		got, ok := ParseRole(input)
		if ok != want.ok || (ok && got != want.role) {
			t.Fatalf("ParseRole(%q) = %q, %v", input, got, ok)
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleSuperAdmin.AtLeast(RoleOperator) || !RoleSuperAdmin.AtLeast(RoleSuperAdmin) {
		t.Fatal("super_admin must satisfy every minimum")
	}
	if RoleOperator.AtLeast(RoleDepartmentAdmin) || RoleDepartmentAdmin.AtLeast(RoleSuperAdmin) {
		t.Fatal("lower roles must not satisfy higher minimums")
	}
	if Role("unknown").AtLeast(RoleOperator) {
		t.Fatal("unknown roles must never pass a gate")
	}
}

func TestAccountLocked(t *testing.T) {
	now := time.Now().UTC()
	a := &Account{}
	if a.Locked(now) {
		t.Fatal("account without lock reported locked")
	}
	future := now.Add(time.Minute)
	a.LockedUntil = &future
	if !a.Locked(now) {
		t.Fatal("open lock window not reported")
	}
	past := now.Add(-time.Second)
	a.LockedUntil = &past
	if a.Locked(now) {
		t.Fatal("elapsed lock must count as unlocked")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Operator@Suvidha.GOV.in "); got != "operator@suvidha.gov.in" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestAccountSerializationHidesSecrets(t *testing.T) {
	a := &Account{
		ID:              "u1",
		Email:           "operator@suvidha.gov.in",
		PasswordHash:    "$2a$12$secret",
		TwoFactorSecret: "otp-seed",
		Role:            RoleOperator,
	}
	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	if strings.Contains(body, "secret") || strings.Contains(body, "otp-seed") {
		t.Fatalf("credential material leaked: %s", body)
	}
}
