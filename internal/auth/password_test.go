package auth

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Admin@123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Admin@123" || hash == "" {
		t.Fatalf("digest must differ from plaintext, got %q", hash)
	}
	if !VerifyPassword(hash, "Admin@123") {
		t.Fatal("correct password did not verify")
	}
	if VerifyPassword(hash, "Admin@124") {
		t.Fatal("wrong password verified")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$xx$broken"} {
		if VerifyPassword(digest, "anything") {
			t.Fatalf("malformed digest %q verified", digest)
		}
	}
}
