package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hashed == "secret1" || hashed == "" {
		t.Fatal("expected a non-empty hash distinct from the plaintext")
	}
	if strings.Contains(hashed, "secret1") {
		t.Fatal("hash must not embed the plaintext")
	}

	if err := ComparePassword(hashed, "secret1"); err != nil {
		t.Fatalf("expected matching password to verify, got %v", err)
	}
	if err := ComparePassword(hashed, "secret2"); err == nil {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestComparePasswordIsWhitespaceSensitive(t *testing.T) {
	hashed, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	// Trimming is the caller's job; the hasher itself compares byte-exact.
	if err := ComparePassword(hashed, " secret1 "); err == nil {
		t.Fatal("expected padded password to fail verification")
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	first, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatal("expected salted hashes to differ between calls")
	}
}
