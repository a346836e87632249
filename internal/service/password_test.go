package service

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret-pass" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt digest, got %q", hash)
	}
	if !h.Verify("s3cret-pass", hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if h.Verify("wrong-pass", hash) {
		t.Fatalf("expected password verification to fail for wrong password")
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatalf("expected distinct digests for the same password")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Fatalf("expected malformed digest to fail verification")
	}
	if h.Verify("anything", "") {
		t.Fatalf("expected empty digest to fail verification")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := NewPasswordHasher(bcrypt.MinCost).Hash(""); err == nil {
		t.Fatalf("expected error when password empty")
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	if h := NewPasswordHasher(1); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost for out-of-range input, got %d", h.cost)
	}
}

func TestHashLimitIsBytes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("x", MaxPasswordBytes)); err != nil {
		t.Fatalf("expected 72-byte password to hash, got %v", err)
	}
	// 72 characters, 144 bytes.
	if _, err := h.Hash(strings.Repeat("é", 72)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
