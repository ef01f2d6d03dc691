package domain

import (
	"strings"
	"testing"
)

func TestNewPasswordHash(t *testing.T) {
	testCases := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{"valid 2a", testBcryptHash, false},
		{"valid 2b", "$2b$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", false},
		{"empty", "   ", true},
		{"plaintext", "hunter2", true},
		{"wrong prefix", "$1$12$" + strings.Repeat("a", 53), true},
		{"truncated", testBcryptHash[:30], true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPasswordHash(tc.hash)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPasswordHash_StringRedacts(t *testing.T) {
	h, err := NewPasswordHash(testBcryptHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(h.String(), "$2a$") {
		t.Error("String must never expose the hash")
	}
	if h.Value() != testBcryptHash {
		t.Error("Value must return the raw hash")
	}
}
