package domain

import (
	"strings"
	"testing"
)

func TestNewEmail(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"simple", "user@example.com", "user@example.com", false},
		{"normalized", "  User.Name+tag@Example.COM  ", "user.name+tag@example.com", false},
		{"empty", "   ", "", true},
		{"no at sign", "userexample.com", "", true},
		{"no tld", "user@example", "", true},
		{"too long", strings.Repeat("x", MaxEmailLength) + "@example.com", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewEmail(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Value() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, e.Value())
			}
		})
	}
}

func TestEmail_Equal(t *testing.T) {
	a, err := NewEmail("USER@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewEmail("user@EXAMPLE.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Equal(b) {
		t.Error("case differences should normalize away")
	}
}
