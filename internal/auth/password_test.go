package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// TEST: Password policy
// ============================================================================

func TestValidatePasswordStrength(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost, MinPasswordLength)

	testCases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"upper lower digit", "Senha123", false},
		{"lower digit symbol", "senha-123", false},
		{"all four classes", "Senha-123", false},
		{"too short", "Ab1!", true},
		{"only lowercase", "senhasenha", true},
		{"only two classes", "senha1234", true},
		{"over bcrypt input limit", strings.Repeat("Aa1!", MaxPasswordLength/4+1), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := pm.ValidatePasswordStrength(tc.password)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPasswordManager_MinLengthNeverRelaxed(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost, 4)

	if err := pm.ValidatePasswordStrength("Ab1!abc"); err == nil {
		t.Error("a configured minimum below the platform floor must not take effect")
	}
}

// ============================================================================
// TEST: Hashing and verification
// ============================================================================

func TestHashAndVerifyPassword(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost, MinPasswordLength)

	hash, err := pm.HashPassword("Senha-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !pm.VerifyPassword("Senha-123", hash) {
		t.Error("correct password rejected")
	}
	if pm.VerifyPassword("senha-123", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_RejectsOverlongInput(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost, MinPasswordLength)

	// bcrypt ignores bytes past 72, so overlong passwords are rejected
	// up front rather than silently truncated.
	if _, err := pm.HashPassword(strings.Repeat("x", MaxPasswordLength+1)); err == nil {
		t.Error("expected overlong password to be rejected")
	}
}

func TestNewPasswordManager_ClampsCost(t *testing.T) {
	testCases := []struct {
		name string
		cost int
	}{
		{"below bcrypt minimum", bcrypt.MinCost - 1},
		{"above bcrypt maximum", bcrypt.MaxCost + 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pm := NewPasswordManager(tc.cost, MinPasswordLength)
			if pm.bcryptCost != DefaultBcryptCost {
				t.Errorf("expected cost %d, got %d", DefaultBcryptCost, pm.bcryptCost)
			}
		})
	}
}

// ============================================================================
// TEST: Refresh token storage key
// ============================================================================

func TestHashRefreshToken_Deterministic(t *testing.T) {
	a := HashRefreshToken("token-a")
	b := HashRefreshToken("token-b")

	if a == b {
		t.Error("distinct tokens must hash to distinct keys")
	}
	if a != HashRefreshToken("token-a") {
		t.Error("hashing must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
}
