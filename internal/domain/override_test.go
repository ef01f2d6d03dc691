package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// TEST: Override creation invariants
// ============================================================================

func TestNewPlanOverride_RequiresAtLeastOneDimension(t *testing.T) {
	_, err := NewPlanOverride(uuid.New(), "some reason", nil, nil, nil)
	if err == nil {
		t.Fatal("expected error when neither limit nor features are specified")
	}
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestNewPlanOverride_Validation(t *testing.T) {
	limit := 20
	zeroLimit := 0
	features := ConsultorFeatures()
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	testCases := []struct {
		name      string
		grantedBy uuid.UUID
		reason    string
		limit     *int
		features  *PlanFeatures
		expiresAt *time.Time
		wantErr   bool
	}{
		{"limit only", uuid.New(), "beta access", &limit, nil, nil, false},
		{"features only", uuid.New(), "trial", nil, &features, nil, false},
		{"both with expiry", uuid.New(), "vip", &limit, &features, &future, false},
		{"nil grantedBy", uuid.Nil, "vip", &limit, nil, nil, true},
		{"empty reason", uuid.New(), "   ", &limit, nil, nil, true},
		{"reason too long", uuid.New(), strings.Repeat("x", MaxOverrideReasonLength+1), &limit, nil, nil, true},
		{"accented reason at max length", uuid.New(), strings.Repeat("ç", MaxOverrideReasonLength), &limit, nil, nil, false},
		{"non-positive limit", uuid.New(), "vip", &zeroLimit, nil, nil, true},
		{"expiry in the past", uuid.New(), "vip", &limit, nil, &past, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlanOverride(tc.grantedBy, tc.reason, tc.limit, tc.features, tc.expiresAt)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// ============================================================================
// TEST: Expiry semantics
// ============================================================================

func TestPlanOverride_NoExpiryNeverExpires(t *testing.T) {
	o, err := NewVIPOverride(uuid.New(), "founding user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.IsExpired() {
		t.Error("override without expiry must never expire")
	}
	if !o.IsActive() {
		t.Error("override without expiry must be active")
	}
}

func TestPlanOverride_PastExpiryIsInactive(t *testing.T) {
	limit := 50
	expired := RehydrateOverride(uuid.New(), time.Now().UTC().Add(-48*time.Hour),
		"old trial", &limit, nil, timePtr(time.Now().UTC().Add(-time.Hour)))

	if !expired.IsExpired() {
		t.Error("override with past expiry must be expired")
	}
	if expired.IsActive() {
		t.Error("expired override must not be active")
	}
}

func timePtr(t time.Time) *time.Time { return &t }

// ============================================================================
// TEST: Convenience grants
// ============================================================================

func TestNewVIPOverride(t *testing.T) {
	o, err := NewVIPOverride(uuid.New(), "launch partner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := o.StrategyLimitOverride(); got == nil || *got != VIPStrategyLimit {
		t.Errorf("expected limit %d, got %v", VIPStrategyLimit, got)
	}
	if got := o.FeaturesOverride(); got == nil || *got != ConsultorFeatures() {
		t.Errorf("expected Consultor features, got %v", got)
	}
	if o.ExpiresAt() != nil {
		t.Error("VIP override must not expire")
	}
	if !strings.HasPrefix(o.Reason(), "VIP: ") {
		t.Errorf("unexpected reason %q", o.Reason())
	}
}

func TestNewTrialOverride(t *testing.T) {
	o, err := NewTrialOverride(uuid.New(), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.StrategyLimitOverride() != nil {
		t.Error("trial override must not touch the strategy limit")
	}
	if o.FeaturesOverride() == nil {
		t.Error("trial override must carry a feature bundle")
	}
	if o.ExpiresAt() == nil {
		t.Fatal("trial override must expire")
	} else if o.ExpiresAt().Before(time.Now().UTC().Add(29 * 24 * time.Hour)) {
		t.Error("trial expiry should be ~30 days out")
	}
}

func TestNewBetaTesterOverride(t *testing.T) {
	o, err := NewBetaTesterOverride(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := o.StrategyLimitOverride(); got == nil || *got != 100 {
		t.Errorf("expected limit 100, got %v", got)
	}
	if o.ExpiresAt() != nil {
		t.Error("beta override must not expire")
	}
}
