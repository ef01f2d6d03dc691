package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mytrader-platform/internal/domain"
	"mytrader-platform/internal/entitlement"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	return body
}

func TestWriteDomainError_Validation(t *testing.T) {
	c, w := testContext(t)

	_, err := domain.NewEmail("not-an-email")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	writeDomainError(c, err)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "VALIDATION_ERROR" {
		t.Errorf("Expected error 'VALIDATION_ERROR', got '%v'", body["error"])
	}
}

func TestWriteDomainError_RuleViolation(t *testing.T) {
	c, w := testContext(t)

	hash, err := domain.NewPasswordHash("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	email, err := domain.NewEmail("user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, err := domain.RegisterTrader(email, hash, "User", "user",
		domain.RiskModerate, 1, domain.BillingMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verifying without a phone on file is a rule violation
	writeDomainError(c, user.VerifyPhone())

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != domain.CodeNoPhone {
		t.Errorf("Expected error '%s', got '%v'", domain.CodeNoPhone, body["error"])
	}
}

func TestWriteEntitlementError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"user not found", entitlement.ErrUserNotFound, http.StatusNotFound},
		{"plan not found", entitlement.ErrPlanNotFound, http.StatusNotFound},
		{"user deleted", entitlement.ErrUserDeleted, http.StatusGone},
		{"not a trader", entitlement.ErrNotTrader, http.StatusConflict},
		{"config missing", entitlement.ErrConfigUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(t)
			writeEntitlementError(c, tt.err)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestHandleListUsers_RejectsBadPlanFilter(t *testing.T) {
	tests := []struct {
		name string
		plan string
	}{
		{"non-numeric plan", "basico"},
		{"zero plan", "0"},
		{"negative plan", "-3"},
	}

	s := &Server{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext(t)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/users?plan="+tt.plan, nil)

			s.handleListUsers(c)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
			body := decodeBody(t, w)
			if body["message"] != "invalid plan ID" {
				t.Errorf("Unexpected message '%v'", body["message"])
			}
		})
	}
}

func TestToPlanResponse(t *testing.T) {
	plan, err := domain.NewPlenoPlan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan.SetID(2)

	resp := ToPlanResponse(plan)

	if resp.ID != 2 {
		t.Errorf("Expected ID 2, got %d", resp.ID)
	}
	if resp.Name != "Pleno" {
		t.Errorf("Expected name Pleno, got %s", resp.Name)
	}
	if resp.Currency != "BRL" {
		t.Errorf("Expected BRL, got %s", resp.Currency)
	}
	if resp.StrategyLimit != 10 {
		t.Errorf("Expected strategy limit 10, got %d", resp.StrategyLimit)
	}
	if !resp.IsActive {
		t.Error("New plans should be active")
	}
	if resp.SubscriberCount != nil {
		t.Error("Subscriber count should be absent by default")
	}
}

func TestToUserDetailResponse(t *testing.T) {
	hash, err := domain.NewPasswordHash("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	email, err := domain.NewEmail("trader@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, err := domain.RegisterTrader(email, hash, "Trader User", "trader",
		domain.RiskAggressive, 3, domain.BillingAnnual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	phone, err := domain.NewBrazilianPhone("11987654321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user.SetPhone(phone)

	override, err := domain.NewVIPOverride(uuid.New(), "partner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := user.GrantPlanOverride(override); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := ToUserDetailResponse(user)

	if resp.Email != "trader@example.com" {
		t.Errorf("Unexpected email %s", resp.Email)
	}
	if resp.Phone == nil {
		t.Fatal("Phone should be present")
	}
	if resp.Phone.IsVerified {
		t.Error("A fresh phone must be unverified")
	}
	if resp.Override == nil {
		t.Fatal("Override should be present")
	}
	if !resp.Override.IsActive {
		t.Error("A VIP override never expires")
	}
	if resp.CustomFees != nil {
		t.Error("Custom fees should be absent")
	}
}
