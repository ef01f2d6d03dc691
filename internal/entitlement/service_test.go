package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mytrader-platform/internal/domain"
)

// fakeRepo serves fixed aggregates without a database.
type fakeRepo struct {
	users  map[uuid.UUID]*domain.User
	plans  map[int]*domain.SubscriptionPlan
	config *domain.SystemConfig
}

func (f *fakeRepo) GetUserByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	return f.users[userID], nil
}

func (f *fakeRepo) GetPlanByID(_ context.Context, planID int) (*domain.SubscriptionPlan, error) {
	return f.plans[planID], nil
}

func (f *fakeRepo) GetSystemConfig(_ context.Context) (*domain.SystemConfig, error) {
	return f.config, nil
}

func rate(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad rate literal %q: %v", s, err)
	}
	return &d
}

func newFixture(t *testing.T) (*fakeRepo, *domain.User) {
	t.Helper()

	email, err := domain.NewEmail("trader@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash, err := domain.NewPasswordHash("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, err := domain.RegisterTrader(email, hash, "Trader User", "trader",
		domain.RiskModerate, 2, domain.BillingMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plan, err := domain.NewPlenoPlan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan.SetID(2)

	cfg, err := domain.NewDefaultSystemConfig(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo := &fakeRepo{
		users:  map[uuid.UUID]*domain.User{user.ID(): user},
		plans:  map[int]*domain.SubscriptionPlan{2: plan},
		config: cfg,
	}
	return repo, user
}

// ============================================================================
// TEST: Plan defaults pass through when no override exists
// ============================================================================

func TestResolve_PlanDefaults(t *testing.T) {
	repo, user := newFixture(t)
	svc := NewService(repo, nil)

	res, err := svc.Resolve(context.Background(), user.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.StrategyLimit != 10 {
		t.Errorf("expected Pleno limit 10, got %d", res.StrategyLimit)
	}
	if res.Features != domain.PlenoFeatures() {
		t.Errorf("expected Pleno features, got %s", res.Features)
	}
	if res.Override != nil {
		t.Error("no override should be reported")
	}
	if res.PlanName != "Pleno" {
		t.Errorf("expected plan name Pleno, got %s", res.PlanName)
	}

	// Default fee schedule passes through untouched.
	if res.Fees.DayTradeIncomeTaxRate == nil || !res.Fees.DayTradeIncomeTaxRate.Equal(*rate(t, "0.20")) {
		t.Errorf("expected default day-trade tax, got %v", res.Fees.DayTradeIncomeTaxRate)
	}
}

// ============================================================================
// TEST: Active override wins over plan values
// ============================================================================

func TestResolve_ActiveOverride(t *testing.T) {
	repo, user := newFixture(t)

	override, err := domain.NewVIPOverride(uuid.New(), "launch partner")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := user.GrantPlanOverride(override); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc := NewService(repo, nil)
	res, err := svc.Resolve(context.Background(), user.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.StrategyLimit != domain.VIPStrategyLimit {
		t.Errorf("expected VIP limit, got %d", res.StrategyLimit)
	}
	if res.Features != domain.ConsultorFeatures() {
		t.Errorf("expected Consultor feature bundle, got %s", res.Features)
	}
	if res.Override == nil {
		t.Fatal("active override must be reported")
	}
	if res.Override.Reason != "VIP: launch partner" {
		t.Errorf("unexpected override reason %q", res.Override.Reason)
	}
}

func TestResolve_ExpiredOverrideIgnored(t *testing.T) {
	repo, user := newFixture(t)

	limit := 9999
	expired := domain.RehydrateOverride(uuid.New(), time.Now().UTC().Add(-48*time.Hour),
		"old trial", &limit, nil, timePtr(time.Now().UTC().Add(-time.Hour)))
	if err := user.GrantPlanOverride(expired); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc := NewService(repo, nil)
	res, err := svc.Resolve(context.Background(), user.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.StrategyLimit != 10 {
		t.Errorf("expired override must not apply, got limit %d", res.StrategyLimit)
	}
	if res.Override != nil {
		t.Error("expired override must not be reported")
	}
}

func timePtr(t time.Time) *time.Time { return &t }

// ============================================================================
// TEST: Custom fees merge per field with the platform schedule
// ============================================================================

func TestResolve_CustomFeesMerge(t *testing.T) {
	repo, user := newFixture(t)

	custom, err := domain.NewTradingFees(nil, nil, nil, rate(t, "0.10"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user.SetCustomFees(&custom)

	svc := NewService(repo, nil)
	res, err := svc.Resolve(context.Background(), user.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Fees.IncomeTaxRate == nil || !res.Fees.IncomeTaxRate.Equal(*rate(t, "0.10")) {
		t.Errorf("income tax should use the custom rate, got %v", res.Fees.IncomeTaxRate)
	}
	if res.Fees.B3EmolumentRate == nil || !res.Fees.B3EmolumentRate.Equal(*rate(t, "0.000325")) {
		t.Errorf("b3 emolument should fall back to the platform default, got %v", res.Fees.B3EmolumentRate)
	}
}

// ============================================================================
// TEST: Resolution failure modes
// ============================================================================

func TestResolve_Errors(t *testing.T) {
	repo, user := newFixture(t)
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, uuid.New()); err != ErrUserNotFound {
		t.Errorf("unknown user: expected ErrUserNotFound, got %v", err)
	}

	email, err := domain.NewEmail("admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash, err := domain.NewPasswordHash("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	admin, err := domain.RegisterAdministrator(email, hash, "Admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.users[admin.ID()] = admin
	if _, err := svc.Resolve(ctx, admin.ID()); err != ErrNotTrader {
		t.Errorf("administrator: expected ErrNotTrader, got %v", err)
	}

	if err := user.Delete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Resolve(ctx, user.ID()); err != ErrUserDeleted {
		t.Errorf("deleted user: expected ErrUserDeleted, got %v", err)
	}

	repo.config = nil
	other, err := domain.RegisterTrader(email, hash, "Other", "other",
		domain.RiskModerate, 2, domain.BillingMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.users[other.ID()] = other
	if _, err := svc.Resolve(ctx, other.ID()); err != ErrConfigUnavailable {
		t.Errorf("missing config: expected ErrConfigUnavailable, got %v", err)
	}
}
