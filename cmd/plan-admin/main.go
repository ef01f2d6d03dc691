package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mytrader-platform/config"
	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/database"
	"mytrader-platform/internal/domain"
)

func main() {
	fmt.Println("========================================")
	fmt.Println(" Plan Administration Tool")
	fmt.Println("========================================")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	repo := database.NewRepository(db)
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\nOptions:")
		fmt.Println("  1. Seed stock plans (Basico, Pleno, Consultor)")
		fmt.Println("  2. Seed default system config")
		fmt.Println("  3. Seed bootstrap administrator")
		fmt.Println("  4. List plans")
		fmt.Println("  5. Activate a plan")
		fmt.Println("  6. Deactivate a plan")
		fmt.Println("  7. Exit")
		fmt.Print("\nSelect option: ")

		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		switch input {
		case "1":
			seedStockPlans(ctx, repo)
		case "2":
			seedSystemConfig(ctx, repo)
		case "3":
			seedAdmin(ctx, db)
		case "4":
			listPlans(ctx, repo)
		case "5":
			togglePlan(ctx, repo, reader, true)
		case "6":
			togglePlan(ctx, repo, reader, false)
		case "7":
			fmt.Println("Goodbye!")
			os.Exit(0)
		default:
			fmt.Println("Invalid option")
		}
	}
}

// seedStockPlans creates the three stock plans, skipping any that exist.
func seedStockPlans(ctx context.Context, repo *database.Repository) {
	fmt.Println("\n--- Seed Stock Plans ---")

	factories := []func() (*domain.SubscriptionPlan, error){
		domain.NewBasicoPlan,
		domain.NewPlenoPlan,
		domain.NewConsultorPlan,
	}

	for _, factory := range factories {
		plan, err := factory()
		if err != nil {
			fmt.Printf("  Failed to build plan: %v\n", err)
			continue
		}

		existing, err := repo.GetPlanByName(ctx, plan.Name())
		if err != nil {
			fmt.Printf("  %s: lookup failed: %v\n", plan.Name(), err)
			continue
		}
		if existing != nil {
			fmt.Printf("  %s: already exists (id %d), skipped\n", plan.Name(), existing.ID())
			continue
		}

		if err := repo.CreatePlan(ctx, plan); err != nil {
			fmt.Printf("  %s: create failed: %v\n", plan.Name(), err)
			continue
		}
		fmt.Printf("  %s: created with id %d\n", plan.Name(), plan.ID())
	}
}

// seedSystemConfig creates the singleton configuration with the default
// B3 fee schedule, attributed to the bootstrap administrator.
func seedSystemConfig(ctx context.Context, repo *database.Repository) {
	fmt.Println("\n--- Seed System Config ---")

	existing, err := repo.GetSystemConfig(ctx)
	if err != nil {
		fmt.Printf("  Lookup failed: %v\n", err)
		return
	}
	if existing != nil {
		fmt.Println("  System config already exists, skipped")
		return
	}

	admin, err := repo.GetUserByEmail(ctx, adminEmail())
	if err != nil || admin == nil {
		fmt.Println("  Bootstrap administrator not found, seed it first (option 3)")
		return
	}

	cfg, err := domain.NewDefaultSystemConfig(admin.ID())
	if err != nil {
		fmt.Printf("  Failed to build config: %v\n", err)
		return
	}

	if err := repo.SaveSystemConfig(ctx, cfg); err != nil {
		fmt.Printf("  Save failed: %v\n", err)
		return
	}
	fmt.Println("  Default system config created")
}

// seedAdmin creates the bootstrap administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD.
func seedAdmin(ctx context.Context, db *database.DB) {
	fmt.Println("\n--- Seed Administrator ---")

	admin, err := auth.SeedAdminUser(ctx, db)
	if err != nil {
		fmt.Printf("  Seeding failed: %v\n", err)
		return
	}
	if admin == nil {
		fmt.Println("  Skipped (set ADMIN_PASSWORD to create the administrator)")
		return
	}
	fmt.Printf("  Administrator ready: %s (%s)\n", admin.Email(), admin.ID())
}

func listPlans(ctx context.Context, repo *database.Repository) {
	fmt.Println("\n--- Plans ---")

	plans, err := repo.ListPlans(ctx, false)
	if err != nil {
		fmt.Printf("  List failed: %v\n", err)
		return
	}
	if len(plans) == 0 {
		fmt.Println("  No plans")
		return
	}

	for _, plan := range plans {
		state := "inactive"
		if plan.IsActive() {
			state = "active"
		}
		count, _ := repo.CountPlanSubscribers(ctx, plan.ID())
		fmt.Printf("  %d. %-10s %s/month  limit %-4d %s  %d subscribers\n",
			plan.ID(), plan.Name(), plan.PriceMonthly(), plan.StrategyLimit(), state, count)
	}
}

func togglePlan(ctx context.Context, repo *database.Repository, reader *bufio.Reader, activate bool) {
	fmt.Print("\nPlan ID: ")
	input, _ := reader.ReadString('\n')
	planID, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		fmt.Println("Invalid plan ID")
		return
	}

	plan, err := repo.GetPlanByID(ctx, planID)
	if err != nil {
		fmt.Printf("  Lookup failed: %v\n", err)
		return
	}
	if plan == nil {
		fmt.Println("  Plan not found")
		return
	}

	if activate {
		plan.Activate()
	} else {
		plan.Deactivate()
	}

	if err := repo.UpdatePlan(ctx, plan); err != nil {
		fmt.Printf("  Save failed: %v\n", err)
		return
	}

	state := "deactivated"
	if activate {
		state = "activated"
	}
	fmt.Printf("  %s %s\n", plan.Name(), state)
}

func adminEmail() string {
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		return email
	}
	return auth.DefaultAdminEmail
}
