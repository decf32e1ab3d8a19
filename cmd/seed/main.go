package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/database"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/types"
)

// Sample dishes so search has something to match against.
var sampleDishes = []struct {
	name        string
	description string
}{
	{"Margherita Pizza", "Tomato, mozzarella and fresh basil on a thin crust"},
	{"Pad Thai", "Rice noodles stir fried with egg, tofu, peanuts and tamarind"},
	{"Caesar Salad", "Romaine, parmesan, croutons and anchovy dressing"},
	{"Green Curry", "Coconut curry with Thai basil, eggplant and chicken"},
	{"Mushroom Risotto", "Arborio rice slow cooked with porcini and parmesan"},
	{"Shrimp Tacos", "Grilled shrimp, cabbage slaw and chipotle crema"},
	{"Lentil Soup", "Red lentils simmered with cumin and lemon"},
	{"Tiramisu", "Espresso soaked ladyfingers layered with mascarpone"},
}

func main() {
	email := flag.String("user-email", os.Getenv("SEED_USER_EMAIL"), "Register a demo user with this email")
	password := flag.String("user-password", os.Getenv("SEED_USER_PASSWORD"), "Password for the demo user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	catalog := service.NewCatalogService(db, log)
	if err := catalog.EnsureDefaults(ctx); err != nil {
		log.Fatal("failed to seed reference data", zap.Error(err))
	}

	created := 0
	for _, d := range sampleDishes {
		_, err := catalog.CreateDish(ctx, d.name, d.description)
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrConflict):
		default:
			log.Fatal("failed to seed dish", zap.String("dish", d.name), zap.Error(err))
		}
	}
	log.Info("seeded dishes", zap.Int("created", created), zap.Int("total", len(sampleDishes)))

	if *email == "" {
		return
	}
	if err := seedUser(ctx, db, cfg, log, *email, *password); err != nil {
		log.Fatal("failed to seed demo user", zap.Error(err))
	}
}

func seedUser(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger, email, password string) error {
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry, log)
	_, _, err := auth.Register(ctx, "Demo Diner", email, password)
	switch {
	case errors.Is(err, service.ErrConflict):
		log.Info("demo user already exists", logger.Email("email", email))
		return nil
	case err != nil:
		return err
	}

	doc := &types.PreferenceDocument{
		Allergies:          []string{"Peanuts"},
		DietaryConstraints: []string{"Vegetarian"},
		FlavorPreferences:  service.DefaultFlavorProfile(),
		SpecialPreferences: []string{"Prefers mild dishes"},
	}
	if err := service.NewPreferenceService(db, log).SetPreferences(ctx, email, doc); err != nil {
		return err
	}
	log.Info("seeded demo user", logger.Email("email", email))
	return nil
}
