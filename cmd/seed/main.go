// Command seed populates a fresh database with the default admin and
// student accounts, the standard categories and the base product list.
// It is idempotent: existing rows are left alone.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/plsp-store/backend/internal/auth"
	"github.com/plsp-store/backend/internal/catalog"
	"github.com/plsp-store/backend/internal/config"
	"github.com/plsp-store/backend/internal/db"
	"github.com/plsp-store/backend/internal/user"
)

type seedProduct struct {
	name        string
	description string
	basePrice   string
	category    string
}

var seedProducts = []seedProduct{
	{"PLSP School Uniform (Male)", "Standard male school uniform", "800.00", "School Uniform"},
	{"PLSP School Uniform (Female)", "Standard female school uniform", "800.00", "School Uniform"},
	{"PLSP PE Shirt", "Official PE shirt", "400.00", "PE Uniform"},
	{"PLSP PE Pants", "Official PE pants", "450.00", "PE Uniform"},
	{"PLSP School Lace", "School ID lace", "100.00", "Lace"},
	{"PLSP Hoodie", "Official school hoodie", "1200.00", "Merch"},
	{"Notebook", "PLSP branded notebook", "60.00", "School Supplies"},
	{"Ballpen", "PLSP branded ballpen", "20.00", "School Supplies"},
	{"Handbook", "Student handbook / book", "150.00", "Books"},
}

var seedCategoryNames = []string{
	"School Uniform", "PE Uniform", "Books", "Merch", "Lace", "School Supplies",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	ctx := context.Background()

	if err := db.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	users := user.NewPGRepo(pool)
	cat := catalog.NewPGRepo(pool)

	if err := seedUser(ctx, users, cfg.BcryptCost, &user.User{
		Email:    "admin@plsp.edu",
		FullName: "Admin User",
		Role:     user.RoleAdmin,
	}, "admin123"); err != nil {
		log.Fatal().Err(err).Msg("seeding admin user failed")
	}

	studentID, gradeLevel, section := "S0000001", "1st Year", "A"
	if err := seedUser(ctx, users, cfg.BcryptCost, &user.User{
		Email:      "student1@plsp.edu",
		FullName:   "Student One",
		Role:       user.RoleStudent,
		StudentID:  &studentID,
		GradeLevel: &gradeLevel,
		Section:    &section,
	}, "student123"); err != nil {
		log.Fatal().Err(err).Msg("seeding student user failed")
	}

	categories, err := seedCategories(ctx, cat)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding categories failed")
	}
	if err := seedProductRows(ctx, cat, categories); err != nil {
		log.Fatal().Err(err).Msg("seeding products failed")
	}

	log.Info().Msg("seeding completed")
}

func seedUser(ctx context.Context, users user.Repository, bcryptCost int, u *user.User, password string) error {
	if _, err := users.GetByEmail(ctx, u.Email); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		return err
	}
	u.ID = uuid.NewString()
	u.PasswordHash = hash
	if err := users.Create(ctx, u); err != nil {
		return err
	}
	log.Info().Str("email", u.Email).Str("role", u.Role).Msg("user created")
	return nil
}

func seedCategories(ctx context.Context, cat catalog.Repository) (map[string]string, error) {
	existing, err := cat.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}
	for _, name := range seedCategoryNames {
		if _, ok := byName[name]; ok {
			continue
		}
		c := catalog.Category{ID: uuid.NewString(), Name: name, IsActive: true}
		if err := cat.CreateCategory(ctx, &c); err != nil {
			return nil, err
		}
		byName[name] = c.ID
		log.Info().Str("category", name).Msg("category created")
	}
	return byName, nil
}

func seedProductRows(ctx context.Context, cat catalog.Repository, categories map[string]string) error {
	existing, err := cat.ListProducts(ctx, catalog.ProductQuery{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, sp := range seedProducts {
		price, err := decimal.NewFromString(sp.basePrice)
		if err != nil {
			return err
		}
		p := catalog.Product{
			ID:          uuid.NewString(),
			Name:        sp.name,
			Description: sp.description,
			BasePrice:   price,
			IsActive:    true,
			CategoryID:  categories[sp.category],
		}
		if err := cat.CreateProduct(ctx, &p, nil); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(seedProducts)).Msg("products created")
	return nil
}
