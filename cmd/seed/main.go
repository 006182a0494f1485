// Command seed provisions the first admin account and a few sample listings
// so a fresh environment has something to look at.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/irpartners/brokerage-api/internal/auth"
	"github.com/irpartners/brokerage-api/internal/properties"
)

func main() {
	_ = godotenv.Load()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")))
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminEmail == "" || len(adminPassword) < 6 {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD (6+ chars) are required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO admins (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`, uuid.NewString(), adminEmail, "Site Admin", hash)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin ready: %s", adminEmail)

	repo := properties.NewPostgresRepository(pool)
	for _, in := range sampleProperties() {
		existing, err := repo.GetBySlug(ctx, properties.Slugify(in.Title))
		if err == nil && existing != nil {
			continue
		}
		created, err := repo.Create(ctx, in)
		if err != nil {
			log.Fatalf("seed property %q: %v", in.Title, err)
		}
		log.Printf("property ready: %s (%s)", created.Title, created.Slug)
	}
}

func sampleProperties() []*properties.PropertyInput {
	return []*properties.PropertyInput{
		{
			Title:        "Gateway Logistics Center",
			Address:      "100 Commerce Pkwy",
			City:         "Riverside",
			State:        "OH",
			Zip:          "45431",
			Description:  "Modern cross-dock distribution facility with abundant trailer parking and quick interstate access.",
			SquareFeet:   152000,
			ClearHeight:  "32'",
			DockDoors:    24,
			DriveInDoors: 2,
			Acreage:      12.5,
			LeaseOrSale:  properties.Lease,
			PriceOrRate:  "$6.25/SF NNN",
			Highlights:   []string{"ESFR sprinklers", "Cross-dock configuration", "Trailer parking"},
			Status:       properties.StatusAvailable,
			Featured:     true,
		},
		{
			Title:        "Eastgate Flex Park Building C",
			Address:      "4210 Eastgate Blvd",
			City:         "Dayton",
			State:        "OH",
			Zip:          "45402",
			Description:  "Flexible light-industrial space divisible to 8,000 SF with grade-level access and office build-out.",
			SquareFeet:   24000,
			ClearHeight:  "18'",
			DriveInDoors: 4,
			LeaseOrSale:  properties.Lease,
			PriceOrRate:  "$8.50/SF Gross",
			Highlights:   []string{"Divisible", "Grade-level doors", "20% office"},
			Status:       properties.StatusAvailable,
		},
		{
			Title:       "Miller Road Manufacturing Campus",
			Address:     "7800 Miller Rd",
			City:        "Springfield",
			State:       "OH",
			Zip:         "45502",
			Description: "Heavy-power manufacturing plant on rail with overhead cranes and fenced outdoor storage.",
			SquareFeet:  310000,
			ClearHeight: "28'",
			DockDoors:   12,
			Acreage:     40,
			LeaseOrSale: properties.Sale,
			PriceOrRate: "$9,750,000",
			Highlights:  []string{"Rail served", "Heavy power", "Crane ready"},
			Status:      properties.StatusAvailable,
		},
	}
}
