package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/desinetwork/classifieds/config"
	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/pkg/helpers"
)

var seedCities = []struct{ name, state string }{
	{"New York", "NY"},
	{"Jersey City", "NJ"},
	{"Edison", "NJ"},
	{"Chicago", "IL"},
	{"Houston", "TX"},
	{"Dallas", "TX"},
	{"Austin", "TX"},
	{"San Francisco", "CA"},
	{"San Jose", "CA"},
	{"Los Angeles", "CA"},
	{"Atlanta", "GA"},
	{"Seattle", "WA"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	adminID := seedUser(db, "admin@desinetwork.local", "admin12345", "Admin", entity.RoleAdmin)
	userID := seedUser(db, "demo@desinetwork.local", "demo12345", "Demo User", entity.RoleUser)

	cityIDs := make([]string, 0, len(seedCities))
	for _, c := range seedCities {
		var id string
		err := db.QueryRow(`
			INSERT INTO cities (name, state)
			VALUES ($1, $2)
			ON CONFLICT (name, state) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, c.name, c.state).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed city %s, %s: %v", c.name, c.state, err)
		}
		cityIDs = append(cityIDs, id)
	}
	fmt.Printf("seeded %d cities\n", len(cityIDs))

	seedClassified(db, userID, "Sofa set for sale", "Three-seater plus two chairs, two years old, pickup only.", "furniture", entity.VisibilitySelectedCities, entity.StatusPublished, cityIDs[:2])
	seedClassified(db, userID, "Room for rent near downtown", "Furnished room, utilities included, available from next month.", "housing", entity.VisibilityAllCities, entity.StatusPublished, nil)
	seedClassified(db, adminID, "Carpool to airport", "Leaving Saturday morning, two seats free.", "rideshare", entity.VisibilitySelectedCities, entity.StatusDraft, cityIDs[2:3])
	fmt.Println("seeded sample classifieds")
}

func seedUser(db *sql.DB, email, password, name, role string) string {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	var id string
	// Seeded accounts skip OTP verification.
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, role, email_verified_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
		RETURNING id
	`, email, hash, name, role, time.Now()).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	fmt.Printf("seeded user: email=%s password=%s role=%s\n", email, password, role)
	return id
}

func seedClassified(db *sql.DB, userID, title, description, category, visibility, status string, cityIDs []string) {
	var id string
	err := db.QueryRow(`
		INSERT INTO classifieds (user_id, title, description, category, visibility, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, title, description, category, visibility, status).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed classified %q: %v", title, err)
	}
	for _, cityID := range cityIDs {
		if _, err := db.Exec(`
			INSERT INTO classified_cities (classified_id, city_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, id, cityID); err != nil {
			log.Fatalf("failed to link classified %q to city: %v", title, err)
		}
	}
}
