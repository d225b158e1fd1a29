package main

import (
	"context"
	"database/sql"
	"itinerary-service/internal/adapters/repositories"
	"itinerary-service/internal/config"
	"itinerary-service/internal/platform/db"
	"log"
	"time"
)

// dbtool initializes the place catalog and, when DATABASE_URL is set,
// the shared Postgres cache and artifact tables.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	places, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer places.Close()

	initAndSeed(places, cfg.PlacesSeedPath)

	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set (skipping Postgres schema)")
		return
	}

	shared, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer shared.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Initializing Postgres schema...")
	if err := repositories.InitPostgresSchema(ctx, shared); err != nil {
		log.Fatalf("postgres schema initialization failed: %v", err)
	}
	log.Println("Postgres schema ready.")
}

func initAndSeed(db *sql.DB, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding place catalog...")
	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
