package main

import (
	"context"
	"flag"
	"log"

	"tablesense/internal/config"
	"tablesense/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	reset := flag.Bool("reset", false, "Drop the application tables before migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect(appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()
	if *reset {
		if err := runner.Reset(ctx, db); err != nil {
			log.Fatalf("Reset failed: %v", err)
		}
		log.Println("Dropped application tables")
	}

	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema at version %s", runner.Version())
}
