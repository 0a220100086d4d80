package main

import (
	"context"
	"fmt"
	"os"

	"vizhaa-backend/config"
	"vizhaa-backend/database"
	"vizhaa-backend/database/seeders"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run tools/migrate.go migrate   - Create or update tables and indexes")
		fmt.Println("  go run tools/migrate.go seed      - Migrate, then insert demo accounts and events")
		return
	}
	_ = godotenv.Load()
	cfg := config.Load()

	command := os.Args[1]
	switch command {
	case "migrate":
		fmt.Println("🚀 Running database migrations...")
		// InitDB migrates on connect.
		if _, err := database.InitDB(cfg); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Migration completed successfully!")

	case "seed":
		if cfg.IsProduction() {
			fmt.Println("❌ Refusing to seed demo data in production")
			os.Exit(1)
		}
		db, err := database.InitDB(cfg)
		if err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		if err := seeders.SeedDemo(context.Background(), db); err != nil {
			fmt.Printf("❌ Seeding failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Seeding completed successfully!")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: migrate, seed")
	}
}
