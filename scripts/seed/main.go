// Seeds the database with sample users, profiles and routines.
// Usage: go run scripts/seed/main.go
package main

import (
	"fmt"
	"log"

	"github.com/gymbro/gymbro-api/internal/config"
	"github.com/gymbro/gymbro-api/internal/seed"
)

func main() {
	cfg := config.Load()

	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	fmt.Println("\nSample user IDs for testing:")
	fmt.Println("  11111111-1111-1111-1111-111111111111 (Alex, muscle gain)")
	fmt.Println("  22222222-2222-2222-2222-222222222222 (Sam, fat loss)")
}
