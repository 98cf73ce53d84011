// Command main runs the database seeder for Postmarket.
package main

import (
	"flag"
	"log"

	"postmarket/internal/config"
	"postmarket/internal/database"
	"postmarket/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numListings := flag.Int("listings", 60, "Number of listings to create")
	numMessages := flag.Int("messages", 120, "Number of messages to create")
	numReports := flag.Int("reports", 8, "Number of open reports to create")
	categoriesFile := flag.String("categories", "", "YAML file with category presets (default: built-in)")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = seed.Seed(db, seed.Options{
		NumUsers:       *numUsers,
		NumListings:    *numListings,
		NumMessages:    *numMessages,
		NumReports:     *numReports,
		CategoriesFile: *categoriesFile,
		ShouldClean:    *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Database populated with demo data.")
	log.Println("All seeded users have the password: password123")
	log.Println("Admin account: admin@postmarket.local / admin-password-123")
}
