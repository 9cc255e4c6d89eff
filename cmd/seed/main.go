// Command main runs the database seeder for Postboard.
package main

import (
	"flag"
	"log"

	"postboard/internal/config"
	"postboard/internal/credentials"
	"postboard/internal/database"
	"postboard/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxDays := flag.Int("max-days", 90, "Spread post creation dates over this many days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	scheme, err := credentials.ForName(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("Invalid password scheme: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, scheme, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
