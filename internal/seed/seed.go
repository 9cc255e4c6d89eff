package seed

import (
	"fmt"
	"log"

	"postboard/internal/credentials"
	"postboard/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxDays     int
	ShouldClean bool
}

// Seed populates the database with demo users and posts.
func Seed(db *gorm.DB, scheme credentials.Scheme, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	factory := NewFactory(db, scheme)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d users created", len(users))

	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		posts = append(posts, factory.BuildPost(author, opts.MaxDays))
	}
	if err := factory.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	return nil
}

// clearData deletes posts before users so the FK never blocks cleanup.
func clearData(db *gorm.DB) error {
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}
