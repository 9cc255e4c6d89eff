// Package seed provides helpers to create demo and test data for the
// application database. Intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"postboard/internal/credentials"
	"postboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is assigned to every generated user.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	scheme credentials.Scheme
	rng    *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB. Generated
// passwords are stored through the given credential scheme.
func NewFactory(db *gorm.DB, scheme credentials.Scheme) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		scheme: scheme,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	stored, err := f.scheme.Hash(DefaultPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
		Password: stored,
		Nickname: gofakeit.Username(),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given user without persisting it,
// with a created_at spread over the last maxDays days.
func (f *Factory) BuildPost(user *models.User, maxDays int, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:   gofakeit.Sentence(5),
		Content: gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:  user.ID,
	}

	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}
