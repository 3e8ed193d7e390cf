// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak random number generator is fine for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var hashtagPool = []string{
	"golang", "fiber", "postgres", "redis", "devops", "homelab", "coffee",
	"running", "music", "books", "travel", "photography", "ai", "startups",
	"gamedev", "linux", "opensource", "cooking", "cycling", "film",
}

var placePool = []string{
	"Berlin", "Lisbon", "Austin", "Tokyo", "Amsterdam", "Melbourne",
	"Toronto", "Seoul", "Cape Town",
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, gofakeit.Number(10, 999)))

	user := &models.User{
		Username:        username,
		Email:           fmt.Sprintf("%s@example.com", username),
		DisplayName:     fmt.Sprintf("%s %s", first, last),
		Bio:             gofakeit.Sentence(10),
		Location:        gofakeit.City(),
		Website:         gofakeit.URL(),
		ProfileImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		IsActive:        true,
		IsPrivate:       f.rng.Float32() < 0.1,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = SeedPassword
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// TweetContent generates a short post, occasionally decorated with hashtags
// and a mention of another seeded user.
func (f *Factory) TweetContent(users []*models.User) string {
	var sb strings.Builder
	sb.WriteString(gofakeit.Sentence(f.rng.Intn(12) + 3))

	if f.rng.Float32() < 0.4 {
		tag := hashtagPool[f.rng.Intn(len(hashtagPool))]
		sb.WriteString(" #")
		sb.WriteString(tag)
		if f.rng.Float32() < 0.3 {
			sb.WriteString(" #")
			sb.WriteString(hashtagPool[f.rng.Intn(len(hashtagPool))])
		}
	}
	if len(users) > 0 && f.rng.Float32() < 0.2 {
		other := users[f.rng.Intn(len(users))]
		sb.WriteString(" @")
		sb.WriteString(other.Username)
	}

	content := sb.String()
	if len(content) > validation.MaxTweetLength {
		content = content[:validation.MaxTweetLength]
	}
	return content
}

// SpreadCreatedAt returns a timestamp up to maxDays in the past so seeded
// timelines and trending windows look realistic.
func (f *Factory) SpreadCreatedAt(maxDays int) time.Time {
	if maxDays <= 0 {
		maxDays = 30
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// Place returns random coordinates with a recognizable place name, or nil
// fields most of the time.
func (f *Factory) Place() (*float64, *float64, string) {
	if f.rng.Float32() >= 0.15 {
		return nil, nil, ""
	}
	lat := gofakeit.Latitude()
	lon := gofakeit.Longitude()
	return &lat, &lon, placePool[f.rng.Intn(len(placePool))]
}
