// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password assigned to every seeded account.
const SeedPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumTweets   int
	ShouldClean bool
	// SkipBcrypt stores passwords in plaintext. Much faster, test-only.
	SkipBcrypt bool
	// MaxDays bounds how far back seeded tweets are dated.
	MaxDays int
}

// Seeder populates the database with demo data. Writes that maintain
// denormalized counters go through the repository layer so seeded data obeys
// the same invariants as live data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
	users   repository.UserRepository
	tweets  repository.TweetRepository
	follows repository.FollowRepository
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	//nolint:gosec // weak random number generator is fine for seeding
	return &Seeder{
		db:      db,
		opts:    opts,
		factory: NewFactory(db, opts),
		users:   repository.NewUserRepository(db),
		tweets:  repository.NewTweetRepository(db),
		follows: repository.NewFollowRepository(db),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d tweets...", opts.NumUsers, opts.NumTweets)

	s := NewSeeder(db, opts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	followCount, err := s.SeedSocialGraph(users)
	if err != nil {
		return fmt.Errorf("failed to create follow graph: %w", err)
	}
	log.Printf("✓ %d follow edges created", followCount)

	tweets, err := s.SeedTimeline(users, opts.NumTweets)
	if err != nil {
		return fmt.Errorf("failed to create tweets: %w", err)
	}
	log.Printf("✓ %d tweets created", len(tweets))

	likeCount, err := s.SeedLikes(users, tweets)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likeCount)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

// ClearAll truncates every seeded table. Plain deletes so it works on both
// postgres and the sqlite test databases.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	tables := []string{
		"notifications", "mentions", "tweet_hashtags", "hashtags",
		"likes", "follows", "tweets", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates count accounts. The first few are well-known handles so
// developers always have a predictable login.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	password := SeedPassword
	if !s.opts.SkipBcrypt {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
		password = string(hashed)
	}

	baseUsers := []string{"chirp", "demo", "test"}
	for _, name := range baseUsers {
		if len(users) >= count {
			break
		}
		user := &models.User{
			Username:        name,
			Email:           fmt.Sprintf("%s@example.com", name),
			Password:        password,
			DisplayName:     name,
			Bio:             "One of the OGs.",
			ProfileImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", name),
			IsActive:        true,
			IsVerified:      true,
		}
		if err := s.db.Create(user).Error; err == nil {
			users = append(users, user)
		}
	}

	// retry on the rare generated-username collision
	attempts := 0
	for len(users) < count && attempts < count*2 {
		attempts++
		user, err := s.factory.CreateUser(func(u *models.User) {
			// keep the precomputed hash, CreateUser hashes per-user otherwise
			u.Password = password
		})
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if len(users)%100 == 0 {
			log.Printf("Created %d users...", len(users))
		}
	}

	return users, nil
}

// SeedSocialGraph creates a follow mesh where each user follows a handful of
// others. Duplicate picks are harmless, Follow just reports false.
func (s *Seeder) SeedSocialGraph(users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	ctx := context.Background()
	created := 0

	for _, user := range users {
		edges := s.rng.Intn(len(users)/2+1) + 1
		for e := 0; e < edges; e++ {
			target := users[s.rng.Intn(len(users))]
			if target.ID == user.ID {
				continue
			}
			ok, err := s.follows.Follow(ctx, user.ID, target.ID)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// SeedTimeline creates count tweets spread over the recent past, with a mix
// of originals, replies and retweets. Hashtags and mentions embedded in the
// generated content get their association rows, same as live writes.
func (s *Seeder) SeedTimeline(users []*models.User, count int) ([]*models.Tweet, error) {
	ctx := context.Background()
	tweets := make([]*models.Tweet, 0, count)

	for i := 0; i < count; i++ {
		author := users[s.rng.Intn(len(users))]
		content := s.factory.TweetContent(users)

		tweet := &models.Tweet{
			Content:   content,
			UserID:    author.ID,
			CreatedAt: s.factory.SpreadCreatedAt(s.opts.MaxDays),
		}
		tweet.Latitude, tweet.Longitude, tweet.PlaceName = s.factory.Place()

		// a slice of the timeline is replies and retweets of earlier tweets
		if len(tweets) > 0 {
			switch roll := s.rng.Float32(); {
			case roll < 0.2:
				parent := tweets[s.rng.Intn(len(tweets))]
				tweet.ReplyToID = &parent.ID
			case roll < 0.28:
				parent := tweets[s.rng.Intn(len(tweets))]
				tweet.RetweetOfID = &parent.ID
			}
		}
		tweet.TweetType = models.DeriveTweetType(tweet.ReplyToID, tweet.RetweetOfID)

		if err := s.tweets.Create(ctx, tweet, models.ExtractHashtags(content)); err != nil {
			return tweets, err
		}
		if err := s.seedMentions(ctx, tweet); err != nil {
			return tweets, err
		}
		tweets = append(tweets, tweet)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d tweets...", i)
		}
	}
	return tweets, nil
}

func (s *Seeder) seedMentions(ctx context.Context, tweet *models.Tweet) error {
	handles := models.ExtractMentions(tweet.Content)
	if len(handles) == 0 {
		return nil
	}
	mentioned, err := s.users.GetActiveByUsernames(ctx, handles)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, len(mentioned))
	for _, u := range mentioned {
		ids = append(ids, u.ID)
	}
	if len(ids) == 0 {
		return nil
	}
	return s.tweets.CreateMentions(ctx, tweet.ID, ids)
}

// SeedLikes sprinkles likes over the timeline. Roughly a third of tweets get
// between one and five likes from random users.
func (s *Seeder) SeedLikes(users []*models.User, tweets []*models.Tweet) (int, error) {
	ctx := context.Background()
	created := 0

	for _, tweet := range tweets {
		if s.rng.Float32() >= 0.35 {
			continue
		}
		likes := s.rng.Intn(5) + 1
		for l := 0; l < likes; l++ {
			liker := users[s.rng.Intn(len(users))]
			ok, err := s.tweets.Like(ctx, liker.ID, tweet.ID)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}
