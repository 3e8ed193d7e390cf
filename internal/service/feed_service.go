package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"gorm.io/gorm"
)

// Trending window labels accepted by the trending-hashtags endpoint.
var trendingWindows = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// MaxTrendingHashtags caps the trending listing size.
const MaxTrendingHashtags = 50

type FeedService struct {
	feedRepo    repository.FeedRepository
	followRepo  repository.FollowRepository
	hashtagRepo repository.HashtagRepository
}

func NewFeedService(
	feedRepo repository.FeedRepository,
	followRepo repository.FollowRepository,
	hashtagRepo repository.HashtagRepository,
) *FeedService {
	return &FeedService{
		feedRepo:    feedRepo,
		followRepo:  followRepo,
		hashtagRepo: hashtagRepo,
	}
}

// Home returns the viewer's ranked timeline. The following set is fetched
// once and handed to the ranking query.
func (s *FeedService) Home(ctx context.Context, viewerID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return s.feedRepo.Home(ctx, viewerID, followingIDs, req)
}

// Discover returns engaging recent tweets from authors the viewer does not
// follow yet.
func (s *FeedService) Discover(ctx context.Context, viewerID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return s.feedRepo.Discover(ctx, viewerID, followingIDs, req)
}

// Hashtag lists tweets for a tag. The name is normalized the same way the
// extractor normalizes tags; an unknown tag is NotFound.
func (s *FeedService) Hashtag(ctx context.Context, name string, req models.PageRequest) ([]*models.Tweet, int64, error) {
	normalized := strings.ToLower(strings.TrimPrefix(name, "#"))
	if normalized == "" {
		return nil, 0, models.NewValidationError("Hashtag name is required")
	}

	if _, err := s.hashtagRepo.GetByName(ctx, normalized); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, models.NewNotFoundError("Hashtag", normalized)
		}
		return nil, 0, models.NewInternalError(err)
	}
	return s.feedRepo.Hashtag(ctx, normalized, req)
}

func (s *FeedService) Mentions(ctx context.Context, viewerID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.feedRepo.Mentions(ctx, viewerID, req)
}

// TrendingHashtags aggregates hashtag usage over a named window.
// Unknown windows fall back to 24h; the limit is clamped, not rejected.
func (s *FeedService) TrendingHashtags(ctx context.Context, window string, limit int) ([]repository.TrendingHashtag, error) {
	dur, ok := trendingWindows[window]
	if !ok {
		dur = trendingWindows["24h"]
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > MaxTrendingHashtags {
		limit = MaxTrendingHashtags
	}
	return s.hashtagRepo.Trending(ctx, dur, limit)
}
