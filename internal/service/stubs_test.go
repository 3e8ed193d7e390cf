package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chirp/internal/models"
	"chirp/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn               func(context.Context, *models.User) error
	getByIDFn              func(context.Context, uint) (*models.User, error)
	getByUsernameFn        func(context.Context, string) (*models.User, error)
	getByEmailFn           func(context.Context, string) (*models.User, error)
	getByIdentifierFn      func(context.Context, string) (*models.User, error)
	getActiveByUsernamesFn func(context.Context, []string) ([]*models.User, error)
	updateFn               func(context.Context, *models.User) error
	updateLastLoginFn      func(context.Context, uint) error
	searchFn               func(context.Context, string, models.PageRequest) ([]*models.User, int64, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.getByIdentifierFn(ctx, identifier)
}
func (s *userRepoStub) GetActiveByUsernames(ctx context.Context, usernames []string) ([]*models.User, error) {
	return s.getActiveByUsernamesFn(ctx, usernames)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id uint) error {
	return s.updateLastLoginFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, query string, req models.PageRequest) ([]*models.User, int64, error) {
	return s.searchFn(ctx, query, req)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "someone", IsActive: true}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getByIdentifierFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		getActiveByUsernamesFn: func(_ context.Context, _ []string) ([]*models.User, error) { return nil, nil },
		updateFn:               func(_ context.Context, _ *models.User) error { return nil },
		updateLastLoginFn:      func(_ context.Context, _ uint) error { return nil },
		searchFn: func(_ context.Context, _ string, _ models.PageRequest) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn       func(context.Context, uint, uint) (bool, error)
	unfollowFn     func(context.Context, uint, uint) (bool, error)
	isFollowingFn  func(context.Context, uint, uint) (bool, error)
	followingIDsFn func(context.Context, uint) ([]uint, error)
	followersFn    func(context.Context, uint, models.PageRequest) ([]*models.User, int64, error)
	followingFn    func(context.Context, uint, models.PageRequest) ([]*models.User, int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followedID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followedID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error) {
	return s.followersFn(ctx, userID, req)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error) {
	return s.followingFn(ctx, userID, req)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unfollowFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn:  func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followingIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		followersFn: func(_ context.Context, _ uint, _ models.PageRequest) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
		followingFn: func(_ context.Context, _ uint, _ models.PageRequest) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
	}
}

// tweetRepoStub is a stub for repository.TweetRepository.
type tweetRepoStub struct {
	createFn         func(context.Context, *models.Tweet, []string) error
	getByIDFn        func(context.Context, uint) (*models.Tweet, error)
	updateContentFn  func(context.Context, *models.Tweet, []string) error
	softDeleteFn     func(context.Context, *models.Tweet) (bool, error)
	listByUserFn     func(context.Context, uint, models.PageRequest) ([]*models.Tweet, int64, error)
	listPublicFn     func(context.Context, models.PageRequest) ([]*models.Tweet, int64, error)
	repliesFn        func(context.Context, uint, models.PageRequest) ([]*models.Tweet, int64, error)
	likeFn           func(context.Context, uint, uint) (bool, error)
	unlikeFn         func(context.Context, uint, uint) (bool, error)
	isLikedFn        func(context.Context, uint, uint) (bool, error)
	likedTweetsFn    func(context.Context, uint, models.PageRequest) ([]*models.Tweet, int64, error)
	createMentionsFn func(context.Context, uint, []uint) error
}

func (s *tweetRepoStub) Create(ctx context.Context, tweet *models.Tweet, hashtags []string) error {
	return s.createFn(ctx, tweet, hashtags)
}
func (s *tweetRepoStub) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tweetRepoStub) UpdateContent(ctx context.Context, tweet *models.Tweet, hashtags []string) error {
	return s.updateContentFn(ctx, tweet, hashtags)
}
func (s *tweetRepoStub) SoftDelete(ctx context.Context, tweet *models.Tweet) (bool, error) {
	return s.softDeleteFn(ctx, tweet)
}
func (s *tweetRepoStub) ListByUser(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.listByUserFn(ctx, userID, req)
}
func (s *tweetRepoStub) ListPublic(ctx context.Context, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.listPublicFn(ctx, req)
}
func (s *tweetRepoStub) Replies(ctx context.Context, tweetID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.repliesFn(ctx, tweetID, req)
}
func (s *tweetRepoStub) Like(ctx context.Context, userID, tweetID uint) (bool, error) {
	return s.likeFn(ctx, userID, tweetID)
}
func (s *tweetRepoStub) Unlike(ctx context.Context, userID, tweetID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, tweetID)
}
func (s *tweetRepoStub) IsLiked(ctx context.Context, userID, tweetID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, tweetID)
}
func (s *tweetRepoStub) LikedTweets(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.likedTweetsFn(ctx, userID, req)
}
func (s *tweetRepoStub) CreateMentions(ctx context.Context, tweetID uint, mentionedUserIDs []uint) error {
	return s.createMentionsFn(ctx, tweetID, mentionedUserIDs)
}

func noopTweetRepo() *tweetRepoStub {
	var nextID uint
	return &tweetRepoStub{
		createFn: func(_ context.Context, tweet *models.Tweet, _ []string) error {
			nextID++
			tweet.ID = nextID
			tweet.CreatedAt = time.Now()
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Tweet, error) {
			return &models.Tweet{
				ID:        id,
				UserID:    1,
				Content:   "hello",
				TweetType: models.TweetTypeTweet,
				CreatedAt: time.Now(),
				User:      models.User{ID: 1, Username: "author", IsActive: true},
			}, nil
		},
		updateContentFn: func(_ context.Context, _ *models.Tweet, _ []string) error { return nil },
		softDeleteFn:    func(_ context.Context, _ *models.Tweet) (bool, error) { return true, nil },
		listByUserFn: func(_ context.Context, _ uint, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		listPublicFn: func(_ context.Context, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		repliesFn: func(_ context.Context, _ uint, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		likeFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:  func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		likedTweetsFn: func(_ context.Context, _ uint, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		createMentionsFn: func(_ context.Context, _ uint, _ []uint) error { return nil },
	}
}

// feedRepoStub is a stub for repository.FeedRepository.
type feedRepoStub struct {
	homeFn     func(context.Context, uint, []uint, models.PageRequest) ([]*models.Tweet, int64, error)
	discoverFn func(context.Context, uint, []uint, models.PageRequest) ([]*models.Tweet, int64, error)
	hashtagFn  func(context.Context, string, models.PageRequest) ([]*models.Tweet, int64, error)
	mentionsFn func(context.Context, uint, models.PageRequest) ([]*models.Tweet, int64, error)
}

func (s *feedRepoStub) Home(ctx context.Context, viewerID uint, followingIDs []uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.homeFn(ctx, viewerID, followingIDs, req)
}
func (s *feedRepoStub) Discover(ctx context.Context, viewerID uint, followingIDs []uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.discoverFn(ctx, viewerID, followingIDs, req)
}
func (s *feedRepoStub) Hashtag(ctx context.Context, name string, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.hashtagFn(ctx, name, req)
}
func (s *feedRepoStub) Mentions(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.mentionsFn(ctx, userID, req)
}

func noopFeedRepo() *feedRepoStub {
	return &feedRepoStub{
		homeFn: func(_ context.Context, _ uint, _ []uint, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		discoverFn: func(_ context.Context, _ uint, _ []uint, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		hashtagFn: func(_ context.Context, _ string, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
		mentionsFn: func(_ context.Context, _ uint, _ models.PageRequest) ([]*models.Tweet, int64, error) {
			return nil, 0, nil
		},
	}
}

// hashtagRepoStub is a stub for repository.HashtagRepository.
type hashtagRepoStub struct {
	getByNameFn func(context.Context, string) (*models.Hashtag, error)
	trendingFn  func(context.Context, time.Duration, int) ([]repository.TrendingHashtag, error)
}

func (s *hashtagRepoStub) GetByName(ctx context.Context, name string) (*models.Hashtag, error) {
	return s.getByNameFn(ctx, name)
}
func (s *hashtagRepoStub) Trending(ctx context.Context, window time.Duration, limit int) ([]repository.TrendingHashtag, error) {
	return s.trendingFn(ctx, window, limit)
}

func noopHashtagRepo() *hashtagRepoStub {
	return &hashtagRepoStub{
		getByNameFn: func(_ context.Context, name string) (*models.Hashtag, error) {
			return &models.Hashtag{ID: 1, Name: name}, nil
		},
		trendingFn: func(_ context.Context, _ time.Duration, _ int) ([]repository.TrendingHashtag, error) {
			return nil, nil
		},
	}
}

// notifRepoStub is a stub for repository.NotificationRepository. Created
// notifications are recorded so tests can assert on side effects.
type notifRepoStub struct {
	created []*models.Notification

	createFn      func(context.Context, *models.Notification) error
	getByIDFn     func(context.Context, uint, uint) (*models.Notification, error)
	listFn        func(context.Context, uint, repository.NotificationFilter, models.PageRequest) ([]*models.Notification, int64, error)
	markReadFn    func(context.Context, uint, uint) (bool, error)
	markAllReadFn func(context.Context, uint) (int64, error)
	unreadCountFn func(context.Context, uint) (int64, error)
	summaryFn     func(context.Context, uint) (*models.NotificationSummary, error)
}

func (s *notifRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if err := s.createFn(ctx, n); err != nil {
		return err
	}
	s.created = append(s.created, n)
	return nil
}
func (s *notifRepoStub) GetByID(ctx context.Context, userID, id uint) (*models.Notification, error) {
	return s.getByIDFn(ctx, userID, id)
}
func (s *notifRepoStub) List(ctx context.Context, userID uint, filter repository.NotificationFilter, req models.PageRequest) ([]*models.Notification, int64, error) {
	return s.listFn(ctx, userID, filter, req)
}
func (s *notifRepoStub) MarkRead(ctx context.Context, userID, id uint) (bool, error) {
	return s.markReadFn(ctx, userID, id)
}
func (s *notifRepoStub) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.markAllReadFn(ctx, userID)
}
func (s *notifRepoStub) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.unreadCountFn(ctx, userID)
}
func (s *notifRepoStub) Summary(ctx context.Context, userID uint) (*models.NotificationSummary, error) {
	return s.summaryFn(ctx, userID)
}

func noopNotifRepo() *notifRepoStub {
	return &notifRepoStub{
		createFn: func(_ context.Context, _ *models.Notification) error { return nil },
		getByIDFn: func(_ context.Context, _, _ uint) (*models.Notification, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listFn: func(_ context.Context, _ uint, _ repository.NotificationFilter, _ models.PageRequest) ([]*models.Notification, int64, error) {
			return nil, 0, nil
		},
		markReadFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		markAllReadFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		unreadCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		summaryFn: func(_ context.Context, _ uint) (*models.NotificationSummary, error) {
			return &models.NotificationSummary{}, nil
		},
	}
}

// publisherStub records published notifications.
type publisherStub struct {
	published []*models.Notification
	publishFn func(context.Context, *models.Notification) error
}

func (s *publisherStub) PublishNotification(ctx context.Context, n *models.Notification) error {
	if s.publishFn != nil {
		if err := s.publishFn(ctx, n); err != nil {
			return err
		}
	}
	s.published = append(s.published, n)
	return nil
}

// recordingNotifier builds a NotificationService whose stored notifications
// can be inspected via the returned repo stub.
func recordingNotifier() (*NotificationService, *notifRepoStub) {
	repo := noopNotifRepo()
	return NewNotificationService(repo, nil), repo
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
