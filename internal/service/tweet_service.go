package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// EditWindow bounds how long after creation a tweet's content may change.
const EditWindow = 5 * time.Minute

type TweetService struct {
	tweetRepo  repository.TweetRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	notifier   *NotificationService
}

func NewTweetService(
	tweetRepo repository.TweetRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	notifier *NotificationService,
) *TweetService {
	return &TweetService{
		tweetRepo:  tweetRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   notifier,
	}
}

type CreateTweetInput struct {
	UserID      uint
	Content     string
	ReplyToID   *uint
	RetweetOfID *uint
	Latitude    *float64
	Longitude   *float64
	PlaceName   string
}

// getVisibleTweet loads a live tweet and enforces the author privacy rule
// for the viewer. Deleted and unknown tweets are indistinguishable.
func (s *TweetService) getVisibleTweet(ctx context.Context, viewerID, tweetID uint) (*models.Tweet, error) {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tweet", tweetID)
		}
		return nil, models.NewInternalError(err)
	}
	if !tweet.User.IsActive {
		return nil, models.NewNotFoundError("Tweet", tweetID)
	}

	visible, err := canViewAuthor(ctx, s.followRepo, viewerID, &tweet.User)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !visible {
		return nil, models.NewForbiddenError("This account is private")
	}
	return tweet, nil
}

// Create validates and stores a tweet, derives its type from the optional
// reply/retweet target, processes hashtags and mentions, and notifies the
// affected users.
func (s *TweetService) Create(ctx context.Context, in CreateTweetInput) (*models.Tweet, error) {
	if err := validation.ValidateTweetContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := activeUser(ctx, s.userRepo, in.UserID)
	if err != nil {
		return nil, err
	}

	var parent, original *models.Tweet
	if in.ReplyToID != nil {
		if parent, err = s.getVisibleTweet(ctx, in.UserID, *in.ReplyToID); err != nil {
			return nil, err
		}
	}
	if in.RetweetOfID != nil {
		if original, err = s.getVisibleTweet(ctx, in.UserID, *in.RetweetOfID); err != nil {
			return nil, err
		}
	}

	tweet := &models.Tweet{
		Content:     in.Content,
		UserID:      in.UserID,
		ReplyToID:   in.ReplyToID,
		RetweetOfID: in.RetweetOfID,
		TweetType:   models.DeriveTweetType(in.ReplyToID, in.RetweetOfID),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		PlaceName:   in.PlaceName,
	}

	if err := s.tweetRepo.Create(ctx, tweet, models.ExtractHashtags(in.Content)); err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.TweetsCreated.WithLabelValues(tweet.TweetType).Inc()

	if err := s.processMentions(ctx, author, tweet); err != nil {
		return nil, err
	}

	if parent != nil {
		if err := s.notifier.Notify(ctx, NotifyInput{
			RecipientID:    parent.UserID,
			ActorID:        in.UserID,
			Type:           models.NotificationTypeReply,
			Title:          "New reply",
			Message:        fmt.Sprintf("@%s replied to your tweet", author.Username),
			RelatedUserID:  &in.UserID,
			RelatedTweetID: &tweet.ID,
		}); err != nil {
			return nil, err
		}
	}
	if original != nil {
		if err := s.notifier.Notify(ctx, NotifyInput{
			RecipientID:    original.UserID,
			ActorID:        in.UserID,
			Type:           models.NotificationTypeRetweet,
			Title:          "New retweet",
			Message:        fmt.Sprintf("@%s retweeted your tweet", author.Username),
			RelatedUserID:  &in.UserID,
			RelatedTweetID: &original.ID,
		}); err != nil {
			return nil, err
		}
	}

	return s.tweetRepo.GetByID(ctx, tweet.ID)
}

// processMentions resolves @handles to active users, records one mention row
// per occurrence and sends one notification per occurrence. Duplicate
// handles are intentionally not collapsed.
func (s *TweetService) processMentions(ctx context.Context, author *models.User, tweet *models.Tweet) error {
	handles := models.ExtractMentions(tweet.Content)
	if len(handles) == 0 {
		return nil
	}

	users, err := s.userRepo.GetActiveByUsernames(ctx, lo.Uniq(handles))
	if err != nil {
		return models.NewInternalError(err)
	}
	byName := lo.KeyBy(users, func(u *models.User) string { return u.Username })

	var mentionedIDs []uint
	for _, handle := range handles {
		mentioned, ok := byName[handle]
		if !ok {
			continue
		}
		mentionedIDs = append(mentionedIDs, mentioned.ID)

		if err := s.notifier.Notify(ctx, NotifyInput{
			RecipientID:    mentioned.ID,
			ActorID:        author.ID,
			Type:           models.NotificationTypeMention,
			Title:          "You were mentioned",
			Message:        fmt.Sprintf("@%s mentioned you in a tweet", author.Username),
			RelatedUserID:  &author.ID,
			RelatedTweetID: &tweet.ID,
		}); err != nil {
			return err
		}
	}

	if err := s.tweetRepo.CreateMentions(ctx, tweet.ID, mentionedIDs); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *TweetService) Get(ctx context.Context, viewerID, tweetID uint) (*models.Tweet, error) {
	return s.getVisibleTweet(ctx, viewerID, tweetID)
}

// Edit changes a tweet's content. Only the author may edit, and only within
// the edit window; hashtag associations are re-derived from the new text.
func (s *TweetService) Edit(ctx context.Context, userID, tweetID uint, content string) (*models.Tweet, error) {
	tweet, err := s.getVisibleTweet(ctx, userID, tweetID)
	if err != nil {
		return nil, err
	}
	if tweet.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own tweets")
	}
	if time.Since(tweet.CreatedAt) > EditWindow {
		return nil, models.NewEditWindowExpiredError()
	}
	if err := validation.ValidateTweetContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	tweet.Content = content
	if err := s.tweetRepo.UpdateContent(ctx, tweet, models.ExtractHashtags(content)); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.tweetRepo.GetByID(ctx, tweetID)
}

// Delete soft-deletes a tweet. The second delete of the same tweet is a
// NotFound because reads exclude deleted rows.
func (s *TweetService) Delete(ctx context.Context, userID, tweetID uint) error {
	tweet, err := s.getVisibleTweet(ctx, userID, tweetID)
	if err != nil {
		return err
	}
	if tweet.UserID != userID {
		return models.NewForbiddenError("You can only delete your own tweets")
	}

	if _, err := s.tweetRepo.SoftDelete(ctx, tweet); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike likes the tweet if the user has not liked it, otherwise
// removes the like. Returns whether the tweet is liked afterwards.
func (s *TweetService) ToggleLike(ctx context.Context, userID, tweetID uint) (bool, error) {
	tweet, err := s.getVisibleTweet(ctx, userID, tweetID)
	if err != nil {
		return false, err
	}

	liked, err := s.tweetRepo.IsLiked(ctx, userID, tweetID)
	if err != nil {
		return false, models.NewInternalError(err)
	}

	if liked {
		if _, err := s.tweetRepo.Unlike(ctx, userID, tweetID); err != nil {
			return false, models.NewInternalError(err)
		}
		return false, nil
	}

	if _, err := s.tweetRepo.Like(ctx, userID, tweetID); err != nil {
		return false, models.NewInternalError(err)
	}

	liker, err := activeUser(ctx, s.userRepo, userID)
	if err != nil {
		return true, nil
	}
	if err := s.notifier.Notify(ctx, NotifyInput{
		RecipientID:    tweet.UserID,
		ActorID:        userID,
		Type:           models.NotificationTypeLike,
		Title:          "New like",
		Message:        fmt.Sprintf("@%s liked your tweet", liker.Username),
		RelatedUserID:  &userID,
		RelatedTweetID: &tweetID,
	}); err != nil {
		return true, err
	}
	return true, nil
}

func (s *TweetService) Replies(ctx context.Context, viewerID, tweetID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	if _, err := s.getVisibleTweet(ctx, viewerID, tweetID); err != nil {
		return nil, 0, err
	}
	return s.tweetRepo.Replies(ctx, tweetID, req)
}

// ListByUser pages a user's tweets, enforcing the privacy rule for the viewer.
func (s *TweetService) ListByUser(ctx context.Context, viewerID, targetID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	target, err := activeUser(ctx, s.userRepo, targetID)
	if err != nil {
		return nil, 0, err
	}
	visible, err := canViewAuthor(ctx, s.followRepo, viewerID, target)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if !visible {
		return nil, 0, models.NewForbiddenError("This account is private")
	}
	return s.tweetRepo.ListByUser(ctx, targetID, req)
}

func (s *TweetService) ListPublic(ctx context.Context, req models.PageRequest) ([]*models.Tweet, int64, error) {
	return s.tweetRepo.ListPublic(ctx, req)
}
