package service

import (
	"context"
	"fmt"

	"chirp/internal/models"
	"chirp/internal/repository"
)

type SocialService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	notifier   *NotificationService
}

func NewSocialService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	notifier *NotificationService,
) *SocialService {
	return &SocialService{
		userRepo:   userRepo,
		followRepo: followRepo,
		notifier:   notifier,
	}
}

func (s *SocialService) getActiveUser(ctx context.Context, id uint) (*models.User, error) {
	return activeUser(ctx, s.userRepo, id)
}

// Follow creates the follow edge and notifies the followee.
func (s *SocialService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("You cannot follow yourself")
	}

	follower, err := s.getActiveUser(ctx, followerID)
	if err != nil {
		return err
	}
	if _, err := s.getActiveUser(ctx, followedID); err != nil {
		return err
	}

	created, err := s.followRepo.Follow(ctx, followerID, followedID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !created {
		return models.NewValidationError("You are already following this user")
	}

	return s.notifier.Notify(ctx, NotifyInput{
		RecipientID:   followedID,
		ActorID:       followerID,
		Type:          models.NotificationTypeFollow,
		Title:         "New follower",
		Message:       fmt.Sprintf("@%s started following you", follower.Username),
		RelatedUserID: &followerID,
	})
}

// Unfollow removes the follow edge. Unfollowing someone you do not follow
// is a validation error, mirroring the duplicate-follow case.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	if _, err := s.getActiveUser(ctx, followedID); err != nil {
		return err
	}

	removed, err := s.followRepo.Unfollow(ctx, followerID, followedID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !removed {
		return models.NewValidationError("You are not following this user")
	}
	return nil
}

func (s *SocialService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followedID)
}

func (s *SocialService) Followers(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error) {
	if _, err := s.getActiveUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.followRepo.Followers(ctx, userID, req)
}

func (s *SocialService) Following(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error) {
	if _, err := s.getActiveUser(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.followRepo.Following(ctx, userID, req)
}
