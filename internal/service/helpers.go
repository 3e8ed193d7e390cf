package service

import (
	"context"
	"errors"

	"chirp/internal/models"
	"chirp/internal/repository"

	"gorm.io/gorm"
)

// activeUser loads a user and hides inactive accounts behind NotFound.
func activeUser(ctx context.Context, users repository.UserRepository, id uint) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	if !user.IsActive {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

// canViewAuthor applies the privacy rule: a private user's content is
// visible only to that user and their confirmed followers.
func canViewAuthor(ctx context.Context, follows repository.FollowRepository, viewerID uint, author *models.User) (bool, error) {
	if !author.IsPrivate || viewerID == author.ID {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	return follows.IsFollowing(ctx, viewerID, author.ID)
}
