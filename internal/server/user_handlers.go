// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	users, total, err := s.userService.Search(c.Context(), q, req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "users", users, req, total)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	viewerID := currentUserID(c)
	isFollowing := false
	if viewerID != 0 && viewerID != id {
		isFollowing, err = s.socialService.IsFollowing(c.Context(), viewerID, id)
		if err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"user":         user,
		"is_following": isFollowing,
	})
}

// GetUserTweets handles GET /api/users/:id/tweets
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	tweets, total, err := s.tweetService.ListByUser(c.Context(), currentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", tweets, req, total)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.socialService.Follow(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Followed"})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.socialService.Unfollow(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed"})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	users, total, err := s.socialService.Followers(c.Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "users", users, req, total)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	users, total, err := s.socialService.Following(c.Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "users", users, req, total)
}
