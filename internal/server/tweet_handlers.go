// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTweet handles POST /api/tweets
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	var req struct {
		Content     string   `json:"content"`
		ReplyToID   *uint    `json:"reply_to_id"`
		RetweetOfID *uint    `json:"retweet_of_id"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		PlaceName   string   `json:"place_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tweet, err := s.tweetService.Create(c.Context(), service.CreateTweetInput{
		UserID:      currentUserID(c),
		Content:     req.Content,
		ReplyToID:   req.ReplyToID,
		RetweetOfID: req.RetweetOfID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		PlaceName:   req.PlaceName,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tweet)
}

// GetTweet handles GET /api/tweets/:id
func (s *Server) GetTweet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tweet, err := s.tweetService.Get(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tweet)
}

// UpdateTweet handles PUT /api/tweets/:id
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tweet, err := s.tweetService.Edit(c.Context(), currentUserID(c), id, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tweet)
}

// DeleteTweet handles DELETE /api/tweets/:id
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.tweetService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tweet deleted"})
}

// ToggleLike handles POST /api/tweets/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.tweetService.ToggleLike(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetTweetReplies handles GET /api/tweets/:id/replies
func (s *Server) GetTweetReplies(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	replies, total, err := s.tweetService.Replies(c.Context(), currentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", replies, req, total)
}

// GetPublicTweets handles GET /api/tweets/public
func (s *Server) GetPublicTweets(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	tweets, total, err := s.tweetService.ListPublic(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", tweets, req, total)
}
