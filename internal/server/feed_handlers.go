// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetHomeFeed handles GET /api/feed/home
func (s *Server) GetHomeFeed(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	tweets, total, err := s.feedService.Home(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", tweets, req, total)
}

// GetDiscoverFeed handles GET /api/feed/discover
func (s *Server) GetDiscoverFeed(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	tweets, total, err := s.feedService.Discover(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", tweets, req, total)
}

// GetMentionsFeed handles GET /api/feed/mentions
func (s *Server) GetMentionsFeed(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	tweets, total, err := s.feedService.Mentions(c.Context(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", tweets, req, total)
}

// GetHashtagFeed handles GET /api/feed/hashtag/:name
func (s *Server) GetHashtagFeed(c *fiber.Ctx) error {
	req, err := parsePage(c)
	if err != nil {
		return nil
	}
	tweets, total, err := s.feedService.Hashtag(c.Context(), c.Params("name"), req)
	if err != nil {
		return respondError(c, err)
	}
	return pageResponse(c, "tweets", tweets, req, total)
}

// GetTrendingHashtags handles GET /api/feed/trending-hashtags
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	window := c.Query("window", "24h")
	limit := c.QueryInt("limit", 10)

	hashtags, err := s.feedService.TrendingHashtags(c.Context(), window, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"window":   window,
		"hashtags": hashtags,
	})
}
