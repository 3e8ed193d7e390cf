// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"
	"strconv"

	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parsePage extracts page/per_page query parameters. Non-numeric or
// non-positive values are rejected with a 400; only an oversized per_page
// is clamped. On failure the response is already written and callers
// should return nil.
func parsePage(c *fiber.Ctx) (models.PageRequest, error) {
	page, err := positiveQueryInt(c, "page", 1)
	if err != nil {
		return models.PageRequest{}, err
	}

	perPage, err := positiveQueryInt(c, "per_page", models.DefaultPerPage)
	if err != nil {
		return models.PageRequest{}, err
	}
	if perPage > models.MaxPerPage {
		perPage = models.MaxPerPage
	}

	return models.PageRequest{Page: page, PerPage: perPage}, nil
}

// positiveQueryInt reads a query parameter as a positive integer, writing a
// 400 JSON response when the value is malformed.
func positiveQueryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(name+" must be a positive integer"))
		return 0, errResponseWritten
	}
	return value, nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		label := "ID"
		if param != "id" {
			label = param
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+label))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID from the request locals.
func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

// respondError maps an application error to its conventional HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// pageResponse is the standard envelope for paginated listings.
func pageResponse(c *fiber.Ctx, key string, items interface{}, req models.PageRequest, total int64) error {
	return c.JSON(fiber.Map{
		key:          items,
		"pagination": models.NewPagination(req, total),
	})
}
