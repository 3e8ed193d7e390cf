// Package middleware provides authentication, logging and rate limiting middleware.
package middleware

import (
	"context"
	"fmt"
	"strings"

	"chirp/internal/auth"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// ClientKey identifies the caller for rate limiting: the authenticated user
// when a valid access token is presented, otherwise the remote address. It
// runs before auth middleware, so it parses the bearer token itself instead
// of relying on locals.
func ClientKey(tm *auth.TokenManager) func(c *fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		if uid, ok := c.Locals("userID").(uint); ok {
			return fmt.Sprintf("user:%d", uid)
		}
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := tm.Parse(tokenString, auth.TokenTypeAccess); err == nil {
				if userID, err := claims.UserID(); err == nil {
					return fmt.Sprintf("user:%d", userID)
				}
			}
		}
		return "ip:" + c.IP()
	}
}

// AuthRequired enforces a valid, non-revoked access token on protected routes.
// On success it stores the user ID and token claims in Fiber locals.
func AuthRequired(tm *auth.TokenManager, bl *auth.Blacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		claims, err := tm.Parse(tokenString, auth.TokenTypeAccess)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		revoked, err := bl.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "token blacklist check failed", "error", err)
		} else if revoked {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		userID, err := claims.UserID()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		c.Locals("userID", userID)
		c.Locals("tokenClaims", claims)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))

		return c.Next()
	}
}

// OptionalAuth resolves the user ID from a bearer token when one is present,
// but lets unauthenticated requests through. Used by routes whose response
// is personalized for logged-in users.
func OptionalAuth(tm *auth.TokenManager, bl *auth.Blacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}

		claims, err := tm.Parse(tokenString, auth.TokenTypeAccess)
		if err != nil {
			return c.Next()
		}
		if revoked, err := bl.IsRevoked(c.UserContext(), claims.ID); err == nil && revoked {
			return c.Next()
		}

		if userID, err := claims.UserID(); err == nil {
			c.Locals("userID", userID)
			c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		}
		return c.Next()
	}
}
