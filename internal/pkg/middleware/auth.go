package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/identity"
	"github.com/Lloyd3312/brightpost-ai/internal/pkg/usercontext"
)

// RequireIdentity authenticates the request against the identity provider and
// populates the user context. Every failure is a terminal 401; no handler
// behind this middleware runs without a resolved caller.
func RequireIdentity(resolver identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		user, err := resolver.GetUser(c.UserContext(), token)
		if err != nil {
			fiberlog.Debugf("identity resolution failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:          user.ID,
			Email:           user.Email,
			IsAuthenticated: true,
		})
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
