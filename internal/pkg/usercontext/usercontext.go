package usercontext

import "github.com/gofiber/fiber/v2"

// KeyUserContext is the fiber locals key carrying the resolved identity.
const KeyUserContext = "USER_CONTEXT"

// UserContext represents the authenticated caller for a request.
type UserContext struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// GetUserContext retrieves the user context from fiber context.
// Returns an anonymous context if none is set.
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(KeyUserContext); ctx != nil {
		if uc, ok := ctx.(UserContext); ok {
			return uc
		}
	}
	return UserContext{IsAuthenticated: false}
}

// SetUserContext stores the user context on the fiber context.
func SetUserContext(c *fiber.Ctx, uc UserContext) {
	c.Locals(KeyUserContext, uc)
}

// GetUserID returns the current caller's subject id, or "" if anonymous.
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}
