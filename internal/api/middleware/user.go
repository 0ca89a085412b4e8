package middleware

import "github.com/gofiber/fiber/v2"

// UserIDKey is the locals key carrying the authenticated user id.
const UserIDKey = "userID"

// RequireUser extracts the user identity set by the fronting session
// layer. Session issuance itself is not this service's concern.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID reads the user id stored by RequireUser.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}
