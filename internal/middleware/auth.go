package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"farmshops/internal/db"
	"farmshops/internal/models"
)

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	db *db.DB
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(database *db.DB) *AuthMiddleware {
	return &AuthMiddleware{db: database}
}

// RequireAuth ensures the user is authenticated.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	userSub := sess.Get("user_sub")
	if userSub == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := m.db.GetUserBySub(c.Context(), userSub.(string))
	if err != nil {
		sess.Destroy()
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireModerator ensures the authenticated user may moderate photos.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireModerator(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsModerator() {
		return fiber.NewError(fiber.StatusForbidden, "moderator access required")
	}
	return c.Next()
}
