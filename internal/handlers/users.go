package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"farmshops/internal/db"
	"farmshops/internal/models"
)

// UserHandler handles admin user management.
type UserHandler struct {
	db *db.DB
}

// NewUserHandler creates a new user handler.
func NewUserHandler(database *db.DB) *UserHandler {
	return &UserHandler{db: database}
}

// UpdateRole handles POST /admin/users/:id/role. Admin only.
func (h *UserHandler) UpdateRole(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsAdmin() {
		return jsonError(c, fiber.StatusForbidden, "admin access required")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	switch req.Role {
	case models.RoleUser, models.RoleModerator, models.RoleAdmin:
	default:
		return jsonError(c, fiber.StatusBadRequest, "invalid role")
	}

	if err := h.db.UpdateUserRole(c.Context(), userID, req.Role); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return jsonError(c, fiber.StatusNotFound, "user not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to update role")
	}

	return jsonSuccess(c, fiber.Map{"user_id": userID, "role": req.Role})
}
