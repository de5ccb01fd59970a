package handlers

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"farmshops/internal/db"
	"farmshops/internal/metrics"
	"farmshops/internal/models"
	"farmshops/internal/moderation"
	"farmshops/internal/notify"
)

// ModerationHandler exposes the photo moderation surface: the pending queue
// and the approve/reject transitions.
type ModerationHandler struct {
	db         *db.DB
	engine     *moderation.Engine
	dispatcher *notify.Dispatcher
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(database *db.DB, engine *moderation.Engine, dispatcher *notify.Dispatcher) *ModerationHandler {
	return &ModerationHandler{db: database, engine: engine, dispatcher: dispatcher}
}

// List handles GET /admin/photos. Without a status filter it returns the
// moderation queue oldest-first; archived and rejected photos stay reachable
// here since records are never deleted.
func (h *ModerationHandler) List(c fiber.Ctx) error {
	status := c.Query("status", models.PhotoPending)
	if !models.ValidStatus(status) {
		return jsonError(c, fiber.StatusBadRequest, "invalid status filter")
	}

	var photos []models.Photo
	var err error
	if status == models.PhotoPending {
		photos, err = h.db.PendingPhotos(c.Context())
	} else {
		photos, err = h.db.PhotosByStatus(c.Context(), status)
	}
	if err != nil {
		log.Printf("Failed to list photos: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to list photos")
	}

	// Ensure non-null arrays in JSON
	if photos == nil {
		photos = []models.Photo{}
	}
	return jsonSuccess(c, fiber.Map{"photos": photos, "total": len(photos)})
}

// Approve handles POST /admin/photos/approve?id=<photoId>.
func (h *ModerationHandler) Approve(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	photoID, err := parsePhotoID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	dec, err := h.engine.Approve(c.Context(), photoID, user.ID)
	if err != nil {
		return transitionError(c, err)
	}

	metrics.RecordDecision("approved")
	for _, evicted := range dec.Evicted {
		metrics.RecordDecision("evicted")
		log.Printf("Photo %s archived to make room on farm %s", evicted, dec.Photo.FarmSlug)
	}

	h.dispatcher.Dispatch(notify.Event{Kind: notify.KindApproved, Photo: *dec.Photo})

	return c.Redirect().To("/admin/photos")
}

// rejectRequest is the expected POST body for a rejection.
type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /admin/photos/reject?id=<photoId>.
func (h *ModerationHandler) Reject(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	photoID, err := parsePhotoID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var req rejectRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if req.Reason == "" {
		// Allow form submissions from the admin UI as well.
		req.Reason = c.FormValue("reason")
	}

	dec, err := h.engine.Reject(c.Context(), photoID, user.ID, req.Reason)
	if err != nil {
		return transitionError(c, err)
	}

	metrics.RecordDecision("rejected")

	h.dispatcher.Dispatch(notify.Event{
		Kind:   notify.KindRejected,
		Photo:  *dec.Photo,
		Reason: dec.Photo.RejectReason,
	})

	return c.Redirect().To("/admin/photos")
}

// parsePhotoID extracts and validates the id query parameter.
func parsePhotoID(c fiber.Ctx) (uuid.UUID, error) {
	idStr := c.Query("id")
	if idStr == "" {
		return uuid.Nil, errors.New("id is required")
	}
	photoID, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid photo id")
	}
	return photoID, nil
}

// transitionError maps engine errors onto HTTP status codes. Store failures
// are safe for the moderator to retry: the transition is atomic, so a retry
// cannot double-apply.
func transitionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, moderation.ErrPhotoNotFound):
		return jsonError(c, fiber.StatusNotFound, "photo not found")
	case errors.Is(err, moderation.ErrPhotoNotPending):
		return jsonError(c, fiber.StatusConflict, "photo has already been moderated")
	case errors.Is(err, moderation.ErrInvalidReason):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("Moderation transition failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to update photo")
	}
}
