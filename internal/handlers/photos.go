package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"farmshops/internal/db"
	"farmshops/internal/images"
	"farmshops/internal/models"
	"farmshops/internal/moderation"
	"farmshops/internal/storage"
	"farmshops/internal/validation"
)

// PhotoHandler exposes the public photo surface: submissions into the
// moderation queue and the approved gallery per farm.
type PhotoHandler struct {
	db       *db.DB
	engine   *moderation.Engine
	uploader *storage.Uploader // nil when S3 is not configured
	resolver *images.Resolver
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(database *db.DB, engine *moderation.Engine, uploader *storage.Uploader, resolver *images.Resolver) *PhotoHandler {
	return &PhotoHandler{db: database, engine: engine, uploader: uploader, resolver: resolver}
}

// submitRequest is the POST body for a photo submission.
type submitRequest struct {
	FarmSlug    string `json:"farm_slug"`
	Caption     string `json:"caption"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// Submit handles POST /api/photos: issues a presigned upload URL, creates the
// pending record, and enqueues it for review in one atomic step.
func (h *PhotoHandler) Submit(c fiber.Ctx) error {
	if h.uploader == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "photo uploads are not enabled")
	}

	var req submitRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if !validation.ValidateSlug(req.FarmSlug) {
		return jsonError(c, fiber.StatusBadRequest, "invalid farm slug")
	}
	if !validation.ValidateEmail(req.AuthorEmail) {
		return jsonError(c, fiber.StatusBadRequest, "invalid author email")
	}
	if req.Filename == "" {
		return jsonError(c, fiber.StatusBadRequest, "filename is required")
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	exists, err := h.db.FarmExists(c.Context(), req.FarmSlug)
	if err != nil {
		log.Printf("Failed to look up farm %s: %v", req.FarmSlug, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to look up farm")
	}
	if !exists {
		return jsonError(c, fiber.StatusNotFound, "farm not found")
	}

	photoID := uuid.New()
	key := fmt.Sprintf("photos/%s/%s.%s", req.FarmSlug, photoID,
		photoExtension(req.ContentType, req.Filename))

	uploadURL, err := h.uploader.PresignUpload(c.Context(), key, req.ContentType)
	if err != nil {
		log.Printf("Failed to presign upload for %s: %v", key, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to prepare upload")
	}

	photo := &models.Photo{
		ID:          photoID,
		FarmSlug:    req.FarmSlug,
		URL:         h.uploader.PublicURL(key),
		Caption:     req.Caption,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Source:      models.SourceUser,
	}
	if err := h.engine.Submit(c.Context(), photo); err != nil {
		log.Printf("Failed to create photo record: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to create photo")
	}

	return jsonSuccess(c, fiber.Map{
		"photo_id":   photo.ID,
		"upload_url": uploadURL,
		"expires_in": int(storage.UploadExpiry.Seconds()),
	})
}

// photoExtension derives the object key extension from the declared content
// type, falling back to the submitted filename's extension, then to jpg.
func photoExtension(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	if ext := strings.TrimPrefix(path.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return "jpg"
}

// photoView is an approved photo together with its resolved display URL.
type photoView struct {
	models.Photo
	DisplayURL string `json:"display_url,omitempty"`
}

// FarmPhotos handles GET /api/farms/:slug/photos: the approved gallery in
// source-priority order plus the selected hero image.
func (h *PhotoHandler) FarmPhotos(c fiber.Ctx) error {
	slug := c.Params("slug")
	if !validation.ValidateSlug(slug) {
		return jsonError(c, fiber.StatusBadRequest, "invalid farm slug")
	}

	maxWidth := 800
	if widthStr := c.Query("max_width"); widthStr != "" {
		if parsed, err := strconv.Atoi(widthStr); err == nil && parsed > 0 {
			maxWidth = parsed
		}
	}

	farm, err := h.db.GetFarmBySlug(c.Context(), slug)
	if err != nil {
		if errors.Is(err, db.ErrFarmNotFound) {
			return jsonError(c, fiber.StatusNotFound, "farm not found")
		}
		log.Printf("Failed to load farm %s: %v", slug, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to load farm")
	}

	approved, err := h.db.ApprovedPhotosByFarm(c.Context(), slug)
	if err != nil {
		log.Printf("Failed to load photos for farm %s: %v", slug, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to load photos")
	}

	sorted := images.SortByPriority(approved)
	views := make([]photoView, 0, len(sorted))
	for i := range sorted {
		views = append(views, photoView{
			Photo:      sorted[i],
			DisplayURL: h.resolver.ResolveURL(&sorted[i], maxWidth),
		})
	}

	var hero *photoView
	if heroPhoto := images.HeroImage(approved); heroPhoto != nil {
		hero = &photoView{
			Photo:      *heroPhoto,
			DisplayURL: h.resolver.ResolveURL(heroPhoto, maxWidth),
		}
	}

	return jsonSuccess(c, fiber.Map{
		"farm":   farm,
		"hero":   hero,
		"photos": views,
	})
}
