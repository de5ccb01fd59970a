package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"farmshops/internal/db"
	"farmshops/internal/handlers"
	"farmshops/internal/images"
	"farmshops/internal/middleware"
	"farmshops/internal/moderation"
	"farmshops/internal/notify"
	"farmshops/internal/storage"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(
	ctx context.Context,
	database *db.DB,
	engine *moderation.Engine,
	dispatcher *notify.Dispatcher,
	uploader *storage.Uploader,
	resolver *images.Resolver,
) error {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database)

	// Initialize handlers
	moderationHandler := handlers.NewModerationHandler(database, engine, dispatcher)
	photoHandler := handlers.NewPhotoHandler(database, engine, uploader, resolver)
	healthHandler := handlers.NewHealthHandler(database)
	userHandler := handlers.NewUserHandler(database)

	// Auth routes - OIDC is required for the moderation surface
	if s.Cfg.OIDCIssuer == "" {
		log.Fatal("OIDC_ISSUER is required. Moderators must be authenticated.")
	}

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
	if err != nil {
		return err
	}

	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)

	// Public routes
	s.App.Post("/api/photos", photoHandler.Submit)
	s.App.Get("/api/farms/:slug/photos", photoHandler.FarmPhotos)

	// Moderation routes (moderators only)
	s.App.Get("/admin/photos", authMiddleware.RequireAuth, authMiddleware.RequireModerator, moderationHandler.List)
	s.App.Post("/admin/photos/approve", authMiddleware.RequireAuth, authMiddleware.RequireModerator, moderationHandler.Approve)
	s.App.Post("/admin/photos/reject", authMiddleware.RequireAuth, authMiddleware.RequireModerator, moderationHandler.Reject)

	// Admin routes (admin only)
	s.App.Post("/admin/users/:id/role", authMiddleware.RequireAuth, userHandler.UpdateRole)

	// Operational endpoints
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return nil
}
