package email

import (
	"context"

	"farmshops/internal/config"
	"farmshops/internal/models"
)

// Notifier sends moderation outcome emails to photo submitters. It satisfies
// the notification dispatcher's Notifier interface; all sends here are
// synchronous, the dispatcher owns the detachment.
type Notifier struct {
	service   *Service
	templates *Templates
}

// NewNotifier creates a new email notifier.
func NewNotifier(cfg *config.Config) *Notifier {
	return &Notifier{
		service:   NewService(cfg),
		templates: NewTemplates(cfg),
	}
}

// PhotoApproved emails the submitter that their photo is live. Photos without
// a recorded author address are skipped.
func (n *Notifier) PhotoApproved(_ context.Context, photo *models.Photo, farmName string) error {
	if !n.service.IsEnabled() || photo.AuthorEmail == "" {
		return nil
	}

	subject, htmlBody, textBody := n.templates.PhotoApproved(photo, farmName)
	return n.service.SendEmail([]string{photo.AuthorEmail}, subject, htmlBody, textBody)
}

// PhotoRejected emails the submitter the rejection reason.
func (n *Notifier) PhotoRejected(_ context.Context, photo *models.Photo, farmName, reason string) error {
	if !n.service.IsEnabled() || photo.AuthorEmail == "" {
		return nil
	}

	subject, htmlBody, textBody := n.templates.PhotoRejected(photo, farmName, reason)
	return n.service.SendEmail([]string{photo.AuthorEmail}, subject, htmlBody, textBody)
}
