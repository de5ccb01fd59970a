// Package notify decouples moderation transitions from their email side
// effects. Events are handed to a buffered channel and processed by a
// background worker; nothing here can block or fail the request that produced
// the event.
package notify

import (
	"context"
	"log"
	"log/slog"
	"time"

	"farmshops/internal/models"
)

// Event kinds.
const (
	KindApproved = "approved"
	KindRejected = "rejected"
)

// Event describes a completed moderation transition.
type Event struct {
	Kind   string
	Photo  models.Photo
	Reason string // rejection reason, empty for approvals
}

// FarmNameLookup resolves a farm slug to its display name.
type FarmNameLookup interface {
	FarmDisplayName(ctx context.Context, slug string) (string, error)
}

// Notifier delivers moderation outcome messages to submitters.
type Notifier interface {
	PhotoApproved(ctx context.Context, photo *models.Photo, farmName string) error
	PhotoRejected(ctx context.Context, photo *models.Photo, farmName, reason string) error
}

// Dispatcher is the fire-and-forget boundary between the transition engine
// and outbound email.
type Dispatcher struct {
	events   chan Event
	farms    FarmNameLookup
	notifier Notifier
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher with the given event buffer size.
func NewDispatcher(farms FarmNameLookup, notifier Notifier, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		events:   make(chan Event, buffer),
		farms:    farms,
		notifier: notifier,
		timeout:  30 * time.Second,
	}
}

// Dispatch hands an event to the background worker. Never blocks: when the
// buffer is full the event is dropped with a log line, since notifications
// are best-effort.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.events <- ev:
	default:
		slog.Warn("notification buffer full, dropping event",
			"kind", ev.Kind, "photo_id", ev.Photo.ID)
	}
}

// Start runs the worker loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	log.Println("Notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Notification dispatcher stopped")
			return
		case ev := <-d.events:
			d.deliver(ctx, ev)
		}
	}
}

// deliver sends one notification. Failures are logged and swallowed; they can
// never undo or surface in the transition that produced the event.
func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	if ev.Photo.AuthorEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	farmName, err := d.farms.FarmDisplayName(ctx, ev.Photo.FarmSlug)
	if err != nil || farmName == "" {
		// The slug is still meaningful to the recipient.
		farmName = ev.Photo.FarmSlug
	}

	switch ev.Kind {
	case KindApproved:
		err = d.notifier.PhotoApproved(ctx, &ev.Photo, farmName)
	case KindRejected:
		err = d.notifier.PhotoRejected(ctx, &ev.Photo, farmName, ev.Reason)
	default:
		slog.Warn("unknown notification kind", "kind", ev.Kind)
		return
	}

	if err != nil {
		slog.Error("failed to send moderation notification",
			"kind", ev.Kind, "photo_id", ev.Photo.ID, "error", err)
	}
}
