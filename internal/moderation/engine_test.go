package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"farmshops/internal/models"
)

func submitPhoto(t *testing.T, engine *Engine, farmSlug string) *models.Photo {
	t.Helper()
	photo := &models.Photo{
		FarmSlug:    farmSlug,
		URL:         "https://cdn.example.com/" + uuid.NewString() + ".jpg",
		AuthorName:  "Test Author",
		AuthorEmail: "author@example.com",
	}
	if err := engine.Submit(context.Background(), photo); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return photo
}

func TestSubmit(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)

	photo := submitPhoto(t, engine, "sonnenhof")

	if photo.ID == uuid.Nil {
		t.Error("Submit() did not assign an id")
	}
	if photo.Status != models.PhotoPending {
		t.Errorf("status = %q, want %q", photo.Status, models.PhotoPending)
	}
	if photo.Source != models.SourceUser {
		t.Errorf("source = %q, want %q", photo.Source, models.SourceUser)
	}
	if photo.CreatedAt.IsZero() {
		t.Error("Submit() did not set created_at")
	}

	queue := store.Queue()
	if len(queue) != 1 || queue[0] != photo.ID {
		t.Errorf("queue = %v, want [%v]", queue, photo.ID)
	}
}

func TestSubmitQueueOrder(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)

	first := submitPhoto(t, engine, "sonnenhof")
	second := submitPhoto(t, engine, "birkenhof")
	third := submitPhoto(t, engine, "sonnenhof")

	queue := store.Queue()
	want := []uuid.UUID{first.ID, second.ID, third.ID}
	if len(queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(queue), len(want))
	}
	for i := range want {
		if queue[i] != want[i] {
			t.Errorf("queue[%d] = %v, want %v", i, queue[i], want[i])
		}
	}
}

func TestApprove(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)
	moderator := uuid.New()

	photo := submitPhoto(t, engine, "sonnenhof")

	dec, err := engine.Approve(context.Background(), photo.ID, moderator)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if dec.Photo.Status != models.PhotoApproved {
		t.Errorf("status = %q, want %q", dec.Photo.Status, models.PhotoApproved)
	}
	if dec.Photo.ApprovedAt == nil {
		t.Error("approved_at not set")
	}
	if dec.Photo.ModeratedBy == nil || *dec.Photo.ModeratedBy != moderator {
		t.Errorf("moderated_by = %v, want %v", dec.Photo.ModeratedBy, moderator)
	}
	if len(dec.Evicted) != 0 {
		t.Errorf("evicted = %v, want none", dec.Evicted)
	}

	if got := store.Queue(); len(got) != 0 {
		t.Errorf("queue after approve = %v, want empty", got)
	}
	if stored := store.Photo(photo.ID); stored.Status != models.PhotoApproved {
		t.Errorf("stored status = %q, want %q", stored.Status, models.PhotoApproved)
	}
}

func TestApproveNotFound(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)

	_, err := engine.Approve(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("Approve() error = %v, want ErrPhotoNotFound", err)
	}
}

func TestApproveTwice(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)
	moderator := uuid.New()

	photo := submitPhoto(t, engine, "sonnenhof")

	if _, err := engine.Approve(context.Background(), photo.ID, moderator); err != nil {
		t.Fatalf("first Approve() error = %v", err)
	}

	_, err := engine.Approve(context.Background(), photo.ID, moderator)
	if !errors.Is(err, ErrPhotoNotPending) {
		t.Errorf("second Approve() error = %v, want ErrPhotoNotPending", err)
	}

	// The losing decision must not disturb the committed one.
	stored := store.Photo(photo.ID)
	if stored.Status != models.PhotoApproved {
		t.Errorf("status after conflict = %q, want %q", stored.Status, models.PhotoApproved)
	}
}

func TestRejectThenApprove(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)
	moderator := uuid.New()

	photo := submitPhoto(t, engine, "sonnenhof")

	if _, err := engine.Reject(context.Background(), photo.ID, moderator, "blurry"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	_, err := engine.Approve(context.Background(), photo.ID, moderator)
	if !errors.Is(err, ErrPhotoNotPending) {
		t.Errorf("Approve() after reject error = %v, want ErrPhotoNotPending", err)
	}
	if stored := store.Photo(photo.ID); stored.Status != models.PhotoRejected {
		t.Errorf("status = %q, want %q", stored.Status, models.PhotoRejected)
	}
}

func TestReject(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)
	moderator := uuid.New()

	photo := submitPhoto(t, engine, "sonnenhof")

	dec, err := engine.Reject(context.Background(), photo.ID, moderator, "  does not show the farm  ")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	if dec.Photo.Status != models.PhotoRejected {
		t.Errorf("status = %q, want %q", dec.Photo.Status, models.PhotoRejected)
	}
	if dec.Photo.RejectReason != "does not show the farm" {
		t.Errorf("reason = %q, want trimmed reason", dec.Photo.RejectReason)
	}
	if dec.Photo.RejectedAt == nil {
		t.Error("rejected_at not set")
	}

	if got := store.Queue(); len(got) != 0 {
		t.Errorf("queue after reject = %v, want empty", got)
	}
}

func TestRejectInvalidReason(t *testing.T) {
	tests := []struct {
		name   string
		reason string
	}{
		{"empty", ""},
		{"whitespace only", "   \t  "},
		{"too long", strings.Repeat("a", 241)},
		{"too long multibyte", strings.Repeat("ü", 241)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemStore()
			engine := NewEngine(store, 4)

			photo := submitPhoto(t, engine, "sonnenhof")

			_, err := engine.Reject(context.Background(), photo.ID, uuid.New(), tt.reason)
			if !errors.Is(err, ErrInvalidReason) {
				t.Errorf("Reject() error = %v, want ErrInvalidReason", err)
			}

			// A failed rejection must leave the photo pending and queued.
			if stored := store.Photo(photo.ID); stored.Status != models.PhotoPending {
				t.Errorf("status = %q, want %q", stored.Status, models.PhotoPending)
			}
			if queue := store.Queue(); len(queue) != 1 || queue[0] != photo.ID {
				t.Errorf("queue = %v, want [%v]", queue, photo.ID)
			}
		})
	}
}

func TestRejectMultibyteReasonAtLimit(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)

	photo := submitPhoto(t, engine, "sonnenhof")

	// 240 characters, 480 bytes: the limit counts characters.
	reason := strings.Repeat("ü", 240)
	dec, err := engine.Reject(context.Background(), photo.ID, uuid.New(), reason)
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if dec.Photo.RejectReason != reason {
		t.Errorf("reason = %q, want the full 240-character reason", dec.Photo.RejectReason)
	}
}

func TestRejectNotFound(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)

	_, err := engine.Reject(context.Background(), uuid.New(), uuid.New(), "blurry")
	if !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("Reject() error = %v, want ErrPhotoNotFound", err)
	}
}

func TestApproveEvictsOldest(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)
	moderator := uuid.New()
	ctx := context.Background()

	// Fill the farm's approved set to quota.
	var approved []*models.Photo
	for i := 0; i < 4; i++ {
		photo := submitPhoto(t, engine, "sonnenhof")
		if _, err := engine.Approve(ctx, photo.ID, moderator); err != nil {
			t.Fatalf("Approve() #%d error = %v", i, err)
		}
		approved = append(approved, photo)
	}

	fifth := submitPhoto(t, engine, "sonnenhof")
	dec, err := engine.Approve(ctx, fifth.ID, moderator)
	if err != nil {
		t.Fatalf("Approve() over quota error = %v", err)
	}

	if len(dec.Evicted) != 1 || dec.Evicted[0] != approved[0].ID {
		t.Errorf("evicted = %v, want [%v]", dec.Evicted, approved[0].ID)
	}

	oldest := store.Photo(approved[0].ID)
	if oldest.Status != models.PhotoArchived {
		t.Errorf("evicted photo status = %q, want %q", oldest.Status, models.PhotoArchived)
	}
	// Archival keeps the original approval timestamp.
	if oldest.ApprovedAt == nil {
		t.Error("evicted photo lost its approved_at")
	}

	if set := store.ApprovedSet("sonnenhof"); len(set) != 4 {
		t.Errorf("approved set size = %d, want 4", len(set))
	}
}

func TestApproveQuotaPerFarm(t *testing.T) {
	store := NewMemStore()
	engine := NewEngine(store, 4)
	moderator := uuid.New()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		photo := submitPhoto(t, engine, "sonnenhof")
		if _, err := engine.Approve(ctx, photo.ID, moderator); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
	}

	// A different farm's approval must not evict anything.
	other := submitPhoto(t, engine, "birkenhof")
	dec, err := engine.Approve(ctx, other.ID, moderator)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if len(dec.Evicted) != 0 {
		t.Errorf("evicted = %v, want none", dec.Evicted)
	}
	if set := store.ApprovedSet("sonnenhof"); len(set) != 4 {
		t.Errorf("sonnenhof approved set size = %d, want 4", len(set))
	}
}

func TestApproveEvictsToQuotaAfterLoweredLimit(t *testing.T) {
	store := NewMemStore()
	moderator := uuid.New()
	ctx := context.Background()

	wide := NewEngine(store, 4)
	var approved []*models.Photo
	for i := 0; i < 4; i++ {
		photo := submitPhoto(t, wide, "sonnenhof")
		if _, err := wide.Approve(ctx, photo.ID, moderator); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		approved = append(approved, photo)
	}

	// After lowering the quota, a single approval trims the set back down.
	narrow := NewEngine(store, 2)
	next := submitPhoto(t, narrow, "sonnenhof")
	dec, err := narrow.Approve(ctx, next.ID, moderator)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if len(dec.Evicted) != 3 {
		t.Fatalf("evicted %d photos, want 3", len(dec.Evicted))
	}
	for i, id := range []uuid.UUID{approved[0].ID, approved[1].ID, approved[2].ID} {
		if dec.Evicted[i] != id {
			t.Errorf("evicted[%d] = %v, want %v", i, dec.Evicted[i], id)
		}
	}
	if set := store.ApprovedSet("sonnenhof"); len(set) != 2 {
		t.Errorf("approved set size = %d, want 2", len(set))
	}
}

func TestNewEngineDefaultQuota(t *testing.T) {
	engine := NewEngine(NewMemStore(), 0)
	if got := engine.Quota(); got != 4 {
		t.Errorf("Quota() = %d, want 4", got)
	}
}
