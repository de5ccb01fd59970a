package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"farmshops/internal/models"
	"farmshops/internal/moderation"
	"farmshops/internal/testutil"
)

func submitPhoto(t *testing.T, engine *moderation.Engine, farmSlug string) *models.Photo {
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

func TestPhotoLifecycle(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	testutil.CreateTestFarm(t, database, "sonnenhof", "Sonnenhof Bio")
	moderatorID := testutil.CreateTestUser(t, database, "sub-mod", "mod@example.com", models.RoleModerator)

	engine := moderation.NewEngine(database, 4)

	first := submitPhoto(t, engine, "sonnenhof")
	second := submitPhoto(t, engine, "sonnenhof")

	// The queue serves oldest submissions first.
	pending, err := database.PendingPhotos(ctx)
	if err != nil {
		t.Fatalf("PendingPhotos() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Errorf("queue order = [%v %v], want [%v %v]", pending[0].ID, pending[1].ID, first.ID, second.ID)
	}

	if _, err := engine.Approve(ctx, first.ID, moderatorID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	stored, err := database.GetPhotoByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetPhotoByID() error = %v", err)
	}
	if stored.Status != models.PhotoApproved {
		t.Errorf("status = %q, want %q", stored.Status, models.PhotoApproved)
	}
	if stored.ApprovedAt == nil {
		t.Error("approved_at not set")
	}
	if stored.ModeratedBy == nil || *stored.ModeratedBy != moderatorID {
		t.Errorf("moderated_by = %v, want %v", stored.ModeratedBy, moderatorID)
	}

	// The approved photo left the queue.
	pending, err = database.PendingPhotos(ctx)
	if err != nil {
		t.Fatalf("PendingPhotos() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Errorf("pending after approve = %v", pending)
	}

	// A second decision on the same photo loses.
	if _, err := engine.Reject(ctx, first.ID, moderatorID, "changed my mind"); !errors.Is(err, moderation.ErrPhotoNotPending) {
		t.Errorf("Reject() after approve error = %v, want ErrPhotoNotPending", err)
	}

	if _, err := engine.Reject(ctx, second.ID, moderatorID, "blurry"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	stored, err = database.GetPhotoByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetPhotoByID() error = %v", err)
	}
	if stored.Status != models.PhotoRejected || stored.RejectReason != "blurry" {
		t.Errorf("rejected photo = %q / %q", stored.Status, stored.RejectReason)
	}
}

func TestApproveEviction(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	testutil.CreateTestFarm(t, database, "birkenhof", "Birkenhof")
	moderatorID := testutil.CreateTestUser(t, database, "sub-mod-2", "mod2@example.com", models.RoleModerator)

	engine := moderation.NewEngine(database, 4)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		photo := submitPhoto(t, engine, "birkenhof")
		ids = append(ids, photo.ID)
	}

	for i, id := range ids[:4] {
		if _, err := engine.Approve(ctx, id, moderatorID); err != nil {
			t.Fatalf("Approve() #%d error = %v", i, err)
		}
	}

	dec, err := engine.Approve(ctx, ids[4], moderatorID)
	if err != nil {
		t.Fatalf("Approve() over quota error = %v", err)
	}
	if len(dec.Evicted) != 1 || dec.Evicted[0] != ids[0] {
		t.Errorf("evicted = %v, want [%v]", dec.Evicted, ids[0])
	}

	evicted, err := database.GetPhotoByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetPhotoByID() error = %v", err)
	}
	if evicted.Status != models.PhotoArchived {
		t.Errorf("evicted status = %q, want %q", evicted.Status, models.PhotoArchived)
	}
	if evicted.ApprovedAt == nil {
		t.Error("evicted photo lost its approved_at")
	}

	approved, err := database.ApprovedPhotosByFarm(ctx, "birkenhof")
	if err != nil {
		t.Fatalf("ApprovedPhotosByFarm() error = %v", err)
	}
	if len(approved) != 4 {
		t.Fatalf("approved set size = %d, want 4", len(approved))
	}
	// Oldest approval first.
	for i, want := range ids[1:] {
		if approved[i].ID != want {
			t.Errorf("approved[%d] = %v, want %v", i, approved[i].ID, want)
		}
	}
}

func TestConcurrentApprovalsHoldQuota(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	testutil.CreateTestFarm(t, database, "lindenhof", "Lindenhof")
	moderatorID := testutil.CreateTestUser(t, database, "sub-mod-4", "mod4@example.com", models.RoleModerator)

	engine := moderation.NewEngine(database, 4)

	// Fill the farm's approved set to quota.
	for i := 0; i < 4; i++ {
		photo := submitPhoto(t, engine, "lindenhof")
		if _, err := engine.Approve(ctx, photo.ID, moderatorID); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
	}

	// Two racing approvals on different photos of the same farm. Each must
	// see the other's committed approval when counting the set, so each
	// evicts one member and the set never exceeds quota.
	first := submitPhoto(t, engine, "lindenhof")
	second := submitPhoto(t, engine, "lindenhof")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = engine.Approve(ctx, id, moderatorID)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent Approve() #%d error = %v", i, err)
		}
	}

	approved, err := database.ApprovedPhotosByFarm(ctx, "lindenhof")
	if err != nil {
		t.Fatalf("ApprovedPhotosByFarm() error = %v", err)
	}
	if len(approved) != 4 {
		t.Errorf("approved set size = %d, want 4", len(approved))
	}

	counts, err := database.CountPhotosByStatus(ctx)
	if err != nil {
		t.Fatalf("CountPhotosByStatus() error = %v", err)
	}
	if counts[models.PhotoArchived] != 2 {
		t.Errorf("archived count = %d, want 2", counts[models.PhotoArchived])
	}
}

func TestGetPhotoByIDNotFound(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	_, err := database.GetPhotoByID(context.Background(), uuid.New())
	if !errors.Is(err, moderation.ErrPhotoNotFound) {
		t.Errorf("GetPhotoByID() error = %v, want ErrPhotoNotFound", err)
	}
}

func TestCountPhotosByStatus(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	testutil.CreateTestFarm(t, database, "muehlenhof", "Mühlenhof")
	moderatorID := testutil.CreateTestUser(t, database, "sub-mod-3", "mod3@example.com", models.RoleModerator)

	engine := moderation.NewEngine(database, 4)
	a := submitPhoto(t, engine, "muehlenhof")
	submitPhoto(t, engine, "muehlenhof")

	if _, err := engine.Approve(ctx, a.ID, moderatorID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	counts, err := database.CountPhotosByStatus(ctx)
	if err != nil {
		t.Fatalf("CountPhotosByStatus() error = %v", err)
	}
	if counts[models.PhotoPending] != 1 {
		t.Errorf("pending count = %d, want 1", counts[models.PhotoPending])
	}
	if counts[models.PhotoApproved] != 1 {
		t.Errorf("approved count = %d, want 1", counts[models.PhotoApproved])
	}
}
