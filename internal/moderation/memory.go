package moderation

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"farmshops/internal/models"
)

// MemStore is an in-memory Store mirroring the ordered-list/hash/set shape of
// the production store. A single mutex makes every Transact call an atomic
// batch, which is what engine tests and local development need.
type MemStore struct {
	mu      sync.Mutex
	photos  map[uuid.UUID]*models.Photo
	queue   []uuid.UUID
	seq     map[uuid.UUID]int // insertion order, for eviction tie-breaks
	nextSeq int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		photos: make(map[uuid.UUID]*models.Photo),
		seq:    make(map[uuid.UUID]int),
	}
}

// Transact runs fn under the store lock. An error from fn discards nothing:
// callers are expected to only mutate through the Tx, and the engine performs
// all validation before its first mutation, so a failed transition leaves the
// store untouched.
func (m *MemStore) Transact(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Work on a copy so an aborted transition rolls back.
	shadow := m.snapshot()
	if err := fn(shadow); err != nil {
		return err
	}
	m.photos = shadow.photos
	m.queue = shadow.queue
	m.seq = shadow.seq
	m.nextSeq = shadow.nextSeq
	return nil
}

func (m *MemStore) snapshot() *memTx {
	photos := make(map[uuid.UUID]*models.Photo, len(m.photos))
	for id, p := range m.photos {
		cp := *p
		photos[id] = &cp
	}
	seq := make(map[uuid.UUID]int, len(m.seq))
	for id, n := range m.seq {
		seq[id] = n
	}
	return &memTx{
		photos:  photos,
		queue:   append([]uuid.UUID(nil), m.queue...),
		seq:     seq,
		nextSeq: m.nextSeq,
	}
}

// Photo returns a copy of the stored record, or nil if absent.
func (m *MemStore) Photo(id uuid.UUID) *models.Photo {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// Queue returns the pending photo ids oldest-first.
func (m *MemStore) Queue() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uuid.UUID(nil), m.queue...)
}

// ApprovedSet returns the ids of a farm's approved photos.
func (m *MemStore) ApprovedSet(farmSlug string) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, p := range m.photos {
		if p.FarmSlug == farmSlug && p.Status == models.PhotoApproved {
			ids = append(ids, id)
		}
	}
	return ids
}

type memTx struct {
	photos  map[uuid.UUID]*models.Photo
	queue   []uuid.UUID
	seq     map[uuid.UUID]int
	nextSeq int
}

func (t *memTx) PhotoForUpdate(_ context.Context, id uuid.UUID) (*models.Photo, error) {
	p, ok := t.photos[id]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) MergePhoto(_ context.Context, id uuid.UUID, update PhotoUpdate) error {
	p, ok := t.photos[id]
	if !ok {
		return ErrPhotoNotFound
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.ApprovedAt != nil {
		p.ApprovedAt = update.ApprovedAt
	}
	if update.RejectedAt != nil {
		p.RejectedAt = update.RejectedAt
	}
	if update.RejectReason != nil {
		p.RejectReason = *update.RejectReason
	}
	if update.ModeratedBy != nil {
		p.ModeratedBy = update.ModeratedBy
	}
	return nil
}

func (t *memTx) InsertPhoto(_ context.Context, photo *models.Photo) error {
	cp := *photo
	t.photos[photo.ID] = &cp
	t.seq[photo.ID] = t.nextSeq
	t.nextSeq++
	return nil
}

func (t *memTx) Enqueue(_ context.Context, id uuid.UUID) error {
	t.queue = append(t.queue, id)
	return nil
}

func (t *memTx) RemoveFromQueue(_ context.Context, id uuid.UUID) error {
	for i, qid := range t.queue {
		if qid == id {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)
			break
		}
	}
	return nil
}

func (t *memTx) ApprovedPhotos(_ context.Context, farmSlug string) ([]models.Photo, error) {
	var approved []models.Photo
	for _, p := range t.photos {
		if p.FarmSlug == farmSlug && p.Status == models.PhotoApproved {
			approved = append(approved, *p)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		a, b := approved[i], approved[j]
		switch {
		case a.ApprovedAt == nil || b.ApprovedAt == nil:
			return t.seq[a.ID] < t.seq[b.ID]
		case a.ApprovedAt.Equal(*b.ApprovedAt):
			return t.seq[a.ID] < t.seq[b.ID]
		default:
			return a.ApprovedAt.Before(*b.ApprovedAt)
		}
	})
	return approved, nil
}
