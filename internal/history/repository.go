package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Recorder persists or forwards a history record.
type Recorder interface {
	Save(ctx context.Context, rec *Record) error
}

// Repository stores and lists history records.
type Repository interface {
	Recorder

	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]*Record, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for local runs and tests. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*Record
	now     func() time.Time
}

// NewInMemoryRepository creates a new in-memory history repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{now: time.Now}
}

// Save stores a copy of rec. A record whose ID is already stored is ignored.
func (r *InMemoryRepository) Save(_ context.Context, rec *Record) error {
	if err := rec.Prepare(r.now()); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.ID == rec.ID {
			return nil
		}
	}

	cpy := *rec
	r.records = append(r.records, &cpy)
	return nil
}

// List returns copies of the newest records first.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]*Record, error) {
	limit = ClampLimit(limit)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, min(limit, len(r.records)))
	for i := len(r.records) - 1; i >= 0; i-- {
		cpy := *r.records[i]
		out = append(out, &cpy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
