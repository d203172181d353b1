package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu      sync.Mutex
	records map[string][]Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[string][]Record)}
}

func (r *InMemoryRepository) Replace(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.Email] = []Record{rec}
	return nil
}

func (r *InMemoryRepository) FindActive(ctx context.Context, email, codeHash string, now time.Time) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records[email] {
		if subtle.ConstantTimeCompare([]byte(rec.CodeHash), []byte(codeHash)) == 1 && rec.ExpiresAt.After(now) {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteAll(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, email)
	return nil
}
