package gallery

import (
	"context"
	"sync"
)

// Store persists images in submission order.
type Store interface {
	Add(ctx context.Context, img Image) error
	List(ctx context.Context) ([]Image, error)
	Count(ctx context.Context) (int64, error)
}

// MemoryStore keeps images in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	images []Image
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, img Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	return nil
}

// List returns a copy of the stored images.
func (s *MemoryStore) List(_ context.Context) ([]Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Image, len(s.images))
	copy(out, s.images)
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.images)), nil
}

var _ Store = (*MemoryStore)(nil)
