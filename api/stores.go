package api

import (
	"context"
	"sync"

	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/store"
)

// Stores hands out the per-user store pair. Each user gets exactly one
// FileStore and one ShareStore for the lifetime of their session, so the
// single-channel guarantee holds across requests.
type Stores struct {
	gw *gateway.Gateway

	mu     sync.Mutex
	files  map[string]*store.FileStore
	shared map[string]*store.ShareStore
}

func NewStores(gw *gateway.Gateway) *Stores {
	return &Stores{
		gw:     gw,
		files:  make(map[string]*store.FileStore),
		shared: make(map[string]*store.ShareStore),
	}
}

// Files returns the user's file store, priming it on first use
func (s *Stores) Files(ctx context.Context, userID string) (*store.FileStore, error) {
	s.mu.Lock()
	fs, ok := s.files[userID]
	if !ok {
		fs = store.NewFileStore(s.gw)
		s.files[userID] = fs
	}
	s.mu.Unlock()

	if !ok {
		if err := fs.Fetch(ctx, userID); err != nil {
			return nil, err
		}
	}

	return fs, nil
}

// Shared returns the user's sharing store, priming it on first use
func (s *Stores) Shared(ctx context.Context, userID string) (*store.ShareStore, error) {
	s.mu.Lock()
	ss, ok := s.shared[userID]
	if !ok {
		ss = store.NewShareStore(s.gw)
		s.shared[userID] = ss
	}
	s.mu.Unlock()

	if !ok {
		if err := ss.FetchShared(ctx, userID); err != nil {
			return nil, err
		}
	}

	return ss, nil
}

// Drop resets and forgets both stores of a user, closing their realtime
// channels. Called on logout.
func (s *Stores) Drop(userID string) {
	s.mu.Lock()
	fs := s.files[userID]
	ss := s.shared[userID]
	delete(s.files, userID)
	delete(s.shared, userID)
	s.mu.Unlock()

	if fs != nil {
		fs.Reset()
	}
	if ss != nil {
		ss.Reset()
	}
}
