package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/model"

	"go.uber.org/zap"
)

// ShareStore mutates the sharing list of records and keeps a read-only
// cached view of everything shared with the current user. It holds its own
// realtime channel, independent of the FileStore's.
type ShareStore struct {
	gw *gateway.Gateway

	mu      sync.Mutex
	user    string
	shared  []model.File
	channel gateway.Channel
}

func NewShareStore(gw *gateway.Gateway) *ShareStore {
	return &ShareStore{gw: gw}
}

// ShareFile grants target access to the record. target may be a user ID or
// an email, which gets resolved first. Union semantics: the existing list
// is kept and the new user appended, a duplicate is rejected. Only the
// record's owner may grant access.
func (s *ShareStore) ShareFile(ctx context.Context, fileID, target string) error {
	if fileID == "" || strings.TrimSpace(target) == "" {
		return fmt.Errorf("%w, file id and user are required", ErrValidation)
	}

	user, err := s.currentUser()
	if err != nil {
		return err
	}

	userID := target
	if strings.Contains(target, "@") {
		id, err := s.gw.Rows.UserIDByEmail(ctx, target)
		if err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to resolve user email, %w", err)
		}
		userID = id
	}

	f, err := s.get(ctx, fileID)
	if err != nil {
		return err
	}

	if f.OwnerID != user {
		return ErrNotFound
	}

	if userID == f.OwnerID {
		return fmt.Errorf("%w, cannot share a file with its owner", ErrValidation)
	}

	if f.SharedWith.Contains(userID) {
		return ErrAlreadyShared
	}

	next := append(model.StringSlice{}, f.SharedWith...)
	next = append(next, userID)

	err = s.update(ctx, fileID, map[string]any{
		"shared_with": next,
		"is_shared":   true,
		"updated_at":  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	s.publishCurrent(ctx, fileID)
	return nil
}

// Unshare removes the given users from the sharing list. is_shared drops
// to false exactly when the resulting list is empty. The owner may remove
// anyone; a user on the sharing list may only remove themselves.
func (s *ShareStore) Unshare(ctx context.Context, fileID string, userIDs []string) error {
	if fileID == "" || len(userIDs) == 0 {
		return fmt.Errorf("%w, file id and users are required", ErrValidation)
	}

	user, err := s.currentUser()
	if err != nil {
		return err
	}

	f, err := s.get(ctx, fileID)
	if err != nil {
		return err
	}

	if f.OwnerID != user {
		if len(userIDs) != 1 || userIDs[0] != user || !f.SharedWith.Contains(user) {
			return ErrNotFound
		}
	}

	remove := model.StringSlice(userIDs)
	next := make(model.StringSlice, 0, len(f.SharedWith))
	for _, id := range f.SharedWith {
		if !remove.Contains(id) {
			next = append(next, id)
		}
	}

	err = s.update(ctx, fileID, map[string]any{
		"shared_with": next,
		"is_shared":   len(next) > 0,
		"updated_at":  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	// Removed users must still hear about the revocation
	s.publishCurrent(ctx, fileID, userIDs...)
	return nil
}

// TrashShared soft-deletes a record from a shared-file context, same
// semantics as FileStore.DeleteFile. Allowed for the owner and for anyone
// on the sharing list.
func (s *ShareStore) TrashShared(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w, file id is empty", ErrValidation)
	}

	user, err := s.currentUser()
	if err != nil {
		return err
	}

	f, err := s.get(ctx, fileID)
	if err != nil {
		return err
	}

	if f.OwnerID != user && !f.SharedWith.Contains(user) {
		return ErrNotFound
	}

	err = s.update(ctx, fileID, map[string]any{
		"is_trashed": true,
		"updated_at": time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	s.publishCurrent(ctx, fileID)
	return nil
}

// FetchShared replaces the shared-with-me view from its dedicated query
// and opens this store's channel if none exists yet
func (s *ShareStore) FetchShared(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	files, err := s.gw.Rows.ListSharedWith(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch shared files, %w", err)
	}

	s.mu.Lock()
	s.user = userID
	s.shared = files
	subscribed := s.channel != nil
	s.mu.Unlock()

	if subscribed {
		return nil
	}

	ch, err := s.gw.Feed.Subscribe(ctx, userID, s.apply)
	if err != nil {
		return fmt.Errorf("failed to open realtime channel, %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		ch.Close()
		return nil
	}

	s.channel = ch
	return nil
}

// Shared returns a snapshot of the visible shared-with-me records
func (s *ShareStore) Shared() []model.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.File, 0, len(s.shared))
	for _, f := range s.shared {
		if !f.IsTrashed {
			out = append(out, f)
		}
	}
	return out
}

// Reset closes the channel and clears the view. No-op without a channel.
func (s *ShareStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			zap.L().Warn("Failed to close realtime channel", zap.Error(err))
		}
		s.channel = nil
	}

	s.user = ""
	s.shared = nil
}

func (s *ShareStore) currentUser() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return "", ErrNotAuthenticated
	}
	return s.user, nil
}

func (s *ShareStore) get(ctx context.Context, fileID string) (*model.File, error) {
	f, err := s.gw.Rows.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w, %v", ErrDatabaseUpdate, err)
	}

	return f, nil
}

func (s *ShareStore) update(ctx context.Context, fileID string, patch map[string]any) error {
	err := s.gw.Rows.Update(ctx, fileID, patch)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w, %v", ErrDatabaseUpdate, err)
	}

	return nil
}

func (s *ShareStore) publishCurrent(ctx context.Context, fileID string, notify ...string) {
	f, err := s.gw.Rows.Get(ctx, fileID)
	if err != nil {
		zap.L().Warn("Failed to read back updated record", zap.String("id", fileID), zap.Error(err))
		return
	}

	ev := gateway.Event{Kind: gateway.EventUpdate, File: *f, Notify: notify}
	if err := s.gw.Feed.Publish(context.Background(), ev); err != nil {
		zap.L().Warn("Failed to publish change event", zap.String("id", fileID), zap.Error(err))
	}
}

// apply keeps the shared-with-me view consistent: a record leaves the view
// when the user loses access or it gets trashed, enters it when access is
// granted, and otherwise gets replaced in place
func (s *ShareStore) apply(ev gateway.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mine := ev.File.SharedWith.Contains(s.user)

	switch ev.Kind {
	case gateway.EventDelete:
		s.shared = applyEvent(s.shared, ev)

	case gateway.EventInsert, gateway.EventUpdate:
		if !mine {
			s.shared = applyEvent(s.shared, gateway.Event{Kind: gateway.EventDelete, File: ev.File})
			return
		}

		// Replace in place when known, append on first sight. A grant
		// arrives as an UPDATE on a record this view has never seen.
		s.shared = applyEvent(s.shared, gateway.Event{Kind: gateway.EventUpdate, File: ev.File})
		s.shared = applyEvent(s.shared, gateway.Event{Kind: gateway.EventInsert, File: ev.File})
	}
}
