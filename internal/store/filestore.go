package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileStore is the single source of truth for one user's non-trashed
// records. It mediates all mutations and keeps its cache consistent by
// applying change-feed events, never by mutating the cache directly.
type FileStore struct {
	gw *gateway.Gateway

	mu      sync.Mutex
	owner   string
	files   []model.File
	channel gateway.Channel
}

func NewFileStore(gw *gateway.Gateway) *FileStore {
	return &FileStore{gw: gw}
}

// UploadInput describes one file handed to Upload
type UploadInput struct {
	Name       string
	MimeType   string
	Size       int64
	Body       io.Reader
	ParentID   *string
	DeviceName string
	FileOrigin string
}

// Fetch replaces the cache with the owner's current listing and opens the
// realtime channel if this store doesn't hold one yet. Safe to call
// repeatedly; the cache is left untouched when the listing fails.
func (s *FileStore) Fetch(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	files, err := s.gw.Rows.ListByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch files, %w", err)
	}

	s.mu.Lock()
	s.owner = userID
	s.files = files
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

	// Two concurrent first Fetches may race to here; keep the winner
	if s.channel != nil {
		ch.Close()
		return nil
	}

	s.channel = ch
	return nil
}

// CreateFolder writes a zero-byte placeholder object and then inserts the
// record. The cache picks the folder up from the resulting insert event.
func (s *FileStore) CreateFolder(ctx context.Context, name string, parentID *string) error {
	owner, err := s.currentOwner()
	if err != nil {
		return err
	}

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w, folder name is empty", ErrValidation)
	}

	id := uuid.NewString()
	key := id + "/" + name

	if err := s.gw.Objects.Put(ctx, key, bytes.NewReader(nil), 0, "folder", nil); err != nil {
		return fmt.Errorf("%w, %v", ErrStorageWrite, err)
	}

	now := time.Now().UnixMilli()
	f := model.File{
		ID:         id,
		OwnerID:    owner,
		ParentID:   parentID,
		Name:       name,
		IsFolder:   true,
		ObjectKey:  key,
		FileURL:    s.gw.Objects.PublicURL(key),
		Type:       model.TypeFolder,
		MimeType:   "folder",
		SharedWith: model.StringSlice{},
		Tags:       model.StringSlice{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.insertRecord(ctx, &f); err != nil {
		return err
	}

	s.publish(gateway.Event{Kind: gateway.EventInsert, File: f})
	return nil
}

// Upload runs the same two-phase write as CreateFolder: object first, row
// second. onProgress may be nil; on success it has been called with 100.
func (s *FileStore) Upload(ctx context.Context, in UploadInput, onProgress gateway.ProgressFunc) error {
	owner, err := s.currentOwner()
	if err != nil {
		return err
	}

	if strings.TrimSpace(in.Name) == "" || in.Body == nil {
		return fmt.Errorf("%w, file name and body are required", ErrValidation)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	id := uuid.NewString()
	key := id + "/" + in.Name

	if err := s.gw.Objects.Put(ctx, key, in.Body, in.Size, mimeType, onProgress); err != nil {
		return fmt.Errorf("%w, %v", ErrStorageWrite, err)
	}

	now := time.Now().UnixMilli()
	f := model.File{
		ID:            id,
		OwnerID:       owner,
		ParentID:      in.ParentID,
		Name:          in.Name,
		ObjectKey:     key,
		FileURL:       s.gw.Objects.PublicURL(key),
		Type:          model.TypeOf(mimeType),
		MimeType:      mimeType,
		FileExtension: strings.TrimPrefix(path.Ext(in.Name), "."),
		Size:          in.Size,
		SharedWith:    model.StringSlice{},
		Tags:          model.StringSlice{},
		DeviceName:    in.DeviceName,
		FileOrigin:    in.FileOrigin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.insertRecord(ctx, &f); err != nil {
		return err
	}

	s.publish(gateway.Event{Kind: gateway.EventInsert, File: f})
	return nil
}

// UpdateFile applies a partial patch to mutable fields and refreshes
// updated_at
func (s *FileStore) UpdateFile(ctx context.Context, fileID string, patch map[string]any) error {
	if fileID == "" || len(patch) == 0 {
		return fmt.Errorf("%w, nothing to update", ErrValidation)
	}

	if _, err := s.getOwned(ctx, fileID); err != nil {
		return err
	}

	p := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		p[k] = v
	}
	p["updated_at"] = time.Now().UnixMilli()

	if err := s.updateRecord(ctx, fileID, p); err != nil {
		return err
	}

	s.publishCurrent(ctx, fileID)
	return nil
}

// DeleteFile soft-deletes the record. The row survives for recovery; the
// cache drops it once the update event lands and listings re-derive
// visibility from is_trashed.
func (s *FileStore) DeleteFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w, file id is empty", ErrValidation)
	}

	if _, err := s.getOwned(ctx, fileID); err != nil {
		return err
	}

	err := s.updateRecord(ctx, fileID, map[string]any{
		"is_trashed": true,
		"updated_at": time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	s.publishCurrent(ctx, fileID)
	return nil
}

// ShareWithUsers overwrites the sharing list with exactly userIDs. This is
// the bulk "share with these people" path; ShareStore.ShareFile holds the
// incremental union path. The owner is silently dropped from the set.
func (s *FileStore) ShareWithUsers(ctx context.Context, fileID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return fmt.Errorf("%w, no users to share with", ErrValidation)
	}

	f, err := s.getOwned(ctx, fileID)
	if err != nil {
		return err
	}

	next := make(model.StringSlice, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" || id == f.OwnerID || next.Contains(id) {
			continue
		}
		next = append(next, id)
	}

	if len(next) == 0 {
		return fmt.Errorf("%w, no users to share with", ErrValidation)
	}

	err = s.updateRecord(ctx, fileID, map[string]any{
		"shared_with": next,
		"is_shared":   true,
		"updated_at":  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}

	// Anyone the overwrite dropped from the previous list must still hear
	// about losing access
	removed := make([]string, 0, len(f.SharedWith))
	for _, id := range f.SharedWith {
		if !next.Contains(id) {
			removed = append(removed, id)
		}
	}

	s.publishCurrent(ctx, fileID, removed...)
	return nil
}

// Files returns a snapshot of the full cache, trashed records included
func (s *FileStore) Files() []model.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.File, len(s.files))
	copy(out, s.files)
	return out
}

// Visible returns the records a listing should show
func (s *FileStore) Visible() []model.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.File, 0, len(s.files))
	for _, f := range s.files {
		if !f.IsTrashed {
			out = append(out, f)
		}
	}
	return out
}

// Reset tears down the realtime channel and clears the cache, making the
// store eligible to subscribe again for a different user. No-op when no
// channel exists.
func (s *FileStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			zap.L().Warn("Failed to close realtime channel", zap.Error(err))
		}
		s.channel = nil
	}

	s.owner = ""
	s.files = nil
}

func (s *FileStore) currentOwner() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == "" {
		return "", ErrNotAuthenticated
	}
	return s.owner, nil
}

// getOwned loads the record and verifies the current user owns it. A
// record owned by someone else reads as not found so mutations can't
// probe for foreign IDs.
func (s *FileStore) getOwned(ctx context.Context, fileID string) (*model.File, error) {
	owner, err := s.currentOwner()
	if err != nil {
		return nil, err
	}

	f, err := s.gw.Rows.Get(ctx, fileID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w, %v", ErrDatabaseUpdate, err)
	}

	if f.OwnerID != owner {
		return nil, ErrNotFound
	}

	return f, nil
}

// insertRecord inserts the row and compensates the already-written object
// when the insert fails, so a failed create leaves no orphan behind
func (s *FileStore) insertRecord(ctx context.Context, f *model.File) error {
	err := s.gw.Rows.Insert(ctx, f)
	if err == nil {
		return nil
	}

	if delErr := s.gw.Objects.Delete(context.WithoutCancel(ctx), f.ObjectKey); delErr != nil {
		zap.L().Error("Failed to clean up object after insert failure",
			zap.String("key", f.ObjectKey),
			zap.Error(delErr))
	} else {
		zap.L().Debug("Cleaned up object after insert failure", zap.String("key", f.ObjectKey))
	}

	return fmt.Errorf("%w, %v", ErrDatabaseInsert, err)
}

func (s *FileStore) updateRecord(ctx context.Context, fileID string, patch map[string]any) error {
	err := s.gw.Rows.Update(ctx, fileID, patch)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w, %v", ErrDatabaseUpdate, err)
	}

	return nil
}

// publishCurrent re-reads the row and publishes it as an update event.
// The feed is the one path that mutates caches, ours included.
func (s *FileStore) publishCurrent(ctx context.Context, fileID string, notify ...string) {
	f, err := s.gw.Rows.Get(ctx, fileID)
	if err != nil {
		zap.L().Warn("Failed to read back updated record", zap.String("id", fileID), zap.Error(err))
		return
	}

	s.publish(gateway.Event{Kind: gateway.EventUpdate, File: *f, Notify: notify})
}

// publish is best effort: a lost event leaves the cache stale until the
// next Fetch, it never fails the mutation that already committed
func (s *FileStore) publish(ev gateway.Event) {
	if err := s.gw.Feed.Publish(context.Background(), ev); err != nil {
		zap.L().Warn("Failed to publish change event",
			zap.String("id", ev.File.ID),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err))
	}
}

// apply runs on the feed goroutine for every delivered event
func (s *FileStore) apply(ev gateway.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = applyEvent(s.files, ev)
}
