package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/model"
	"skyvault/drive-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFile(rows *fakeRows, id, owner, name string) model.File {
	f := model.File{
		ID:         id,
		OwnerID:    owner,
		Name:       name,
		Type:       model.TypeOther,
		SharedWith: model.StringSlice{},
		Tags:       model.StringSlice{},
		CreatedAt:  1000,
		UpdatedAt:  1000,
	}
	rows.rows[id] = f
	return f
}

func TestFetchRequiresUser(t *testing.T) {
	gw, _, _, _ := newFakeGateway()
	s := store.NewFileStore(gw)

	err := s.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, store.ErrNotAuthenticated)
}

func TestFetchOpensExactlyOneChannel(t *testing.T) {
	gw, rows, _, feed := newFakeGateway()
	seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)

	require.NoError(t, s.Fetch(context.Background(), "u1"))
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	assert.Equal(t, 1, feed.subscriptions())
	assert.Len(t, s.Visible(), 1)
}

func TestFetchFailureLeavesCacheUntouched(t *testing.T) {
	gw, rows, _, _ := newFakeGateway()
	seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	rows.failList = errors.New("connection reset")
	err := s.Fetch(context.Background(), "u1")
	require.Error(t, err)

	assert.Len(t, s.Visible(), 1)
}

func TestCreateFolderThenInsertEvent(t *testing.T) {
	gw, _, objects, feed := newFakeGateway()
	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	require.NoError(t, s.CreateFolder(context.Background(), "Reports", nil))

	// Nothing shows up before the authoritative event arrives
	assert.Empty(t, s.Visible())
	require.Len(t, feed.published, 1)
	assert.Equal(t, gateway.EventInsert, feed.published[0].Kind)

	feed.EmitPublished(0)

	files := s.Visible()
	require.Len(t, files, 1)
	assert.Equal(t, "Reports", files[0].Name)
	assert.True(t, files[0].IsFolder)
	assert.Equal(t, int64(0), files[0].Size)
	assert.Equal(t, "u1", files[0].OwnerID)
	assert.Equal(t, model.TypeFolder, files[0].Type)
	assert.Equal(t, "folder", files[0].MimeType)

	// Placeholder object was written under <id>/<name>
	require.Len(t, objects.keys, 1)
	assert.True(t, strings.HasSuffix(objects.keys[0], "/Reports"))
}

func TestInsertEventIsIdempotent(t *testing.T) {
	gw, _, _, feed := newFakeGateway()
	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	ev := gateway.Event{
		Kind: gateway.EventInsert,
		File: model.File{ID: "f1", OwnerID: "u1", Name: "a.txt"},
	}
	feed.Emit(ev)
	feed.Emit(ev)

	assert.Len(t, s.Visible(), 1)
}

func TestUpdateEventForUnknownIDIsDropped(t *testing.T) {
	gw, _, _, feed := newFakeGateway()
	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	feed.Emit(gateway.Event{
		Kind: gateway.EventUpdate,
		File: model.File{ID: "ghost", OwnerID: "u1"},
	})

	assert.Empty(t, s.Visible())
}

func TestDeleteEventRemovesRecord(t *testing.T) {
	gw, rows, _, feed := newFakeGateway()
	f := seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	feed.Emit(gateway.Event{Kind: gateway.EventDelete, File: f})
	feed.Emit(gateway.Event{Kind: gateway.EventDelete, File: f})

	assert.Empty(t, s.Visible())
}

func TestSoftDeleteExcludesFromListingButKeepsRow(t *testing.T) {
	gw, rows, _, feed := newFakeGateway()
	seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	require.NoError(t, s.DeleteFile(context.Background(), "f1"))

	// The cache only moves once the update event lands
	assert.Len(t, s.Visible(), 1)

	require.Len(t, feed.published, 1)
	feed.EmitPublished(0)

	assert.Empty(t, s.Visible())

	// Full cache and the remote row both still hold the record
	require.Len(t, s.Files(), 1)
	assert.True(t, s.Files()[0].IsTrashed)
	assert.True(t, rows.get("f1").IsTrashed)
}

func TestUploadRecordsMetadataAndFinishesProgress(t *testing.T) {
	gw, rows, _, feed := newFakeGateway()
	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	var pcts []float64
	in := store.UploadInput{
		Name:     "cat.png",
		MimeType: "image/png",
		Size:     2048,
		Body:     strings.NewReader("not really a png"),
	}

	err := s.Upload(context.Background(), in, func(pct float64) {
		pcts = append(pcts, pct)
	})
	require.NoError(t, err)

	require.NotEmpty(t, pcts)
	last := 0.0
	for _, pct := range pcts {
		assert.GreaterOrEqual(t, pct, last)
		last = pct
	}
	assert.Equal(t, 100.0, last)

	require.Len(t, feed.published, 1)
	f := rows.get(feed.published[0].File.ID)
	assert.Equal(t, "cat.png", f.Name)
	assert.Equal(t, model.TypeImage, f.Type)
	assert.Equal(t, "png", f.FileExtension)
	assert.Equal(t, int64(2048), f.Size)
	assert.False(t, f.IsFolder)
	assert.Equal(t, "u1", f.OwnerID)
}

func TestUploadStorageFailure(t *testing.T) {
	gw, rows, objects, feed := newFakeGateway()
	objects.failPut = errors.New("bucket unreachable")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	in := store.UploadInput{Name: "cat.png", MimeType: "image/png", Size: 1, Body: strings.NewReader("x")}
	err := s.Upload(context.Background(), in, nil)

	assert.ErrorIs(t, err, store.ErrStorageWrite)
	assert.Empty(t, rows.rows)
	assert.Empty(t, feed.published)
}

func TestCreateFolderInsertFailureCompensatesObject(t *testing.T) {
	gw, rows, objects, feed := newFakeGateway()
	rows.failInsert = errors.New("unique constraint")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	err := s.CreateFolder(context.Background(), "Reports", nil)

	assert.ErrorIs(t, err, store.ErrDatabaseInsert)
	require.Len(t, objects.deleted, 1)
	assert.Equal(t, objects.keys[0], objects.deleted[0])
	assert.Empty(t, feed.published)
}

func TestShareWithUsersOverwritesAndHoldsInvariant(t *testing.T) {
	gw, rows, _, feed := newFakeGateway()
	f := seedFile(rows, "f1", "u1", "a.txt")
	f.SharedWith = model.StringSlice{"u9"}
	f.IsShared = true
	rows.rows["f1"] = f

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	// Owner and duplicates get filtered, the rest replaces the old list
	err := s.ShareWithUsers(context.Background(), "f1", []string{"u2", "u1", "u3", "u2"})
	require.NoError(t, err)

	got := rows.get("f1")
	assert.Equal(t, model.StringSlice{"u2", "u3"}, got.SharedWith)
	assert.True(t, got.IsShared)
	assert.NotContains(t, got.SharedWith, got.OwnerID)
	assert.Equal(t, got.IsShared, len(got.SharedWith) > 0)

	require.Len(t, feed.published, 1)
	assert.Equal(t, gateway.EventUpdate, feed.published[0].Kind)
	assert.Contains(t, feed.published[0].Notify, "u9")
}

func TestShareWithUsersRejectsEmpty(t *testing.T) {
	gw, rows, _, _ := newFakeGateway()
	seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	assert.ErrorIs(t, s.ShareWithUsers(context.Background(), "f1", nil), store.ErrValidation)

	// Only the owner in the list resolves to an empty set
	assert.ErrorIs(t, s.ShareWithUsers(context.Background(), "f1", []string{"u1"}), store.ErrValidation)
}

func TestUpdateFileNotFound(t *testing.T) {
	gw, _, _, _ := newFakeGateway()
	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	err := s.UpdateFile(context.Background(), "ghost", map[string]any{"name": "b.txt"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResetClosesChannelAndAllowsResubscribe(t *testing.T) {
	gw, _, _, feed := newFakeGateway()
	s := store.NewFileStore(gw)

	// Reset with no channel is a no-op
	s.Reset()

	require.NoError(t, s.Fetch(context.Background(), "u1"))
	require.Equal(t, 1, feed.subscriptions())

	s.Reset()
	assert.True(t, feed.channels[0].closed)
	assert.Empty(t, s.Files())

	// Mutations require a fresh user context now
	assert.ErrorIs(t, s.CreateFolder(context.Background(), "x", nil), store.ErrNotAuthenticated)

	require.NoError(t, s.Fetch(context.Background(), "u2"))
	assert.Equal(t, 2, feed.subscriptions())
}

func TestMutationsRejectForeignRecords(t *testing.T) {
	gw, rows, _, feed := newFakeGateway()
	seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u2"))

	err := s.DeleteFile(context.Background(), "f1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.UpdateFile(context.Background(), "f1", map[string]any{"name": "stolen.txt"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.ShareWithUsers(context.Background(), "f1", []string{"u2"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The row is untouched and nothing was published
	got := rows.get("f1")
	assert.False(t, got.IsTrashed)
	assert.Equal(t, "a.txt", got.Name)
	assert.Empty(t, got.SharedWith)
	assert.Empty(t, feed.published)
}

func TestUpdateFileTagsKeepElements(t *testing.T) {
	gw, rows, _, _ := newFakeGateway()
	seedFile(rows, "f1", "u1", "a.txt")

	s := store.NewFileStore(gw)
	require.NoError(t, s.Fetch(context.Background(), "u1"))

	tags := model.StringSlice{"work", "tax 2026"}
	err := s.UpdateFile(context.Background(), "f1", map[string]any{"tags": tags})
	require.NoError(t, err)

	// Stored as a slice, element boundaries intact
	assert.Equal(t, tags, rows.get("f1").Tags)
}
