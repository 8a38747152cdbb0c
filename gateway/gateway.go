// Package gateway wraps every remote collaborator the stores talk to: the
// row store, the object bucket and the change feed. Stores receive these as
// interfaces so tests can swap in fakes.
package gateway

import (
	"context"
	"errors"
	"io"
	"time"

	"skyvault/drive-api/internal/model"
)

// ErrNotFound is returned by lookups that matched no row
var ErrNotFound = errors.New("gateway: not found")

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event is one change-feed notification carrying the authoritative row.
// It reaches the owner's subscription and everyone on the record's sharing
// list. Notify adds recipients beyond those, which revocations need: the
// removed user is no longer on the list the event carries.
type Event struct {
	Kind EventKind  `json:"kind"`
	File model.File `json:"file"`

	Notify []string `json:"-"`
}

// ProgressFunc receives upload progress as a 0-100 percentage. Values are
// monotonically non-decreasing and reach 100 on success.
type ProgressFunc func(pct float64)

// Rows is the relational side of the gateway. Listing calls exclude
// trashed records.
type Rows interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.File, error)
	ListSharedWith(ctx context.Context, userID string) ([]model.File, error)
	Get(ctx context.Context, id string) (*model.File, error)
	Insert(ctx context.Context, f *model.File) error
	// Update applies a partial column patch. ErrNotFound when no row matched.
	Update(ctx context.Context, id string, patch map[string]any) error
	UserIDByEmail(ctx context.Context, email string) (string, error)
}

// ObjectInfo describes one stored object during reconciliation sweeps
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// Objects is the binary blob side of the gateway
type Objects interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, onProgress ProgressFunc) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	List(ctx context.Context) ([]ObjectInfo, error)
}

// Feed delivers row change events between processes. Subscriptions are
// scoped to a single user; Publish fans the event out to every interested
// user's channel.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, ownerID string, h func(Event)) (Channel, error)
}

// Channel is a live feed subscription. Close is idempotent.
type Channel interface {
	Close() error
}

// Gateway bundles the three remote capabilities
type Gateway struct {
	Rows    Rows
	Objects Objects
	Feed    Feed
}
