package store_test

import (
	"context"
	"io"
	"sync"

	"skyvault/drive-api/gateway"
	"skyvault/drive-api/internal/model"
)

// Hand-rolled gateway fakes. The feed fake delivers events only when a
// test calls Emit, which mirrors the real gateway: mutations return before
// the authoritative event comes back.

type fakeRows struct {
	mu         sync.Mutex
	rows       map[string]model.File
	users      map[string]string // email -> id
	failInsert error
	failUpdate error
	failList   error
}

func (r *fakeRows) ListByOwner(_ context.Context, ownerID string) ([]model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failList != nil {
		return nil, r.failList
	}

	var out []model.File
	for _, f := range r.rows {
		if f.OwnerID == ownerID && !f.IsTrashed {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeRows) ListSharedWith(_ context.Context, userID string) ([]model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failList != nil {
		return nil, r.failList
	}

	var out []model.File
	for _, f := range r.rows {
		if !f.IsTrashed && f.SharedWith.Contains(userID) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeRows) Get(_ context.Context, id string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.rows[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return &f, nil
}

func (r *fakeRows) Insert(_ context.Context, f *model.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failInsert != nil {
		return r.failInsert
	}

	r.rows[f.ID] = *f
	return nil
}

func (r *fakeRows) Update(_ context.Context, id string, patch map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate != nil {
		return r.failUpdate
	}

	f, ok := r.rows[id]
	if !ok {
		return gateway.ErrNotFound
	}

	for k, v := range patch {
		switch k {
		case "name":
			f.Name = v.(string)
		case "description":
			f.Description = v.(string)
		case "is_liked":
			f.IsLiked = v.(bool)
		case "is_trashed":
			f.IsTrashed = v.(bool)
		case "is_shared":
			f.IsShared = v.(bool)
		case "shared_with":
			f.SharedWith = v.(model.StringSlice)
		case "tags":
			f.Tags = v.(model.StringSlice)
		case "updated_at":
			f.UpdatedAt = v.(int64)
		}
	}

	r.rows[id] = f
	return nil
}

func (r *fakeRows) UserIDByEmail(_ context.Context, email string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.users[email]
	if !ok {
		return "", gateway.ErrNotFound
	}
	return id, nil
}

func (r *fakeRows) get(id string) model.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

type fakeObjects struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	failPut error
	// Percentages Put feeds to onProgress before finishing with 100
	progressTicks []float64
}

func (o *fakeObjects) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string, onProgress gateway.ProgressFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.failPut != nil {
		return o.failPut
	}

	o.keys = append(o.keys, key)

	if onProgress != nil {
		for _, pct := range o.progressTicks {
			onProgress(pct)
		}
		onProgress(100)
	}

	return nil
}

func (o *fakeObjects) Delete(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.deleted = append(o.deleted, key)
	return nil
}

func (o *fakeObjects) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (o *fakeObjects) List(_ context.Context) ([]gateway.ObjectInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []gateway.ObjectInfo
	for _, k := range o.keys {
		out = append(out, gateway.ObjectInfo{Key: k})
	}
	return out, nil
}

type fakeChannel struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type fakeFeed struct {
	mu        sync.Mutex
	handlers  []func(gateway.Event)
	channels  []*fakeChannel
	published []gateway.Event
}

func (f *fakeFeed) Publish(_ context.Context, ev gateway.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.published = append(f.published, ev)
	return nil
}

func (f *fakeFeed) Subscribe(_ context.Context, _ string, h func(gateway.Event)) (gateway.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := &fakeChannel{}
	f.handlers = append(f.handlers, h)
	f.channels = append(f.channels, ch)
	return ch, nil
}

// Emit plays an event into every live subscription, the way the real
// feed's fan-out would
func (f *fakeFeed) Emit(ev gateway.Event) {
	f.mu.Lock()
	handlers := append([]func(gateway.Event){}, f.handlers...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// EmitPublished replays the i-th published event back through the feed
func (f *fakeFeed) EmitPublished(i int) {
	f.mu.Lock()
	ev := f.published[i]
	f.mu.Unlock()

	f.Emit(ev)
}

func (f *fakeFeed) subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

func newFakeGateway() (*gateway.Gateway, *fakeRows, *fakeObjects, *fakeFeed) {
	rows := &fakeRows{
		rows:  make(map[string]model.File),
		users: make(map[string]string),
	}
	objects := &fakeObjects{progressTicks: []float64{25, 50, 75}}
	feed := &fakeFeed{}

	gw := &gateway.Gateway{
		Rows:    rows,
		Objects: objects,
		Feed:    feed,
	}

	return gw, rows, objects, feed
}
