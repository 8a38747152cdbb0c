// Package store holds the client-facing metadata stores: a cached view of
// a user's drive kept consistent through the change feed, plus the sharing
// view. Every mutation goes through the gateway; the cache is only touched
// by feed events.
package store

import "errors"

var (
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrValidation       = errors.New("invalid input")
	ErrNotFound         = errors.New("file not found")
	ErrStorageWrite     = errors.New("storage write failed")
	ErrDatabaseInsert   = errors.New("database insert failed")
	ErrDatabaseUpdate   = errors.New("database update failed")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyShared    = errors.New("file already shared with user")
)
