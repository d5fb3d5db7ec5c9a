// Package storage provides the state management for users.
package storage

import (
	"context"

	"github.com/stolasapp/janua/internal/storage/db"
)

const (
	// ErrNotFound is returned when a user cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername Error = "username is required"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying users.
type Users interface {
	// CreateUser inserts a new user with the given name and password hash and
	// returns the row with its store-assigned ID. An [ErrAlreadyExists] error
	// is returned if the username is already in use.
	CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error)
	// GetUser returns a single user with the specified ID. An [ErrNotFound] is
	// returned if the user ID does not exist.
	GetUser(ctx context.Context, userID int64) (db.User, error)
	// GetUserByName returns a single user with the specified name. An
	// [ErrNotFound] is returned if the user name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// ListUsers returns the users in a list, paginated by the given name (if
	// provided) up to the given limit of records.
	ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error)
	// DeleteUser removes a user. Note that this is a hard delete; data is not
	// recoverable. A stale session referencing the deleted ID resolves to
	// anonymous, not an error.
	DeleteUser(ctx context.Context, userID int64) error
}

// Store is the [Users] interface plus lifecycle and schema management.
type Store interface {
	Users
	// Reset drops and recreates the schema. Destructive: any existing rows
	// are lost. This is an operator action, never triggered by end-user
	// traffic.
	Reset(ctx context.Context) error
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
