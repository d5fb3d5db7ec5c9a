package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/stolasapp/janua/internal/config"
	"github.com/stolasapp/janua/internal/storage/db"
)

// DB is a [Store] backed by a SQLite database.
type DB struct {
	db *sqlx.DB
}

// NewDB initializes a DB with the given config and logger.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	handle, err := db.Open(ctx, logger, cfg.DBFilepath)
	if err != nil {
		return nil, err
	}
	return &DB{db: handle}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// Reset satisfies the [Store] interface.
func (d *DB) Reset(ctx context.Context) error {
	return db.Reset(ctx, d.db)
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error) {
	if name == "" {
		return db.User{}, ErrInvalidUsername
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO user (username, password) VALUES (?, ?)`,
		name, passwordHash,
	)
	if isUniqueViolation(err) {
		return db.User{}, ErrAlreadyExists
	} else if err != nil {
		return db.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return db.User{}, err
	}
	return db.User{ID: id, Username: name, PasswordHash: passwordHash}, nil
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID int64) (db.User, error) {
	var user db.User
	err := d.db.GetContext(ctx, &user,
		`SELECT id, username, password FROM user WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	var user db.User
	err := d.db.GetContext(ctx, &user,
		`SELECT id, username, password FROM user WHERE username = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error) {
	var users []db.User
	err := d.db.SelectContext(ctx, &users,
		`SELECT id, username, password FROM user
		 WHERE username > ? ORDER BY username LIMIT ?`,
		afterName, int64(limit),
	)
	return users, err
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID int64) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, userID)
	return err
}

// isUniqueViolation reports whether err is the driver's UNIQUE constraint
// failure, raised when a username is already registered.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) &&
		(serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

var _ Store = (*DB)(nil)
