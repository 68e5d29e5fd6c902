// Package localstore persists client-side key/value state, mirroring the
// session values a browser would keep in local storage.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/db/bunx"
	"github.com/easymake/clubportal/cmd/clubportal/internal/db/models"
)

// Store is a bun-backed key/value store.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// Open opens (and migrates) the store at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := bunx.NewSQLiteDB(dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = bunx.Close(db)
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return bunx.Close(s.db)
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*models.LocalEntry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create local storage table: %w", err)
	}
	return nil
}

// Value returns the stored value for name.
func (s *Store) Value(ctx context.Context, name string) (string, bool, error) {
	entry := new(models.LocalEntry)
	err := s.db.NewSelect().
		Model(entry).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get local value %s: %w", name, err)
	}
	return entry.Value, true, nil
}

// Put stores value under name, replacing any previous value.
func (s *Store) Put(ctx context.Context, name, value string) error {
	return s.PutAll(ctx, map[string]string{name: value})
}

// PutAll stores every pair in one transaction.
func (s *Store) PutAll(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	now := s.now().UTC()
	entries := make([]models.LocalEntry, 0, len(values))
	for name, value := range values {
		entries = append(entries, models.LocalEntry{Name: name, Value: value, UpdatedAt: now})
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&entries).
			On("CONFLICT (name) DO UPDATE").
			Set("value = EXCLUDED.value").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("put local values: %w", err)
		}
		return nil
	})
}

// Delete removes names from the store. Missing names are ignored.
func (s *Store) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := s.db.NewDelete().
		Model((*models.LocalEntry)(nil)).
		Where("name IN (?)", bun.In(names)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete local values: %w", err)
	}
	return nil
}

// Snapshot reads every entry into a session medium. The snapshot is taken
// once so that resolution never touches the database.
func (s *Store) Snapshot(ctx context.Context) (auth.MapMedium, error) {
	var entries []models.LocalEntry
	if err := s.db.NewSelect().Model(&entries).Scan(ctx); err != nil {
		return nil, fmt.Errorf("read local storage: %w", err)
	}
	medium := make(auth.MapMedium, len(entries))
	for _, entry := range entries {
		medium[entry.Name] = entry.Value
	}
	return medium, nil
}

// sessionKeys are the values mirrored from a session token.
var sessionKeys = []string{auth.KeyToken, auth.KeySubject, auth.KeyRole, auth.KeyClubID, auth.KeyExpiresAt}

// SaveSession mirrors a session token into storage, replacing any previous
// session values.
func (s *Store) SaveSession(ctx context.Context, token string) error {
	values, err := auth.MirrorValues(token)
	if err != nil {
		return err
	}
	if err := s.ClearSession(ctx); err != nil {
		return err
	}
	return s.PutAll(ctx, values)
}

// ClearSession removes every mirrored session value.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.Delete(ctx, sessionKeys...)
}
