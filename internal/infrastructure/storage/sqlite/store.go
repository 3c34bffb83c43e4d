// Package sqlite хранит конверты в таблице "entries" базы SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/migration"
	"pwvault/internal/infrastructure/storage/fsutil"
)

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

var _ entry.Repository = (*Store)(nil)

// New открывает (или создает) базу по пути path и применяет миграции.
func New(path string, engine migration.MigrationEngine, log *slog.Logger) (*Store, error) {
	if err := fsutil.EnsureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}

	if err := migration.NewMigration(db, engine).Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migration failed: %v", entry.ErrStoreUnreadable, err)
	}

	return &Store{
		db:  db,
		log: log.With(slog.String("component", "sqlite_store")),
	}, nil
}

func (s *Store) Get(ctx context.Context, title string) (entry.Envelope, error) {
	var env entry.Envelope
	err := s.db.QueryRowContext(ctx, `
		SELECT salt, iv, tag, password
		FROM entries
		WHERE title = ?
	`, title).Scan(&env.Salt, &env.IV, &env.Tag, &env.Ciphertext)

	if errors.Is(err, sql.ErrNoRows) {
		return entry.Envelope{}, fmt.Errorf("%w: %q", entry.ErrTitleNotFound, title)
	}
	if err != nil {
		return entry.Envelope{}, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}
	return env, nil
}

func (s *Store) Put(ctx context.Context, title string, env entry.Envelope) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (title, salt, iv, tag, password)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			salt = excluded.salt,
			iv = excluded.iv,
			tag = excluded.tag,
			password = excluded.password
	`, title, env.Salt, env.IV, env.Tag, env.Ciphertext)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	s.log.Debug("entry upserted", slog.String("title", title))
	return nil
}

func (s *Store) Delete(ctx context.Context, title string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE title = ?", title)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", entry.ErrTitleNotFound, title)
	}
	return nil
}

func (s *Store) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT title FROM entries ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
