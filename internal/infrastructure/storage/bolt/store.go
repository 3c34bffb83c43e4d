// Package bolt keeps envelopes in a single bbolt bucket, one key per title.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/exp/slog"

	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/storage/fsutil"
)

var entriesBucket = []byte("entries")

const openTimeout = 5 * time.Second

type Store struct {
	db  *bbolt.DB
	log *slog.Logger
}

var _ entry.Repository = (*Store)(nil)

// New opens (or creates) the bbolt file at path. bbolt holds an exclusive
// file lock, so a second process waits up to openTimeout and then fails.
func New(path string, log *slog.Logger) (*Store, error) {
	if err := fsutil.EnsureDir(path); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create bucket: %v", entry.ErrStoreUnreadable, err)
	}

	return &Store{
		db:  db,
		log: log.With(slog.String("component", "bolt_store")),
	}, nil
}

func (s *Store) Get(ctx context.Context, title string) (entry.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return entry.Envelope{}, err
	}

	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(entriesBucket).Get([]byte(title))
		if v == nil {
			return fmt.Errorf("%w: %q", entry.ErrTitleNotFound, title)
		}
		// v is only valid inside the transaction.
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return entry.Envelope{}, err
	}

	env, err := entry.ParseEnvelope(raw)
	if err != nil {
		return entry.Envelope{}, fmt.Errorf("entry %q: %w", title, err)
	}
	return env, nil
}

func (s *Store) Put(ctx context.Context, title string, env entry.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if title == "" {
		// bbolt rejects empty keys.
		return entry.ErrInvalidTitle
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte(title), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	s.log.Debug("entry saved", slog.String("title", title))
	return nil
}

func (s *Store) Delete(ctx context.Context, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		if b.Get([]byte(title)) == nil {
			return fmt.Errorf("%w: %q", entry.ErrTitleNotFound, title)
		}
		return b.Delete([]byte(title))
	})
}

func (s *Store) Titles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	titles := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		// Keys iterate in byte order.
		return tx.Bucket(entriesBucket).ForEach(func(k, _ []byte) error {
			titles = append(titles, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}
	return titles, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
