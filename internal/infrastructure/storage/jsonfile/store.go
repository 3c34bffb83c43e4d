// Package jsonfile хранит записи одним JSON-объектом "название -> конверт".
// Каждый вызов читает файл целиком, каждое изменение перезаписывает его.
// Блокировок нет: при одновременной записи побеждает последний.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/exp/slog"

	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/storage/fsutil"
)

const filePermissions = 0600

type Store struct {
	path string
	log  *slog.Logger
}

var _ entry.Repository = (*Store)(nil)

// New возвращает хранилище в файле path; отсутствующий файл создается как "{}".
func New(path string, log *slog.Logger) (*Store, error) {
	s := &Store{
		path: path,
		log:  log.With(slog.String("component", "jsonfile_store")),
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := fsutil.EnsureDir(path); err != nil {
			return nil, err
		}
		if err := s.save(map[string]json.RawMessage{}); err != nil {
			return nil, err
		}
		s.log.Debug("created empty store", slog.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}

	return s, nil
}

func (s *Store) Get(ctx context.Context, title string) (entry.Envelope, error) {
	data, err := s.load(ctx)
	if err != nil {
		return entry.Envelope{}, err
	}

	raw, ok := data[title]
	if !ok {
		return entry.Envelope{}, fmt.Errorf("%w: %q", entry.ErrTitleNotFound, title)
	}

	env, err := entry.ParseEnvelope(raw)
	if err != nil {
		return entry.Envelope{}, fmt.Errorf("entry %q: %w", title, err)
	}
	return env, nil
}

func (s *Store) Put(ctx context.Context, title string, env entry.Envelope) error {
	data, err := s.load(ctx)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	data[title] = raw

	return s.save(data)
}

func (s *Store) Delete(ctx context.Context, title string) error {
	data, err := s.load(ctx)
	if err != nil {
		return err
	}

	if _, ok := data[title]; !ok {
		return fmt.Errorf("%w: %q", entry.ErrTitleNotFound, title)
	}
	delete(data, title)

	return s.save(data)
}

func (s *Store) Titles(ctx context.Context) ([]string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(data))
	for title := range data {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *Store) Close() error {
	return nil
}

// load читает хранилище целиком. Записи остаются сырыми, чтобы одна битая
// запись не мешала работать с остальными.
func (s *Store) load(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entry.ErrStoreUnreadable, err)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON object: %v", entry.ErrStoreUnreadable, s.path, err)
	}
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	return data, nil
}

// save заменяет файл хранилища: данные пишутся во временный файл рядом,
// синхронизируются и переименовываются поверх старого. Читатель видит либо
// старое, либо новое содержимое.
func (s *Store) save(data map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(filePermissions); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	committed = true

	// Фиксируем переименование; при ошибке файл все равно корректен.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}

	s.log.Debug("store written", slog.String("path", s.path), slog.Int("entries", len(data)))
	return nil
}
