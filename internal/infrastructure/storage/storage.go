// Package storage selects the entry.Repository driver named in the configuration.
package storage

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/migration"
	"pwvault/internal/infrastructure/storage/bolt"
	"pwvault/internal/infrastructure/storage/jsonfile"
	"pwvault/internal/infrastructure/storage/sqlite"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Drivers lists the supported driver names.
func Drivers() []string {
	return []string{DriverJSON, DriverSQLite, DriverBolt}
}

// New opens the repository for driver at path.
func New(driver, path string, log *slog.Logger) (entry.Repository, error) {
	log.Debug("opening store", slog.String("driver", driver), slog.String("path", path))

	var (
		repo entry.Repository
		err  error
	)
	switch driver {
	case DriverJSON:
		repo, err = jsonfile.New(path, log)
	case DriverSQLite:
		repo, err = sqlite.New(path, migration.DefaultEngine, log)
	case DriverBolt:
		repo, err = bolt.New(path, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return repo, nil
}
