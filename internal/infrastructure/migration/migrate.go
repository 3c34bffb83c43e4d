package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrator - используемая часть migrate.Migrate.
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine создает Migrator поверх открытой базы (в тестах подменяется).
type MigrationEngine func(db *sql.DB) (Migrator, error)

type Migration struct {
	db     *sql.DB
	engine MigrationEngine
}

func NewMigration(db *sql.DB, engine MigrationEngine) *Migration {
	return &Migration{
		db:     db,
		engine: engine,
	}
}

// DefaultEngine применяет встроенные миграции к db. После закрытия мигратора
// база остается открытой, ею владеет вызывающий.
func DefaultEngine(db *sql.DB) (Migrator, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("prepare sqlite3 migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		src.Close()
		return nil, err
	}
	return &instanceMigrator{m: m, src: src}, nil
}

// instanceMigrator закрывает только источник миграций: migrate.Migrate.Close
// закрыл бы и *sql.DB вызывающего через драйвер sqlite3.
type instanceMigrator struct {
	m   *migrate.Migrate
	src source.Driver
}

func (im *instanceMigrator) Up() error {
	return im.m.Up()
}

func (im *instanceMigrator) Close() (error, error) {
	return im.src.Close(), nil
}

func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.db)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration source error: %v", err, serr)
			} else {
				err = serr
			}
		}
		if dberr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration database error: %v", err, dberr)
			} else {
				err = dberr
			}
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
