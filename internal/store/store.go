// Package store implements the SQLite filesystem-index store: schema
// creation, single-row mutation of the entries/files/extended_attributes
// tables, the bulk transactional loader, and maintenance operations.
//
// Every operation opens its own short-lived handle to the store file, runs at
// most one transaction, and closes the handle on every exit path. Nothing is
// cached between calls; concurrent access is serialized by SQLite's own file
// locking, and the core adds no retry around busy/locked failures.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/go-libsql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
	"github.com/silverdaz/pg-sqlite-fs/internal/config"
)

// Store mutates filesystem-index files below a configured location. The
// zero value is not usable; construct with New.
type Store struct {
	cfg *config.Config
}

// New returns a Store confined to cfg.Location.
func New(cfg *config.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{cfg: cfg}, nil
}

// Location returns the confinement root every store path must lie below.
func (s *Store) Location() string {
	return s.cfg.Location
}

// opLog returns a logger for one operation, tagged with a correlation id so
// interleaved operations from concurrent callers can be told apart.
func (s *Store) opLog(op, path string) *log.Entry {
	return log.WithFields(log.Fields{
		"op":    op,
		"store": path,
		"id":    uuid.NewString()[:8],
	})
}

// checkPath verifies the store path against the confinement location.
func (s *Store) checkPath(path string) (string, error) {
	return common.CheckPath(s.cfg.Location, path)
}

// open opens a per-call handle to an existing store file. The caller must
// close the returned DB; openDB never leaves a handle behind on error.
// A missing or unreadable file fails with ErrStoreOpen, as does a file that
// is not a SQLite database.
func (s *Store) open(ctx context.Context, path string) (*bun.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, path, err)
	}
	return s.openOrCreate(ctx, path)
}

// openOrCreate opens a handle, creating the file if absent. Used by Create;
// every other operation goes through open.
func (s *Store) openOrCreate(ctx context.Context, path string) (*bun.DB, error) {
	sqlDB, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, path, err)
	}

	// busy_timeout must go through Query: libsql returns rows for PRAGMAs.
	rows, err := sqlDB.QueryContext(ctx,
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.cfg.EffectiveBusyTimeout()))
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, path, err)
	}
	rows.Close()

	// busy_timeout never reads the database, so it passes on garbage files.
	// schema_version forces a read of the first page and fails on anything
	// that is not a SQLite database.
	probe, err := sqlDB.QueryContext(ctx, "PRAGMA schema_version")
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, path, err)
	}
	probe.Close()

	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// Create idempotently creates the store file and its fixed schema, then
// inserts the root entry if absent. Safe to re-run: every statement is
// IF NOT EXISTS / ON CONFLICT DO NOTHING, and a DDL failure leaves whatever
// already succeeded in place. An advisory lock next to the file serializes
// concurrent creators.
func (s *Store) Create(ctx context.Context, path string) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("create", dbPath)

	unlock, err := lockForCreate(dbPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, dbPath, err)
	}
	defer unlock()

	// Pre-create with group access so the hosting engine's group can read
	// the file; SQLite would otherwise apply its own default mode.
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		f, err := os.OpenFile(dbPath, os.O_CREATE|os.O_WRONLY, 0o660)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, dbPath, err)
		}
		f.Close()
	}

	db, err := s.openOrCreate(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := execStatements(db.DB, storeSchema); err != nil {
		logger.WithError(err).Error("schema statement failed")
		return fmt.Errorf("%w: %v", common.ErrSchema, err)
	}

	logger.Debug("store created")
	return nil
}

// Destroy deletes the backing file. Fails if the file is missing or
// unremovable.
func (s *Store) Destroy(path string) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("destroy", dbPath)

	if err := os.Remove(dbPath); err != nil {
		logger.WithError(err).Error("destroy failed")
		return fmt.Errorf("%w: %s: %v", common.ErrStoreOpen, dbPath, err)
	}
	// Leftovers from create-time locking or journal mode changes; best effort.
	os.Remove(dbPath + ".lock")
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")

	logger.Debug("store destroyed")
	return nil
}

// GetEntry reads one entry by inode. Returns nil when absent.
func (s *Store) GetEntry(ctx context.Context, path string, inode int64) (*Entry, error) {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return nil, err
	}
	db, err := s.open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var model EntryModel
	err = db.NewSelect().Model(&model).Where("inode = ?", inode).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEngine, err)
	}
	return model.entry(), nil
}

// GetFile reads one payload record by inode. Returns nil when absent.
func (s *Store) GetFile(ctx context.Context, path string, inode int64) (*File, error) {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return nil, err
	}
	db, err := s.open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var model FileModel
	err = db.NewSelect().Model(&model).Where("inode = ?", inode).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEngine, err)
	}
	return model.file(), nil
}

// GetAttribute reads one extended attribute. Returns ("", false, nil) when
// absent.
func (s *Store) GetAttribute(ctx context.Context, path string, inode int64, name string) (string, bool, error) {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return "", false, err
	}
	db, err := s.open(ctx, dbPath)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var model AttributeModel
	err = db.NewSelect().Model(&model).
		Where("inode = ?", inode).
		Where("name = ?", name).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", common.ErrEngine, err)
	}
	return model.Value, true, nil
}

// ListChildren returns the entries whose parent_inode is the given inode,
// in (inode, name) order via the listing index. The root entry is its own
// parent and is excluded from its own listing.
func (s *Store) ListChildren(ctx context.Context, path string, parent int64) ([]Entry, error) {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return nil, err
	}
	db, err := s.open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var models []EntryModel
	err = db.NewSelect().Model(&models).
		Where("parent_inode = ?", parent).
		Where("inode != parent_inode").
		Order("inode", "name").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	entries := make([]Entry, len(models))
	for i := range models {
		entries[i] = *models[i].entry()
	}
	return entries, nil
}
