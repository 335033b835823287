package store

import (
	"context"
	"fmt"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

// UpsertEntry inserts or fully replaces one entry, keyed by inode. A rename,
// move or resize is expressed by supplying every field again. The write may
// still violate the (parent_inode, name) unique index when a different inode
// already holds that name; that surfaces as ErrConstraint and leaves the
// store unchanged. No cycle detection and no check that parent_inode exists:
// tree well-formedness across calls is the caller's responsibility.
func (s *Store) UpsertEntry(ctx context.Context, path string, entry *Entry) error {
	if entry == nil || entry.Inode <= 0 || entry.Name == "" || entry.ParentInode <= 0 {
		return fmt.Errorf("%w: entry requires inode, name and parent_inode", common.ErrValidation)
	}

	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("upsert-entry", dbPath).WithField("inode", entry.Inode)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.NewInsert().
		Model(entry.model()).
		On("CONFLICT (inode) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("parent_inode = EXCLUDED.parent_inode").
		Set("ctime = EXCLUDED.ctime").
		Set("mtime = EXCLUDED.mtime").
		Set("nlink = EXCLUDED.nlink").
		Set("size = EXCLUDED.size").
		Set("decrypted_size = EXCLUDED.decrypted_size").
		Set("is_dir = EXCLUDED.is_dir").
		Exec(ctx)
	if err != nil {
		logger.WithError(err).Warn("upsert entry failed")
		if common.IsConstraintViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrConstraint, err)
		}
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.WithField("parent", entry.ParentInode).Debug("entry upserted")
	return nil
}

// UpsertFile inserts or fully replaces one payload record, keyed by inode.
// Everything but the inode is optional; nil blobs are stored as NULL.
func (s *Store) UpsertFile(ctx context.Context, path string, file *File) error {
	if file == nil || file.Inode <= 0 {
		return fmt.Errorf("%w: file requires an inode", common.ErrValidation)
	}

	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("upsert-file", dbPath).WithField("inode", file.Inode)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.NewInsert().
		Model(file.model()).
		On("CONFLICT (inode) DO UPDATE").
		Set("mountpoint = EXCLUDED.mountpoint").
		Set("rel_path = EXCLUDED.rel_path").
		Set("header = EXCLUDED.header").
		Set("payload_size = EXCLUDED.payload_size").
		Set("prepend = EXCLUDED.prepend").
		Set("append = EXCLUDED.append").
		Exec(ctx)
	if err != nil {
		logger.WithError(err).Warn("upsert file failed")
		if common.IsConstraintViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrConstraint, err)
		}
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.Debug("file upserted")
	return nil
}

// DeleteFile removes the payload record for an inode. Deleting an absent
// record is a no-op, not an error.
func (s *Store) DeleteFile(ctx context.Context, path string, inode int64) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("delete-file", dbPath).WithField("inode", inode)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.NewDelete().
		Model((*FileModel)(nil)).
		Where("inode = ?", inode).
		Exec(ctx); err != nil {
		logger.WithError(err).Warn("delete file failed")
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.Debug("file deleted")
	return nil
}

// DeleteEntrySubtree deletes the entry with this inode and every entry whose
// parent_inode equals it — one level only. Grandchildren keep their rows and
// end up with a dangling parent_inode; a caller wanting full-subtree removal
// repeats the call bottom-up. The shallow behavior is deliberate and must not
// be deepened without breaking existing callers.
func (s *Store) DeleteEntrySubtree(ctx context.Context, path string, inode int64) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("delete-entry", dbPath).WithField("inode", inode)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.NewRaw(
		`DELETE FROM entries WHERE inode = ? OR parent_inode = ?`, inode, inode,
	).Exec(ctx); err != nil {
		logger.WithError(err).Warn("delete entry failed")
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.Debug("entry and direct children deleted")
	return nil
}

// UpsertAttribute inserts or replaces one extended attribute, keyed by
// (inode, name).
func (s *Store) UpsertAttribute(ctx context.Context, path string, inode int64, name, value string) error {
	if inode <= 0 || name == "" {
		return fmt.Errorf("%w: attribute requires inode and name", common.ErrValidation)
	}

	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("upsert-attribute", dbPath).WithField("inode", inode)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.NewInsert().
		Model(&AttributeModel{Inode: inode, Name: name, Value: value}).
		On("CONFLICT (inode, name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		logger.WithError(err).Warn("upsert attribute failed")
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.WithField("name", name).Debug("attribute upserted")
	return nil
}

// DeleteAttribute removes one extended attribute. Absent is a no-op.
func (s *Store) DeleteAttribute(ctx context.Context, path string, inode int64, name string) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("delete-attribute", dbPath).WithField("inode", inode)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.NewDelete().
		Model((*AttributeModel)(nil)).
		Where("inode = ?", inode).
		Where("name = ?", name).
		Exec(ctx); err != nil {
		logger.WithError(err).Warn("delete attribute failed")
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.WithField("name", name).Debug("attribute deleted")
	return nil
}
