package store

import (
	"context"
	"fmt"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

// TruncateEntries removes every entry except the root row, which the schema
// guarantees and readers assume is always present.
func (s *Store) TruncateEntries(ctx context.Context, path string) error {
	return s.maintenance(ctx, "truncate-entries", path,
		fmt.Sprintf(`DELETE FROM entries WHERE inode > %d`, RootInode))
}

// TruncateFiles empties the files table.
func (s *Store) TruncateFiles(ctx context.Context, path string) error {
	return s.maintenance(ctx, "truncate-files", path, `DELETE FROM files`)
}

// TruncateAttributes empties the extended_attributes table.
func (s *Store) TruncateAttributes(ctx context.Context, path string) error {
	return s.maintenance(ctx, "truncate-attributes", path, `DELETE FROM extended_attributes`)
}

func (s *Store) maintenance(ctx context.Context, op, path, statement string) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog(op, dbPath)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.NewRaw(statement).Exec(ctx); err != nil {
		logger.WithError(err).Warn("maintenance statement failed")
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.Debug("maintenance statement applied")
	return nil
}

// Exec runs an arbitrary SQL statement against the store, for repairs and
// migrations that the structured API does not cover. The statement is not
// inspected or rewritten; engine errors come back as-is, wrapped only for
// classification.
func (s *Store) Exec(ctx context.Context, path, statement string) error {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return err
	}
	logger := s.opLog("exec", dbPath)

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, statement); err != nil {
		logger.WithError(err).Warn("exec failed")
		if common.IsConstraintViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrConstraint, err)
		}
		return fmt.Errorf("%w: %v", common.ErrEngine, err)
	}

	logger.Debug("exec applied")
	return nil
}
