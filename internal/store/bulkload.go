package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

// ColumnType is the wire type a row-set column must carry for the bulk
// loader to accept it. The set mirrors what the two target tables store.
type ColumnType int

const (
	ColInt8 ColumnType = iota
	ColInt4
	ColText
	ColBytea
	ColBool

	// ColAny marks a column whose source carries no type metadata (the
	// libsql driver reports none). Such columns skip the up-front shape
	// check and are validated value by value during the load instead.
	ColAny
)

func (t ColumnType) String() string {
	switch t {
	case ColInt8:
		return "int8"
	case ColInt4:
		return "int4"
	case ColText:
		return "text"
	case ColBytea:
		return "bytea"
	case ColBool:
		return "bool"
	case ColAny:
		return "any"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// RowSet is a forward-only cursor over positional rows, typically backed by a
// query against another database. Column identity is positional: names are
// ignored, only arity and types matter.
type RowSet interface {
	ColumnCount() int
	ColumnType(i int) ColumnType
	// Next advances to the next row, returning false at the end or on error.
	Next() bool
	// Value returns the value at column i of the current row. The second
	// result is false when the column is NULL.
	Value(i int) (any, bool)
	Err() error
	Close() error
}

// RowSource produces row sets from queries. The loader treats the source as
// read-only; it never writes through it.
type RowSource interface {
	Execute(ctx context.Context, query string) (RowSet, error)
}

// bulkColumn describes one positional slot of a bulk contract. Required
// columns abort the whole load when NULL; optional ones bind NULL, except
// when nullAs supplies a substitute value.
type bulkColumn struct {
	name     string
	typ      ColumnType
	optional bool
	nullAs   any
}

var entryColumns = []bulkColumn{
	{name: "inode", typ: ColInt8},
	{name: "name", typ: ColText},
	{name: "parent_inode", typ: ColInt8},
	{name: "decrypted_size", typ: ColText, optional: true},
	{name: "ctime", typ: ColInt8},
	{name: "mtime", typ: ColInt8},
	{name: "nlink", typ: ColInt4},
	{name: "size", typ: ColInt8},
	{name: "is_dir", typ: ColBool},
}

var fileColumns = []bulkColumn{
	{name: "inode", typ: ColInt8},
	{name: "mountpoint", typ: ColText},
	{name: "rel_path", typ: ColText},
	{name: "header", typ: ColBytea, optional: true},
	{name: "payload_size", typ: ColInt8, optional: true, nullAs: int64(0)},
	{name: "prepend", typ: ColBytea, optional: true},
	{name: "append", typ: ColBytea, optional: true},
}

const bulkEntryUpsert = `INSERT INTO entries
 (inode, name, parent_inode, decrypted_size, ctime, mtime, nlink, size, is_dir)
 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
 ON CONFLICT (inode) DO UPDATE SET
 name = EXCLUDED.name, parent_inode = EXCLUDED.parent_inode,
 decrypted_size = EXCLUDED.decrypted_size, ctime = EXCLUDED.ctime,
 mtime = EXCLUDED.mtime, nlink = EXCLUDED.nlink, size = EXCLUDED.size,
 is_dir = EXCLUDED.is_dir`

const bulkFileUpsert = `INSERT INTO files
 (inode, mountpoint, rel_path, header, payload_size, prepend, append)
 VALUES (?, ?, ?, ?, ?, ?, ?)
 ON CONFLICT (inode) DO UPDATE SET
 mountpoint = EXCLUDED.mountpoint, rel_path = EXCLUDED.rel_path,
 header = EXCLUDED.header, payload_size = EXCLUDED.payload_size,
 prepend = EXCLUDED.prepend, append = EXCLUDED.append`

// LoadEntries replays the rows produced by query through the source into the
// entries table, upserting by inode inside a single transaction. The row set
// must carry exactly the nine entry columns, in order and with matching
// types; a mismatch rejects the load before anything is written. Any per-row
// failure rolls back the whole load.
func (s *Store) LoadEntries(ctx context.Context, path string, src RowSource, query string) (int64, error) {
	return s.bulkLoad(ctx, "load-entries", path, src, query, entryColumns, bulkEntryUpsert)
}

// LoadFiles is LoadEntries for the files table, with the seven file columns.
func (s *Store) LoadFiles(ctx context.Context, path string, src RowSource, query string) (int64, error) {
	return s.bulkLoad(ctx, "load-files", path, src, query, fileColumns, bulkFileUpsert)
}

func (s *Store) bulkLoad(ctx context.Context, op, path string, src RowSource, query string, cols []bulkColumn, upsert string) (int64, error) {
	dbPath, err := s.checkPath(path)
	if err != nil {
		return 0, err
	}
	logger := s.opLog(op, dbPath)

	rows, err := src.Execute(ctx, query)
	if err != nil {
		logger.WithError(err).Warn("row source query failed")
		if common.IsClassified(err) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", common.ErrEngine, err)
	}
	defer rows.Close()

	if err := checkRowSetShape(rows, cols); err != nil {
		logger.WithError(err).Warn("row set rejected")
		return 0, err
	}

	db, err := s.open(ctx, dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var count int64
	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// One prepared statement for the whole batch; bun.Tx embeds
		// *sql.Tx so the statement lives and dies with the transaction.
		stmt, err := tx.PrepareContext(ctx, upsert)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrEngine, err)
		}
		defer stmt.Close()

		args := make([]any, len(cols))
		for rows.Next() {
			for i, col := range cols {
				v, present := rows.Value(i)
				if !present {
					if !col.optional {
						return fmt.Errorf("%w: column %q is null at row %d",
							common.ErrNullField, col.name, count+1)
					}
					v = col.nullAs
				} else if err := checkValueKind(col, v); err != nil {
					return fmt.Errorf("row %d: %w", count+1, err)
				}
				args[i] = v
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				if common.IsConstraintViolation(err) {
					return fmt.Errorf("%w: row %d: %v", common.ErrConstraint, count+1, err)
				}
				return fmt.Errorf("%w: row %d: %v", common.ErrEngine, count+1, err)
			}
			count++
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: %v", common.ErrEngine, err)
		}
		return nil
	})
	if err != nil {
		logger.WithError(err).WithField("rows", count).Warn("bulk load rolled back")
		return 0, err
	}

	logger.WithField("rows", count).Info("bulk load committed")
	return count, nil
}

// checkRowSetShape validates arity and per-column types before any write.
// Positional contract: names carried by the source are irrelevant. ColAny
// columns defer to the per-value checks in the load loop.
func checkRowSetShape(rows RowSet, cols []bulkColumn) error {
	if got := rows.ColumnCount(); got != len(cols) {
		return fmt.Errorf("%w: expected %d columns, got %d",
			common.ErrFormatMismatch, len(cols), got)
	}
	for i, col := range cols {
		got := rows.ColumnType(i)
		if got == ColAny {
			continue
		}
		if got != col.typ {
			return fmt.Errorf("%w: column %d (%s) must be %s, got %s",
				common.ErrFormatMismatch, i, col.name, col.typ, got)
		}
	}
	return nil
}

// checkValueKind validates one scanned value against the column's expected
// type. database/sql drivers normalize integers to int64, so int4 and int8 columns both
// accept it; SQLite stores booleans as integers, so bool columns do too.
func checkValueKind(col bulkColumn, v any) error {
	switch col.typ {
	case ColInt8, ColInt4:
		if _, ok := v.(int64); ok {
			return nil
		}
	case ColBool:
		switch v.(type) {
		case bool, int64:
			return nil
		}
	case ColText:
		if _, ok := v.(string); ok {
			return nil
		}
	case ColBytea:
		if _, ok := v.([]byte); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: column %q carries %T, want %s",
		common.ErrFormatMismatch, col.name, v, col.typ)
}
