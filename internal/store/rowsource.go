package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

// SQLRowSource adapts a database/sql handle into a RowSource, so the bulk
// loader can replay rows straight out of another database. The handle stays
// owned by the caller; Close on the produced row sets only closes the cursor.
type SQLRowSource struct {
	DB *sql.DB
}

func NewSQLRowSource(db *sql.DB) *SQLRowSource {
	return &SQLRowSource{DB: db}
}

func (s *SQLRowSource) Execute(ctx context.Context, query string) (RowSet, error) {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, err
	}

	cols := make([]ColumnType, len(types))
	for i, ct := range types {
		t, err := mapColumnType(ct.DatabaseTypeName())
		if err != nil {
			rows.Close()
			return nil, err
		}
		cols[i] = t
	}

	return &sqlRowSet{rows: rows, cols: cols}, nil
}

// mapColumnType folds a driver's declared column type into the loader's
// type alphabet. Drivers disagree on spelling, so this is by family. An
// empty name means the driver exposes no type metadata at all (go-libsql
// does not); those columns become ColAny and get validated per value.
func mapColumnType(name string) (ColumnType, error) {
	switch strings.ToUpper(name) {
	case "":
		return ColAny, nil
	case "INT8", "INT64", "INTEGER", "BIGINT":
		return ColInt8, nil
	case "INT4", "INT", "INT32", "SMALLINT", "MEDIUMINT", "TINYINT":
		return ColInt4, nil
	case "TEXT", "VARCHAR", "CHAR", "CLOB":
		return ColText, nil
	case "BLOB", "BYTEA", "BINARY", "VARBINARY":
		return ColBytea, nil
	case "BOOL", "BOOLEAN":
		return ColBool, nil
	}
	return 0, fmt.Errorf("%w: unsupported column type %q", common.ErrFormatMismatch, name)
}

type sqlRowSet struct {
	rows *sql.Rows
	cols []ColumnType

	current []any
	err     error
}

func (r *sqlRowSet) ColumnCount() int            { return len(r.cols) }
func (r *sqlRowSet) ColumnType(i int) ColumnType { return r.cols[i] }

func (r *sqlRowSet) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}

	dest := make([]any, len(r.cols))
	for i := range dest {
		dest[i] = new(any)
	}
	if err := r.rows.Scan(dest...); err != nil {
		r.err = err
		return false
	}

	r.current = make([]any, len(r.cols))
	for i, d := range dest {
		r.current[i] = *(d.(*any))
	}
	return true
}

func (r *sqlRowSet) Value(i int) (any, bool) {
	v := r.current[i]
	if v == nil {
		return nil, false
	}
	return v, true
}

func (r *sqlRowSet) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *sqlRowSet) Close() error { return r.rows.Close() }
