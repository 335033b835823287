package store

import (
	"database/sql"
	"strings"
)

// Root entry: inode 1, named "/", its own parent. Inserted at create time and
// never removed by truncation.
const RootInode = 1

// Fixed schema of a store file. The column names and declared types are a
// compatibility contract: the file is read directly by independent tools
// (crypt4gh-sqlite FUSE readers), so any change here is a breaking change.
//
// entries.parent_inode carries a REFERENCES clause for documentation only;
// foreign keys are never enabled, and deletions may leave dangling parents.
const storeSchema = `
-- Per-inode payload metadata. header/prepend/append are opaque blobs
-- stored and returned verbatim.
CREATE TABLE IF NOT EXISTS files (
    inode         INT64 PRIMARY KEY,
    mountpoint    text,
    rel_path      text,
    header        BLOB,
    payload_size  INT64 NOT NULL DEFAULT 0,
    prepend       BLOB,
    append        BLOB
);

-- Per-inode extended attributes.
CREATE TABLE IF NOT EXISTS extended_attributes (
    inode         INT64 NOT NULL,
    name          text NOT NULL,
    value         text NOT NULL,
    PRIMARY KEY(inode, name)
);

-- Directory tree. is_dir=0 means the inode joins with the files table.
CREATE TABLE IF NOT EXISTS entries (
    inode           INT64 NOT NULL PRIMARY KEY,
    name            text NOT NULL,
    parent_inode    INT64 NOT NULL REFERENCES entries(inode),
    ctime           INT64 NOT NULL DEFAULT 0,
    mtime           INT64 NOT NULL DEFAULT 0,
    nlink           INT NOT NULL DEFAULT 1,
    size            INT64 NOT NULL DEFAULT 0,
    decrypted_size  text,
    is_dir          INT NOT NULL DEFAULT 1
);

CREATE UNIQUE INDEX IF NOT EXISTS names ON entries(parent_inode, name);

CREATE INDEX IF NOT EXISTS listing ON entries(parent_inode, inode, name);

INSERT INTO entries(inode, name, parent_inode) VALUES (1, '/', 1) ON CONFLICT DO NOTHING;
`

// execStatements executes the statements of a SQL script one at a time.
// The libsql driver does not support multi-statement Exec.
func execStatements(db *sql.DB, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements splits a SQL script into individual statements, dropping
// comment and blank lines.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			statements = append(statements, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
