package store

import (
	"github.com/gofrs/flock"
)

// lockForCreate takes an advisory lock next to the store file for the
// duration of schema creation. SQLite serializes the DDL itself, but two
// creators racing on a fresh file can still trip each other with busy errors
// during the journal setup; the flock keeps creation single-file.
func lockForCreate(dbPath string) (func(), error) {
	fl := flock.New(dbPath + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, err
	}
	return func() { fl.Unlock() }, nil
}
