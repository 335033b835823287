package store

import (
	"github.com/uptrace/bun"
)

// Bun models for the three store tables. Nullable columns use pointer or
// byte-slice fields with nullzero so a nil value round-trips as SQL NULL.

// EntryModel represents one row of the entries table.
type EntryModel struct {
	bun.BaseModel `bun:"table:entries"`

	Inode         int64   `bun:"inode,pk"`
	Name          string  `bun:"name,notnull"`
	ParentInode   int64   `bun:"parent_inode,notnull"`
	Ctime         int64   `bun:"ctime,notnull"`
	Mtime         int64   `bun:"mtime,notnull"`
	Nlink         int64   `bun:"nlink,notnull"`
	Size          int64   `bun:"size,notnull"`
	DecryptedSize *string `bun:"decrypted_size,nullzero"`
	IsDir         bool    `bun:"is_dir,notnull"`
}

// FileModel represents one row of the files table. All payload fields are
// optional; the blobs are opaque and stored verbatim.
type FileModel struct {
	bun.BaseModel `bun:"table:files"`

	Inode       int64   `bun:"inode,pk"`
	Mountpoint  *string `bun:"mountpoint,nullzero"`
	RelPath     *string `bun:"rel_path,nullzero"`
	Header      []byte  `bun:"header,nullzero"`
	PayloadSize int64   `bun:"payload_size,notnull"`
	Prepend     []byte  `bun:"prepend,nullzero"`
	Append      []byte  `bun:"append,nullzero"`
}

// AttributeModel represents one row of the extended_attributes table.
type AttributeModel struct {
	bun.BaseModel `bun:"table:extended_attributes"`

	Inode int64  `bun:"inode,pk"`
	Name  string `bun:"name,pk"`
	Value string `bun:"value,notnull"`
}

// Entry is the caller-facing form of a directory-tree node. An upsert is a
// full-row replace: every field must be supplied again, there is no partial
// patch.
type Entry struct {
	Inode         int64
	Name          string
	ParentInode   int64
	Ctime         int64
	Mtime         int64
	Nlink         int
	Size          int64
	IsDir         bool
	DecryptedSize *string // directories leave this nil
}

func (e *Entry) model() *EntryModel {
	return &EntryModel{
		Inode:         e.Inode,
		Name:          e.Name,
		ParentInode:   e.ParentInode,
		Ctime:         e.Ctime,
		Mtime:         e.Mtime,
		Nlink:         int64(e.Nlink),
		Size:          e.Size,
		DecryptedSize: e.DecryptedSize,
		IsDir:         e.IsDir,
	}
}

func (m *EntryModel) entry() *Entry {
	return &Entry{
		Inode:         m.Inode,
		Name:          m.Name,
		ParentInode:   m.ParentInode,
		Ctime:         m.Ctime,
		Mtime:         m.Mtime,
		Nlink:         int(m.Nlink),
		Size:          m.Size,
		DecryptedSize: m.DecryptedSize,
		IsDir:         m.IsDir,
	}
}

// File is the caller-facing form of a payload record.
type File struct {
	Inode       int64
	Mountpoint  *string
	RelPath     *string
	Header      []byte
	PayloadSize int64
	Prepend     []byte
	Append      []byte
}

func (f *File) model() *FileModel {
	return &FileModel{
		Inode:       f.Inode,
		Mountpoint:  f.Mountpoint,
		RelPath:     f.RelPath,
		Header:      f.Header,
		PayloadSize: f.PayloadSize,
		Prepend:     f.Prepend,
		Append:      f.Append,
	}
}

func (m *FileModel) file() *File {
	return &File{
		Inode:       m.Inode,
		Mountpoint:  m.Mountpoint,
		RelPath:     m.RelPath,
		Header:      m.Header,
		PayloadSize: m.PayloadSize,
		Prepend:     m.Prepend,
		Append:      m.Append,
	}
}
