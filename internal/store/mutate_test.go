package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

func TestUpsertEntry(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	entry := testEntry(2, "file.c4gh", RootInode)
	entry.DecryptedSize = strptr("1024")
	require.NoError(t, s.UpsertEntry(ctx, path, entry))

	got, err := s.GetEntry(ctx, path, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "file.c4gh", got.Name)
	assert.Equal(t, int64(RootInode), got.ParentInode)
	require.NotNil(t, got.DecryptedSize)
	assert.Equal(t, "1024", *got.DecryptedSize)
	assert.False(t, got.IsDir)
}

func TestUpsertEntry_Replace(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(2, "before", RootInode)))

	// Same inode, new name and size: a full-row replace, not a new row.
	after := testEntry(2, "after", RootInode)
	after.Size = 99
	require.NoError(t, s.UpsertEntry(ctx, path, after))

	got, err := s.GetEntry(ctx, path, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "after", got.Name)
	assert.Equal(t, int64(99), got.Size)

	children, err := s.ListChildren(ctx, path, RootInode)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestUpsertEntry_Validation(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	tests := []struct {
		name  string
		entry *Entry
	}{
		{"nil entry", nil},
		{"zero inode", testEntry(0, "x", RootInode)},
		{"empty name", testEntry(2, "", RootInode)},
		{"zero parent", testEntry(2, "x", 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpsertEntry(ctx, path, tt.entry)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation), "got %v", err)
		})
	}
}

func TestUpsertEntry_DuplicateName(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(2, "same", RootInode)))

	// A different inode claiming the same (parent, name) slot trips the
	// unique index and leaves the store unchanged.
	err := s.UpsertEntry(ctx, path, testEntry(3, "same", RootInode))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConstraint), "got %v", err)

	got, err := s.GetEntry(ctx, path, 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertFile(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	file := &File{
		Inode:       2,
		Mountpoint:  strptr("/vault"),
		RelPath:     strptr("a/b/file.c4gh"),
		Header:      []byte{0x63, 0x72, 0x79, 0x70, 0x74},
		PayloadSize: 4096,
	}
	require.NoError(t, s.UpsertFile(ctx, path, file))

	got, err := s.GetFile(ctx, path, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/vault", *got.Mountpoint)
	assert.Equal(t, "a/b/file.c4gh", *got.RelPath)
	assert.Equal(t, file.Header, got.Header)
	assert.Equal(t, int64(4096), got.PayloadSize)
	assert.Nil(t, got.Prepend)
	assert.Nil(t, got.Append)
}

func TestUpsertFile_InodeOnly(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	// Only the inode is required; everything else may be NULL.
	require.NoError(t, s.UpsertFile(ctx, path, &File{Inode: 2}))

	got, err := s.GetFile(ctx, path, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Mountpoint)
	assert.Equal(t, int64(0), got.PayloadSize)

	err = s.UpsertFile(ctx, path, &File{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertFile(ctx, path, &File{Inode: 2}))
	require.NoError(t, s.DeleteFile(ctx, path, 2))

	got, err := s.GetFile(ctx, path, 2)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Absent is a no-op, not an error.
	require.NoError(t, s.DeleteFile(ctx, path, 2))
}

func TestDeleteEntrySubtree_Shallow(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	// root / dir(2) / child(3), grandchild(4)
	dir := testEntry(2, "dir", RootInode)
	dir.IsDir = true
	require.NoError(t, s.UpsertEntry(ctx, path, dir))
	child := testEntry(3, "child", 2)
	child.IsDir = true
	require.NoError(t, s.UpsertEntry(ctx, path, child))
	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(4, "grandchild", 3)))

	require.NoError(t, s.DeleteEntrySubtree(ctx, path, 2))

	for _, inode := range []int64{2, 3} {
		got, err := s.GetEntry(ctx, path, inode)
		require.NoError(t, err)
		assert.Nil(t, got, "inode %d should be gone", inode)
	}

	// One level only: the grandchild keeps its row, parent now dangling.
	got, err := s.GetEntry(ctx, path, 4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ParentInode)
}

func TestDeleteEntrySubtree_Absent(t *testing.T) {
	s, path := createTestStore(t)
	require.NoError(t, s.DeleteEntrySubtree(context.Background(), path, 999))
}

func TestAttributes(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertAttribute(ctx, path, 2, "user.checksum", "sha256:abc"))

	value, found, err := s.GetAttribute(ctx, path, 2, "user.checksum")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sha256:abc", value)

	// Upsert replaces the value for the same (inode, name).
	require.NoError(t, s.UpsertAttribute(ctx, path, 2, "user.checksum", "sha256:def"))
	value, found, err = s.GetAttribute(ctx, path, 2, "user.checksum")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "sha256:def", value)

	require.NoError(t, s.DeleteAttribute(ctx, path, 2, "user.checksum"))
	_, found, err = s.GetAttribute(ctx, path, 2, "user.checksum")
	require.NoError(t, err)
	assert.False(t, found)

	// Absent is a no-op.
	require.NoError(t, s.DeleteAttribute(ctx, path, 2, "user.checksum"))
}

func TestUpsertAttribute_Validation(t *testing.T) {
	s, path := createTestStore(t)

	err := s.UpsertAttribute(context.Background(), path, 2, "", "value")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}
