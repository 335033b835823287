package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverdaz/pg-sqlite-fs/internal/common"
)

func TestTruncateEntries_KeepsRoot(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(2, "a", RootInode)))
	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(3, "b", RootInode)))

	require.NoError(t, s.TruncateEntries(ctx, path))

	root, err := s.GetEntry(ctx, path, RootInode)
	require.NoError(t, err)
	require.NotNil(t, root, "truncation must keep the root entry")

	children, err := s.ListChildren(ctx, path, RootInode)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestTruncateFiles(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertFile(ctx, path, &File{Inode: 2}))
	require.NoError(t, s.TruncateFiles(ctx, path))

	got, err := s.GetFile(ctx, path, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTruncateAttributes(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertAttribute(ctx, path, 2, "user.k", "v"))
	require.NoError(t, s.TruncateAttributes(ctx, path))

	_, found, err := s.GetAttribute(ctx, path, 2, "user.k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExec(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(2, "a", RootInode)))

	// Arbitrary statements run verbatim.
	require.NoError(t, s.Exec(ctx, path, "UPDATE entries SET size = 7 WHERE inode = 2"))

	got, err := s.GetEntry(ctx, path, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.Size)
}

func TestExec_EngineError(t *testing.T) {
	s, path := createTestStore(t)

	err := s.Exec(context.Background(), path, "UPDATE no_such_table SET x = 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEngine), "got %v", err)
}

func TestExec_ConstraintError(t *testing.T) {
	ctx := context.Background()
	s, path := createTestStore(t)

	require.NoError(t, s.UpsertEntry(ctx, path, testEntry(2, "same", RootInode)))

	err := s.Exec(ctx, path,
		"INSERT INTO entries(inode, name, parent_inode) VALUES (3, 'same', 1)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConstraint), "got %v", err)
}
