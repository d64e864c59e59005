package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ignore []string) *OSStore {
	t.Helper()
	store, err := NewOSStore(t.TempDir(), ignore)
	require.NoError(t, err)
	return store
}

func TestOSStoreCreateReadWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	_, err := store.Read(ctx, "note.md")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Write(ctx, "note.md", "content")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Create(ctx, "note.md", "first"))
	assert.ErrorIs(t, store.Create(ctx, "note.md", "again"), ErrAlreadyExists)

	got, err := store.Read(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	require.NoError(t, store.Write(ctx, "note.md", "second"))
	got, err = store.Read(ctx, "note.md")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestOSStoreExists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	ok, err := store.Exists(ctx, "missing.md")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Create(ctx, "present.md", "x"))
	ok, err = store.Exists(ctx, "present.md")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOSStoreEnsureDirAndNestedPaths(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	require.NoError(t, store.EnsureDir(ctx, "Chats/archive"))
	require.NoError(t, store.Create(ctx, "Chats/archive/old.md", "x"))

	got, err := store.Read(ctx, "Chats/archive/old.md")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}

func TestOSStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	require.NoError(t, store.EnsureDir(ctx, "Chats"))
	require.NoError(t, store.Create(ctx, "Chats/a.md", "a"))
	require.NoError(t, store.Create(ctx, "Chats/b.md", "b"))
	require.NoError(t, store.EnsureDir(ctx, "Chats/sub"))

	paths, err := store.List(ctx, "Chats")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Chats/a.md", "Chats/b.md"}, paths)
}

func TestOSStoreListRoot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	require.NoError(t, store.Create(ctx, "top.md", "x"))

	paths, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"top.md"}, paths)
}

func TestOSStoreListHonorsIgnorePatterns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, []string{"Chats/*.tmp", "Chats/draft-*"})

	require.NoError(t, store.EnsureDir(ctx, "Chats"))
	require.NoError(t, store.Create(ctx, "Chats/keep.md", "x"))
	require.NoError(t, store.Create(ctx, "Chats/scratch.tmp", "x"))
	require.NoError(t, store.Create(ctx, "Chats/draft-1.md", "x"))

	paths, err := store.List(ctx, "Chats")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chats/keep.md"}, paths)
}

func TestOSStoreInvalidIgnorePatternSkipped(t *testing.T) {
	store, err := NewOSStore(t.TempDir(), []string{"[unclosed"})
	require.NoError(t, err)
	assert.Empty(t, store.ignore)
}

func TestOSStoreRejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	_, err := store.Read(ctx, "../outside.md")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = store.Create(ctx, "../../etc/passwd", "x")
	assert.Error(t, err)
}

func TestOSStoreAtomicWriteLeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	require.NoError(t, store.Create(ctx, "note.md", "x"))
	require.NoError(t, store.Write(ctx, "note.md", "y"))

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}
}
