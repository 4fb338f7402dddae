package file_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onboarding/internal/adapters/file"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", "a/b", `a\b`, "a.json"} {
		err := store.Save(ctx, id, domain.NewState(id, "signup"))
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, id)

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, file.ErrInvalidSessionID, id)
	}
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX permissions")
	}
	dir := filepath.Join(t.TempDir(), "sessions")
	store := file.New(dir)
	require.NoError(t, store.Save(context.Background(), "s1", domain.NewState("s1", "signup")))

	info, err := os.Stat(filepath.Join(dir, "s1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_ListSkipsTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", domain.NewState("b", "signup")))
	require.NoError(t, store.Save(ctx, "a", domain.NewState("a", "signup")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-c-123.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, err = file.New(filepath.Join(dir, "missing")).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
