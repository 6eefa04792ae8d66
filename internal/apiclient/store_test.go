package apiclient

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

var samplePair = TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}

// storeContract — общий набор проверок для любой реализации CredentialStore.
func storeContract(t *testing.T, s CredentialStore) {
	t.Helper()
	ctx := context.Background()

	_, ok := s.Get(ctx)
	require.False(t, ok, "fresh store must be empty")

	// set -> get возвращает ровно ту же пару.
	require.NoError(t, s.Set(ctx, samplePair))
	got, ok := s.Get(ctx)
	require.True(t, ok)
	require.Equal(t, samplePair, got)

	// Перезапись.
	next := TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}
	require.NoError(t, s.Set(ctx, next))
	got, _ = s.Get(ctx)
	require.Equal(t, next, got)

	// Частичная пара отклоняется и ничего не меняет.
	require.ErrorIs(t, s.Set(ctx, TokenPair{AccessToken: "only-access"}), ErrPartialPair)
	require.ErrorIs(t, s.Set(ctx, TokenPair{RefreshToken: "only-refresh"}), ErrPartialPair)
	got, _ = s.Get(ctx)
	require.Equal(t, next, got)

	// clear -> get: пусто; clear идемпотентен.
	require.NoError(t, s.Clear(ctx))
	got, ok = s.Get(ctx)
	require.False(t, ok)
	require.True(t, got.IsZero())
	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore_Contract(t *testing.T) {
	t.Parallel()
	storeContract(t, NewMemoryStore())
}

func TestFileStore_Contract(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "tokens.json"))
	require.NoError(t, err)
	storeContract(t, s)
}

func TestFileStore_PermissionsAndNoTempLeftovers(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), samplePair))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "tokens.json", entries[0].Name())
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.json")
	s1, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(context.Background(), samplePair))

	s2, err := NewFileStore(path)
	require.NoError(t, err)
	got, ok := s2.Get(context.Background())
	require.True(t, ok)
	require.Equal(t, samplePair, got)
}

func TestFileStore_CorruptedOrPartialFile_IsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"access_token":`), 0o600))
	s, err := NewFileStore(broken)
	require.NoError(t, err)
	_, ok := s.Get(context.Background())
	require.False(t, ok)

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"access_token":"a"}`), 0o600))
	s, err = NewFileStore(partial)
	require.NoError(t, err)
	_, ok = s.Get(context.Background())
	require.False(t, ok)
}

func TestFileStore_DefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	s, err := NewFileStore("")
	require.NoError(t, err)
	require.Equal(t, defaultTokensFile, filepath.Base(s.Path()))
	require.Equal(t, "dog-directory", filepath.Base(filepath.Dir(s.Path())))
}
