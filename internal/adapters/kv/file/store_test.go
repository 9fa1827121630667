package file

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "store")
	cfg := viper.New()
	cfg.Set(StorePathKey, dir)

	store, err := NewStore(cfg)
	require.NoError(t, err)
	return store, dir
}

func TestStoreRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "agents", `[{"id":"a-1"}]`))

	got, err := store.Get(ctx, "agents")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a-1"}]`, got)

	info, err := os.Stat(filepath.Join(dir, "agents.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(recordFileMode), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(storeDirMode), dirInfo.Mode().Perm())
}

func TestStoreGetMissingKeyReturnsKeyNotFound(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "conversations")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "agents", "[]"))
	require.NoError(t, store.Delete(ctx, "agents"))
	require.NoError(t, store.Delete(ctx, "agents"))

	_, err := os.Stat(filepath.Join(dir, "agents.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreRejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	for _, key := range []string{"", "../escape", "Agents", "a/b", "agents.json"} {
		t.Run(key, func(t *testing.T) {
			err := store.Put(context.Background(), key, "[]")
			assert.ErrorContains(t, err, "invalid store key")
		})
	}
}

func TestStoreOverwriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	store, dir := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Put(ctx, "agents", strconv.Itoa(i)))
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "agents.json", entries[0].Name())
}

func TestNewStoreDefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore(viper.New())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "agent-chat", "store"), store.Dir())
}
