package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/agent-chat-cli/internal/domain"
	portmocks "github.com/bnema/agent-chat-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "agent-chat/openai/api_key"

func newTestChain(t *testing.T) (*Store, *portmocks.MockSecretStore, *portmocks.MockSecretStore) {
	t.Helper()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(Backend{Name: "pass", Store: primary}, Backend{Name: "file", Store: fallback})
	require.NoError(t, err)
	return store, primary, fallback
}

func TestNewStoreRejectsEmptyOrNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore()
	require.Error(t, err)

	_, err = NewStore(Backend{Name: "pass"})
	require.ErrorContains(t, err, "pass")
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newTestChain(t)
	primary.EXPECT().Get(mock.Anything, testKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestChain(t)
	primary.EXPECT().Get(mock.Anything, testKey).Return("", errors.New("pass unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, testKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReportsNotFoundWhenNoBackendHasKey(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestChain(t)
	primary.EXPECT().Get(mock.Anything, testKey).Return("", domain.ErrSecretNotFound).Once()
	fallback.EXPECT().Get(mock.Anything, testKey).Return("", domain.ErrSecretNotFound).Once()

	_, err := store.Get(context.Background(), testKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "pass backend")
	assert.ErrorContains(t, err, "file backend")
}

func TestStoreDoesNotFallBackOnCancellation(t *testing.T) {
	t.Parallel()

	store, primary, _ := newTestChain(t)
	primary.EXPECT().Get(mock.Anything, testKey).Return("", context.Canceled).Once()
	primary.EXPECT().Put(mock.Anything, testKey, "v").Return(context.DeadlineExceeded).Once()

	_, err := store.Get(context.Background(), testKey)
	require.ErrorIs(t, err, context.Canceled)

	err = store.Put(context.Background(), testKey, "v")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStorePutFallsBack(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestChain(t)
	primary.EXPECT().Put(mock.Anything, testKey, "v").Return(errors.New("pass unavailable")).Once()
	fallback.EXPECT().Put(mock.Anything, testKey, "v").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), testKey, "v"))
}

func TestStoreDeleteClearsEveryBackend(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestChain(t)
	primary.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("pass unavailable")).Once()
	fallback.EXPECT().Delete(mock.Anything, testKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), testKey))
}

func TestStoreDeleteFailsWhenAllBackendsFail(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestChain(t)
	primary.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, testKey).Return(errors.New("file failed")).Once()

	err := store.Delete(context.Background(), testKey)
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}
