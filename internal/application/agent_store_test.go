package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/agent-chat-cli/internal/adapters/kv/memory"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, kv *memory.Store, opts ...AgentStoreOption) *AgentStore {
	t.Helper()

	store := NewAgentStore(kv, newStepClock(time.Second), opts...)
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func sampleCommand(name string) CreateAgentCommand {
	return CreateAgentCommand{Name: name, Role: "Helper", Goal: "Assist"}
}

func TestAgentStoreCreateAgentPairsConversation(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	notifier := &recordingNotifier{}
	store := newTestStore(t, kv, WithNotifier(notifier))

	agent, err := store.CreateAgent(context.Background(), sampleCommand("Ada"))
	require.NoError(t, err)

	_, parseErr := uuid.Parse(string(agent.ID))
	require.NoError(t, parseErr)
	assert.True(t, domain.IsPaletteColor(agent.AvatarColor))
	assert.Equal(t, agent.CreatedAt, agent.LastInteractedAt)
	assert.Equal(t, []string{"Ada has been created!"}, notifier.Messages())

	conversation, ok := store.PeekConversation(agent.ID)
	require.True(t, ok)
	assert.Equal(t, agent.ID, conversation.AgentID)
	assert.Empty(t, conversation.Messages)

	agents, err := kv.Get(context.Background(), agentsKey)
	require.NoError(t, err)
	assert.Contains(t, agents, string(agent.ID))
}

func TestAgentStoreCreateAgentUsesPalettePicker(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, memory.NewStore(), WithPalettePicker(func(n int) int {
		assert.Equal(t, len(domain.AvatarPalette), n)
		return 3
	}))

	agent, err := store.CreateAgent(context.Background(), sampleCommand("Ada"))
	require.NoError(t, err)
	assert.Equal(t, domain.AvatarPalette[3], agent.AvatarColor)
}

func TestAgentStoreIDsAreUnique(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, memory.NewStore())
	seen := map[string]struct{}{}

	for i := 0; i < 5; i++ {
		agent, err := store.CreateAgent(context.Background(), sampleCommand("Agent"))
		require.NoError(t, err)
		conversation, ok := store.PeekConversation(agent.ID)
		require.True(t, ok)

		for _, id := range []string{string(agent.ID), string(conversation.ID)} {
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, store.Agents(), 5)
}

func TestAgentStoreGetConversationIsIdempotent(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	store := newTestStore(t, kv, WithIDGenerator(&sequentialIDs{}))

	first, err := store.GetConversation(context.Background(), "orphan")
	require.NoError(t, err)
	second, err := store.GetConversation(context.Background(), "orphan")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.AgentID("orphan"), first.AgentID)

	persisted, err := kv.Get(context.Background(), conversationsKey)
	require.NoError(t, err)
	decoded, err := DecodeConversations(persisted)
	require.NoError(t, err)
	assert.Equal(t, first.ID, decoded["orphan"].ID)
}

func TestAgentStoreDeleteAgentCascades(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	notifier := &recordingNotifier{}
	store := newTestStore(t, kv, WithNotifier(notifier))
	ctx := context.Background()

	keep, err := store.CreateAgent(ctx, sampleCommand("Keep"))
	require.NoError(t, err)
	drop, err := store.CreateAgent(ctx, sampleCommand("Drop"))
	require.NoError(t, err)
	_, err = store.AddMessage(ctx, drop.ID, "hello", domain.SenderUser)
	require.NoError(t, err)

	require.NoError(t, store.DeleteAgent(ctx, drop.ID))

	_, ok := store.Agent(drop.ID)
	assert.False(t, ok)
	_, ok = store.PeekConversation(drop.ID)
	assert.False(t, ok)
	_, ok = store.PeekConversation(keep.ID)
	assert.True(t, ok)
	assert.Equal(t, "Agent has been deleted", notifier.Messages()[len(notifier.Messages())-1])

	reloaded := newTestStore(t, kv)
	require.Len(t, reloaded.Agents(), 1)
	assert.Equal(t, keep.ID, reloaded.Agents()[0].ID)
	_, ok = reloaded.PeekConversation(drop.ID)
	assert.False(t, ok)
}

func TestAgentStoreDeleteUnknownAgentIsNoop(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mockAnyContext(), agentsKey).Return("", domain.ErrKeyNotFound)
	kv.EXPECT().Get(mockAnyContext(), conversationsKey).Return("", domain.ErrKeyNotFound)
	notifier := &recordingNotifier{}

	store := NewAgentStore(kv, newStepClock(time.Second), WithNotifier(notifier))
	require.NoError(t, store.Initialize(context.Background()))

	require.NoError(t, store.DeleteAgent(context.Background(), "missing"))
	assert.Empty(t, notifier.Messages())
}

func TestAgentStoreAddMessageKeepsOrderAndTimestamps(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, memory.NewStore())
	ctx := context.Background()

	agent, err := store.CreateAgent(ctx, sampleCommand("Ada"))
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		sender := domain.SenderUser
		if i%2 == 1 {
			sender = domain.SenderAgent
		}
		_, err := store.AddMessage(ctx, agent.ID, string(rune('a'+i)), sender)
		require.NoError(t, err)
	}

	conversation, ok := store.PeekConversation(agent.ID)
	require.True(t, ok)
	require.Len(t, conversation.Messages, 6)
	for i, message := range conversation.Messages {
		assert.Equal(t, string(rune('a'+i)), message.Content)
		if i > 0 {
			assert.False(t, message.Timestamp.Before(conversation.Messages[i-1].Timestamp))
		}
	}
	last, _ := conversation.LastMessage()
	assert.Equal(t, last.Timestamp, conversation.LastUpdated)
}

func TestAgentStoreAddMessageClampsBackwardsClock(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, memory.NewStore())
	store.clock = newStepClock(-time.Minute)
	ctx := context.Background()

	first, err := store.AddMessage(ctx, "agent-1", "one", domain.SenderUser)
	require.NoError(t, err)
	second, err := store.AddMessage(ctx, "agent-1", "two", domain.SenderAgent)
	require.NoError(t, err)

	assert.Equal(t, first.Timestamp, second.Timestamp)
}

func TestAgentStoreAddMessageCreatesMissingConversation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, memory.NewStore())

	_, err := store.AddMessage(context.Background(), "ghost", "hi", domain.SenderUser)
	require.NoError(t, err)

	conversation, ok := store.PeekConversation("ghost")
	require.True(t, ok)
	require.Len(t, conversation.Messages, 1)
}

func TestAgentStoreUpdateAgentInteraction(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, memory.NewStore())
	ctx := context.Background()

	agent, err := store.CreateAgent(ctx, sampleCommand("Ada"))
	require.NoError(t, err)
	require.NoError(t, store.UpdateAgentInteraction(ctx, agent.ID))
	require.NoError(t, store.UpdateAgentInteraction(ctx, "unknown"))

	updated, ok := store.Agent(agent.ID)
	require.True(t, ok)
	assert.True(t, updated.LastInteractedAt.After(agent.LastInteractedAt))
	assert.Equal(t, agent.CreatedAt, updated.CreatedAt)
}

func TestAgentStoreRoundTripThroughReload(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	store := newTestStore(t, kv)
	ctx := context.Background()

	agent, err := store.CreateAgent(ctx, CreateAgentCommand{Name: "Ada", Role: "Helper", Goal: "Assist", Backstory: "Built engines"})
	require.NoError(t, err)
	_, err = store.AddMessage(ctx, agent.ID, "Hello", domain.SenderUser)
	require.NoError(t, err)
	_, err = store.AddMessage(ctx, agent.ID, "Hi there", domain.SenderAgent)
	require.NoError(t, err)

	reloaded := newTestStore(t, kv)

	assert.Equal(t, store.Agents(), reloaded.Agents())
	want, _ := store.PeekConversation(agent.ID)
	got, ok := reloaded.PeekConversation(agent.ID)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestAgentStoreInitializeDiscardsCorruptedRecords(t *testing.T) {
	t.Parallel()

	kv := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, agentsKey, "{not json"))
	require.NoError(t, kv.Put(ctx, conversationsKey, "{}"))

	store := newTestStore(t, kv)

	assert.Empty(t, store.Agents())
	_, err := kv.Get(ctx, agentsKey)
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
	_, err = kv.Get(ctx, conversationsKey)
	require.NoError(t, err)
}

func TestAgentStoreInitializeFailsOnUnreadableBackend(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mockAnyContext(), agentsKey).Return("", errors.New("disk on fire"))

	store := NewAgentStore(kv, newStepClock(time.Second))
	err := store.Initialize(context.Background())
	require.ErrorContains(t, err, "load agents")
}

func TestAgentStoreCreateAgentRestoresAgentsWhenConversationWriteFails(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mockAnyContext(), agentsKey).Return("", domain.ErrKeyNotFound)
	kv.EXPECT().Get(mockAnyContext(), conversationsKey).Return("", domain.ErrKeyNotFound)

	writeErr := errors.New("quota exceeded")
	kv.EXPECT().Put(mockAnyContext(), agentsKey, mock.MatchedBy(func(v string) bool { return v != "[]" })).Return(nil).Once()
	kv.EXPECT().Put(mockAnyContext(), conversationsKey, mock.Anything).Return(writeErr).Once()
	kv.EXPECT().Put(mockAnyContext(), agentsKey, "[]").Return(nil).Once()

	notifier := &recordingNotifier{}
	store := NewAgentStore(kv, newStepClock(time.Second), WithNotifier(notifier))
	require.NoError(t, store.Initialize(context.Background()))

	_, err := store.CreateAgent(context.Background(), sampleCommand("Ada"))
	require.ErrorIs(t, err, writeErr)
	assert.Empty(t, store.Agents())
	assert.Empty(t, notifier.Messages())
}

func TestAgentStoreReportsFailedRollback(t *testing.T) {
	t.Parallel()

	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mockAnyContext(), agentsKey).Return("", domain.ErrKeyNotFound)
	kv.EXPECT().Get(mockAnyContext(), conversationsKey).Return("", domain.ErrKeyNotFound)

	writeErr := errors.New("quota exceeded")
	restoreErr := errors.New("still full")
	kv.EXPECT().Put(mockAnyContext(), agentsKey, mock.MatchedBy(func(v string) bool { return v != "[]" })).Return(nil).Once()
	kv.EXPECT().Put(mockAnyContext(), conversationsKey, mock.Anything).Return(writeErr).Once()
	kv.EXPECT().Put(mockAnyContext(), agentsKey, "[]").Return(restoreErr).Once()

	store := NewAgentStore(kv, newStepClock(time.Second))
	require.NoError(t, store.Initialize(context.Background()))

	_, err := store.CreateAgent(context.Background(), sampleCommand("Ada"))
	require.ErrorIs(t, err, writeErr)
	require.ErrorIs(t, err, restoreErr)
}
