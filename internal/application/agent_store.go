package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
)

// AgentStore owns the agent and conversation collections for the lifetime of
// the process and mirrors every mutation into the key-value store.
type AgentStore struct {
	kv       ports.KeyValueStore
	clock    ports.Clock
	ids      ports.IDGenerator
	notifier ports.Notifier
	logger   *slog.Logger
	pick     func(n int) int

	mu            sync.RWMutex
	agents        []domain.Agent
	conversations map[domain.AgentID]domain.Conversation
}

type AgentStoreOption func(*AgentStore)

func WithNotifier(notifier ports.Notifier) AgentStoreOption {
	return func(s *AgentStore) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

func WithLogger(logger *slog.Logger) AgentStoreOption {
	return func(s *AgentStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithIDGenerator(ids ports.IDGenerator) AgentStoreOption {
	return func(s *AgentStore) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithPalettePicker replaces the uniform random index source used for avatar colors.
func WithPalettePicker(pick func(n int) int) AgentStoreOption {
	return func(s *AgentStore) {
		if pick != nil {
			s.pick = pick
		}
	}
}

func NewAgentStore(kv ports.KeyValueStore, clock ports.Clock, opts ...AgentStoreOption) *AgentStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &AgentStore{
		kv:            kv,
		clock:         clock,
		ids:           ports.UUIDGenerator{},
		notifier:      ports.NopNotifier{},
		logger:        slog.Default(),
		pick:          rand.Intn,
		conversations: map[domain.AgentID]domain.Conversation{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Initialize loads both collections. A record that cannot be decoded is
// cleared and its collection starts empty.
func (s *AgentStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents, err := loadRecord(ctx, s, agentsKey, DecodeAgents)
	if err != nil {
		return err
	}
	conversations, err := loadRecord(ctx, s, conversationsKey, DecodeConversations)
	if err != nil {
		return err
	}

	s.agents = agents
	s.conversations = conversations
	if s.conversations == nil {
		s.conversations = map[domain.AgentID]domain.Conversation{}
	}

	return nil
}

func loadRecord[T any](ctx context.Context, s *AgentStore, key string, decode func(string) (T, error)) (T, error) {
	var zero T

	text, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return zero, nil
		}
		return zero, fmt.Errorf("load %s: %w", key, err)
	}

	decoded, err := decode(text)
	if err != nil {
		s.logger.Warn("discarding unreadable store record", "key", key, "error", err)
		if deleteErr := s.kv.Delete(ctx, key); deleteErr != nil {
			return zero, fmt.Errorf("clear corrupted %s: %w", key, deleteErr)
		}
		return zero, nil
	}

	return decoded, nil
}

func (s *AgentStore) CreateAgent(ctx context.Context, cmd CreateAgentCommand) (domain.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	agent := domain.Agent{
		ID:               domain.AgentID(s.ids.NewID()),
		Name:             cmd.Name,
		Role:             cmd.Role,
		Goal:             cmd.Goal,
		Backstory:        cmd.Backstory,
		AvatarColor:      domain.AvatarPalette[s.pick(len(domain.AvatarPalette))],
		CreatedAt:        now,
		LastInteractedAt: now,
	}

	agents := append(s.cloneAgents(), agent)
	conversations := s.cloneConversations()
	conversations[agent.ID] = s.newConversation(agent.ID, now)

	if err := s.commit(ctx, agents, conversations); err != nil {
		return domain.Agent{}, fmt.Errorf("save new agent: %w", err)
	}

	s.notifier.Success(fmt.Sprintf("%s has been created!", agent.Name))

	return agent, nil
}

func (s *AgentStore) DeleteAgent(ctx context.Context, id domain.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(id)
	if index < 0 {
		return nil
	}

	agents := s.cloneAgents()
	agents = append(agents[:index], agents[index+1:]...)
	conversations := s.cloneConversations()
	delete(conversations, id)

	if err := s.commit(ctx, agents, conversations); err != nil {
		return fmt.Errorf("delete agent %s: %w", id, err)
	}

	s.notifier.Success("Agent has been deleted")

	return nil
}

// GetConversation returns the agent's conversation, creating and persisting
// an empty one the first time it is requested.
func (s *AgentStore) GetConversation(ctx context.Context, agentID domain.AgentID) (domain.Conversation, error) {
	s.mu.RLock()
	conversation, ok := s.conversations[agentID]
	s.mu.RUnlock()
	if ok {
		return conversation.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if conversation, ok := s.conversations[agentID]; ok {
		return conversation.Clone(), nil
	}

	conversations := s.cloneConversations()
	conversation = s.newConversation(agentID, s.now())
	conversations[agentID] = conversation

	if err := s.commit(ctx, nil, conversations); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation for agent %s: %w", agentID, err)
	}

	return conversation.Clone(), nil
}

func (s *AgentStore) UpdateAgentInteraction(ctx context.Context, agentID domain.AgentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOf(agentID)
	if index < 0 {
		return nil
	}

	agents := s.cloneAgents()
	agents[index].LastInteractedAt = s.now()

	if err := s.commit(ctx, agents, nil); err != nil {
		return fmt.Errorf("save agent interaction: %w", err)
	}

	return nil
}

// AddMessage appends a message to the agent's conversation, creating the
// conversation if needed. Message timestamps never go backwards.
func (s *AgentStore) AddMessage(ctx context.Context, agentID domain.AgentID, content string, sender domain.Sender) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	conversations := s.cloneConversations()
	conversation, ok := conversations[agentID]
	if ok {
		conversation = conversation.Clone()
	} else {
		conversation = s.newConversation(agentID, now)
	}
	if last, ok := conversation.LastMessage(); ok && now.Before(last.Timestamp) {
		now = last.Timestamp
	}

	message := domain.Message{
		ID:        domain.MessageID(s.ids.NewID()),
		Content:   content,
		Sender:    sender,
		Timestamp: now,
	}
	conversation.Messages = append(conversation.Messages, message)
	conversation.LastUpdated = now
	conversations[agentID] = conversation

	if err := s.commit(ctx, nil, conversations); err != nil {
		return domain.Message{}, fmt.Errorf("append message for agent %s: %w", agentID, err)
	}

	return message, nil
}

// Agents returns the agents in creation order.
func (s *AgentStore) Agents() []domain.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cloneAgents()
}

func (s *AgentStore) Agent(id domain.AgentID) (domain.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.indexOf(id)
	if index < 0 {
		return domain.Agent{}, false
	}

	return s.agents[index], true
}

// PeekConversation reads a conversation without creating it.
func (s *AgentStore) PeekConversation(agentID domain.AgentID) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[agentID]
	if !ok {
		return domain.Conversation{}, false
	}

	return conversation.Clone(), true
}

// commit persists the given collections (nil means unchanged) and only then
// swaps them in. When the second write fails the first key is restored.
func (s *AgentStore) commit(ctx context.Context, agents []domain.Agent, conversations map[domain.AgentID]domain.Conversation) error {
	type write struct {
		key      string
		value    string
		previous string
	}

	var writes []write
	if agents != nil {
		value, err := EncodeAgents(agents)
		if err != nil {
			return err
		}
		previous, err := EncodeAgents(s.agents)
		if err != nil {
			return err
		}
		writes = append(writes, write{key: agentsKey, value: value, previous: previous})
	}
	if conversations != nil {
		value, err := EncodeConversations(conversations)
		if err != nil {
			return err
		}
		previous, err := EncodeConversations(s.conversations)
		if err != nil {
			return err
		}
		writes = append(writes, write{key: conversationsKey, value: value, previous: previous})
	}

	for i, w := range writes {
		if err := s.kv.Put(ctx, w.key, w.value); err != nil {
			var rollbackErr error
			for _, done := range writes[:i] {
				if restoreErr := s.kv.Put(context.WithoutCancel(ctx), done.key, done.previous); restoreErr != nil {
					rollbackErr = errors.Join(rollbackErr, restoreErr)
				}
			}
			if rollbackErr != nil {
				return fmt.Errorf("write %s and restore previous records: %w", w.key, errors.Join(err, rollbackErr))
			}
			return fmt.Errorf("write %s: %w", w.key, err)
		}
	}

	if agents != nil {
		s.agents = agents
	}
	if conversations != nil {
		s.conversations = conversations
	}

	return nil
}

func (s *AgentStore) newConversation(agentID domain.AgentID, now time.Time) domain.Conversation {
	return domain.Conversation{
		ID:          domain.ConversationID(s.ids.NewID()),
		AgentID:     agentID,
		Messages:    []domain.Message{},
		LastUpdated: now,
	}
}

func (s *AgentStore) indexOf(id domain.AgentID) int {
	for i, agent := range s.agents {
		if agent.ID == id {
			return i
		}
	}
	return -1
}

func (s *AgentStore) cloneAgents() []domain.Agent {
	out := make([]domain.Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

func (s *AgentStore) cloneConversations() map[domain.AgentID]domain.Conversation {
	out := make(map[domain.AgentID]domain.Conversation, len(s.conversations))
	for id, conversation := range s.conversations {
		out[id] = conversation
	}
	return out
}

// now is truncated to the precision the codec persists.
func (s *AgentStore) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}
