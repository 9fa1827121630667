package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
)

const DefaultReplyTimeout = 2 * time.Minute

const (
	AgentNotFoundReply     = "Error: Agent not found."
	StatusFailureReply     = "Error unable to get a response.."
	TimeoutReply           = "Error: The request took too long to respond."
	CommunicationFailReply = "Error: An error occurred while communicating with the agent."
)

type TurnOutcome string

const (
	OutcomeAnswered         TurnOutcome = "answered"
	OutcomeAgentMissing     TurnOutcome = "agent_missing"
	OutcomeTimeout          TurnOutcome = "timeout"
	OutcomeStatusFailure    TurnOutcome = "status_failure"
	OutcomeTransportFailure TurnOutcome = "transport_failure"
)

// Turn is one completed send: the user's message and the agent message that
// closed it, which is either the answer or an error text.
type Turn struct {
	Question domain.Message
	Reply    domain.Message
	Outcome  TurnOutcome
}

type ChatService struct {
	store   *AgentStore
	replies ports.ReplyClient
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[domain.AgentID]struct{}
}

func NewChatService(store *AgentStore, replies ports.ReplyClient, timeout time.Duration, logger *slog.Logger) *ChatService {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatService{
		store:   store,
		replies: replies,
		timeout: timeout,
		logger:  logger,
		pending: map[domain.AgentID]struct{}{},
	}
}

// Open marks the agent as interacted with and returns its conversation.
func (s *ChatService) Open(ctx context.Context, agentID domain.AgentID) (domain.Agent, domain.Conversation, error) {
	agent, ok := s.store.Agent(agentID)
	if !ok {
		return domain.Agent{}, domain.Conversation{}, fmt.Errorf("open chat %s: %w", agentID, domain.ErrAgentNotFound)
	}

	if err := s.store.UpdateAgentInteraction(ctx, agentID); err != nil {
		return domain.Agent{}, domain.Conversation{}, err
	}

	conversation, err := s.store.GetConversation(ctx, agentID)
	if err != nil {
		return domain.Agent{}, domain.Conversation{}, err
	}

	agent, _ = s.store.Agent(agentID)
	return agent, conversation, nil
}

// Send runs one chat turn. Reply failures are recorded in the conversation
// and reported through Turn.Outcome; the returned error is reserved for
// persistence failures and rejected input.
func (s *ChatService) Send(ctx context.Context, agentID domain.AgentID, content string) (Turn, error) {
	question := strings.TrimSpace(content)
	if question == "" {
		return Turn{}, domain.ErrEmptyMessage
	}

	if !s.acquire(agentID) {
		return Turn{}, fmt.Errorf("send to %s: %w", agentID, domain.ErrReplyPending)
	}
	defer s.release(agentID)

	userMessage, err := s.store.AddMessage(ctx, agentID, question, domain.SenderUser)
	if err != nil {
		return Turn{}, err
	}

	agent, ok := s.store.Agent(agentID)
	if !ok {
		return s.finish(ctx, agentID, userMessage, AgentNotFoundReply, OutcomeAgentMissing)
	}

	replyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answer, err := s.replies.Ask(replyCtx, domain.ReplyRequest{Agent: agent, Question: question})
	if err == nil {
		return s.finish(ctx, agentID, userMessage, answer, OutcomeAnswered)
	}

	text, outcome := classifyReplyError(replyCtx, err)
	s.logger.Warn("agent reply failed", "agent_id", agentID, "outcome", outcome, "error", err)

	return s.finish(ctx, agentID, userMessage, text, outcome)
}

func (s *ChatService) Pending(agentID domain.AgentID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pending[agentID]
	return ok
}

func (s *ChatService) finish(ctx context.Context, agentID domain.AgentID, question domain.Message, text string, outcome TurnOutcome) (Turn, error) {
	// The reply is recorded even when the caller's context was cancelled mid-turn.
	reply, err := s.store.AddMessage(context.WithoutCancel(ctx), agentID, text, domain.SenderAgent)
	if err != nil {
		return Turn{}, err
	}

	return Turn{Question: question, Reply: reply, Outcome: outcome}, nil
}

func classifyReplyError(replyCtx context.Context, err error) (string, TurnOutcome) {
	switch {
	case errors.Is(replyCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return TimeoutReply, OutcomeTimeout
	case errors.Is(err, domain.ErrReplyStatus):
		return StatusFailureReply, OutcomeStatusFailure
	default:
		return CommunicationFailReply, OutcomeTransportFailure
	}
}

func (s *ChatService) acquire(agentID domain.AgentID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[agentID]; busy {
		return false
	}
	s.pending[agentID] = struct{}{}
	return true
}

func (s *ChatService) release(agentID domain.AgentID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, agentID)
}
