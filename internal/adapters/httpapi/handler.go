// Package httpapi serves the agent backend: persona creation and single-turn
// questions answered by a completion provider.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
	"github.com/go-chi/chi/v5"
)

const maxRequestBytes = 1 << 20

type Handler struct {
	store   *application.AgentStore
	replies ports.ReplyClient
	timeout time.Duration
	logger  *slog.Logger
}

func NewHandler(store *application.AgentStore, replies ports.ReplyClient, timeout time.Duration, logger *slog.Logger) *Handler {
	if timeout <= 0 {
		timeout = application.DefaultReplyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{store: store, replies: replies, timeout: timeout, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create_agent", h.CreateAgent)
	r.Post("/ask_agent", h.AskAgent)
	r.Get("/agents", h.ListAgents)
}

type createAgentRequest struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Goal      string `json:"goal"`
	Backstory string `json:"backstory"`
}

type createAgentResponse struct {
	AgentID string `json:"agent_id"`
	Message string `json:"message"`
}

type askAgentRequest struct {
	AgentID  string `json:"agent_id"`
	Question string `json:"question"`
}

type askAgentResponse struct {
	Answer string `json:"answer"`
}

type agentResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Role             string `json:"role"`
	Goal             string `json:"goal"`
	Backstory        string `json:"backstory,omitempty"`
	AvatarColor      string `json:"avatarColor"`
	CreatedAt        string `json:"createdAt"`
	LastInteractedAt string `json:"lastInteractedAt"`
}

func (h *Handler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	cmd := application.CreateAgentCommand{
		Name:      req.Name,
		Role:      req.Role,
		Goal:      req.Goal,
		Backstory: req.Backstory,
	}.Normalize()
	if err := cmd.Validate(); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	agent, err := h.store.CreateAgent(r.Context(), cmd)
	if err != nil {
		h.logger.Error("create agent failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to save agent")
		return
	}

	JSON(w, http.StatusCreated, createAgentResponse{AgentID: string(agent.ID), Message: "Agent created successfully"})
}

func (h *Handler) AskAgent(w http.ResponseWriter, r *http.Request) {
	var req askAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	question := strings.TrimSpace(req.Question)
	if req.AgentID == "" || question == "" {
		Error(w, http.StatusBadRequest, "agent_id and question are required")
		return
	}

	agent, ok, err := h.lookup(r.Context(), domain.AgentID(req.AgentID))
	if err != nil {
		h.logger.Error("reload agents failed", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load agents")
		return
	}
	if !ok {
		Error(w, http.StatusNotFound, "Agent not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	answer, err := h.replies.Ask(ctx, domain.ReplyRequest{Agent: agent, Question: question})
	if err != nil {
		h.logger.Warn("provider reply failed", "agent_id", agent.ID, "error", err)

		var statusErr *domain.ReplyStatusError
		switch {
		case errors.As(err, &statusErr):
			Error(w, statusErr.StatusCode, "Error from provider API")
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			Error(w, http.StatusGatewayTimeout, "provider timed out")
		default:
			Error(w, http.StatusBadGateway, "provider unavailable")
		}
		return
	}

	JSON(w, http.StatusOK, askAgentResponse{Answer: answer})
}

func (h *Handler) ListAgents(w http.ResponseWriter, _ *http.Request) {
	agents := h.store.Agents()
	out := make([]agentResponse, 0, len(agents))
	for _, agent := range agents {
		out = append(out, agentResponse{
			ID:               string(agent.ID),
			Name:             agent.Name,
			Role:             agent.Role,
			Goal:             agent.Goal,
			Backstory:        agent.Backstory,
			AvatarColor:      agent.AvatarColor,
			CreatedAt:        agent.CreatedAt.UTC().Format(time.RFC3339),
			LastInteractedAt: agent.LastInteractedAt.UTC().Format(time.RFC3339),
		})
	}

	JSON(w, http.StatusOK, out)
}

// lookup reloads the store once on a miss, so agents created by another
// process sharing the backend become visible.
func (h *Handler) lookup(ctx context.Context, id domain.AgentID) (domain.Agent, bool, error) {
	if agent, ok := h.store.Agent(id); ok {
		return agent, true, nil
	}

	if err := h.store.Initialize(ctx); err != nil {
		return domain.Agent{}, false, err
	}

	agent, ok := h.store.Agent(id)
	return agent, ok, nil
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := decoder.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
