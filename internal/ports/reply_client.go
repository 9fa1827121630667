package ports

import (
	"context"

	"github.com/bnema/agent-chat-cli/internal/domain"
)

// ReplyClient produces an agent's answer to a question.
// Implementations report non-success HTTP statuses as *domain.ReplyStatusError.
type ReplyClient interface {
	Ask(ctx context.Context, req domain.ReplyRequest) (string, error)
}
