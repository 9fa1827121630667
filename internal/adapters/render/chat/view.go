package chat

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// Width wraps output when positive; zero leaves lines as rendered.
	Width int
}

func RenderAgents(agents []domain.Agent, opts RenderOptions) (string, error) {
	return run(opts, func(s styles) string { return agentsView(agents, opts, s) })
}

func RenderTranscript(agent domain.Agent, conversation domain.Conversation, opts RenderOptions) (string, error) {
	return run(opts, func(s styles) string { return transcriptView(agent, conversation, opts, s) })
}

// RenderMessage renders one message the way it appears in a transcript.
func RenderMessage(agent domain.Agent, message domain.Message, opts RenderOptions) (string, error) {
	return run(opts, func(s styles) string { return messageView(agent, message, s) })
}

func agentsView(agents []domain.Agent, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Agents"),
		s.header.Render(fmt.Sprintf("agents: %d", len(agents))),
	}

	if len(agents) == 0 {
		lines = append(lines, s.empty.Render("No agents yet. Create one with `ac agent create`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, agent := range agents {
		lines = append(lines, s.section.Render(agentCard(agent, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func agentCard(agent domain.Agent, opts RenderOptions, s styles) string {
	title := lipgloss.JoinHorizontal(lipgloss.Center,
		s.avatar(agent.AvatarColor).Render(initialsOrPlaceholder(agent)),
		" ",
		s.agentName(agent.AvatarColor).Render(agent.Name),
		" ",
		s.meta.Render("("+string(agent.ID)+")"),
	)

	parts := []string{
		title,
		s.detail.Render("  Role: " + agent.Role),
		s.detail.Render("  Goal: " + agent.Goal),
	}
	if strings.TrimSpace(agent.Backstory) != "" {
		parts = append(parts, s.detail.Render("  Backstory: "+agent.Backstory))
	}
	parts = append(parts, s.meta.Render("  Last chat: "+formatRelative(agent.LastInteractedAt, opts.Now)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func transcriptView(agent domain.Agent, conversation domain.Conversation, opts RenderOptions, s styles) string {
	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.avatar(agent.AvatarColor).Render(initialsOrPlaceholder(agent)),
			" ",
			s.agentName(agent.AvatarColor).Render(agent.Name),
			" ",
			s.meta.Render(agent.Role),
		),
		s.header.Render(fmt.Sprintf("messages: %d, updated %s", len(conversation.Messages), formatRelative(conversation.LastUpdated, opts.Now))),
	}

	if len(conversation.Messages) == 0 {
		lines = append(lines, s.empty.Render(fmt.Sprintf("No messages yet. Say hello to %s.", agent.Name)))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, message := range conversation.Messages {
		lines = append(lines, s.section.Render(messageView(agent, message, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func messageView(agent domain.Agent, message domain.Message, s styles) string {
	stamp := s.meta.Render(message.Timestamp.Local().Format("15:04"))

	if message.Sender == domain.SenderUser {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.user.Render("You")+" "+stamp,
			s.detail.Render(message.Content),
		)
	}

	body := s.agentText.Render(message.Content)
	if IsErrorReply(message.Content) {
		body = s.errorText.Render(message.Content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.agentName(agent.AvatarColor).Render(agent.Name)+" "+stamp,
		body,
	)
}

var failureReplies = map[string]struct{}{
	application.AgentNotFoundReply:     {},
	application.StatusFailureReply:     {},
	application.TimeoutReply:           {},
	application.CommunicationFailReply: {},
}

// IsErrorReply reports whether an agent message is exactly one of the
// recorded failure texts.
func IsErrorReply(content string) bool {
	_, ok := failureReplies[content]
	return ok
}

func initialsOrPlaceholder(agent domain.Agent) string {
	if initials := agent.Initials(); initials != "" {
		return initials
	}
	return "?"
}

func formatRelative(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return at.Local().Format("15:04 on 02 Jan 2006")
	}

	elapsed := now.Sub(at)
	if elapsed < time.Minute {
		return "just now"
	}

	if elapsed < time.Hour {
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	}
	if elapsed < 24*time.Hour {
		return plural(int(elapsed.Hours()), "hour") + " ago"
	}

	days := int(math.Floor(elapsed.Hours() / 24))
	if days < 30 {
		return plural(days, "day") + " ago"
	}

	return at.Local().Format("02 Jan 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
