package domain

import (
	"fmt"
	"strings"
)

type ReplyRequest struct {
	Agent    Agent
	Question string
}

// PersonaPrompt renders the single-turn prompt sent to a completion provider.
func PersonaPrompt(agent Agent, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent Name: %s\nRole: %s\nGoal: %s\n", agent.Name, agent.Role, agent.Goal)
	if strings.TrimSpace(agent.Backstory) != "" {
		fmt.Fprintf(&b, "Backstory: %s\n", agent.Backstory)
	}
	fmt.Fprintf(&b, "User's Question: %s", question)
	return b.String()
}
