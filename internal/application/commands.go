package application

import (
	"strings"
	"unicode/utf8"

	"github.com/bnema/agent-chat-cli/internal/domain"
)

const (
	MaxAgentNameLength      = 50
	MaxAgentRoleLength      = 50
	MaxAgentGoalLength      = 200
	MaxAgentBackstoryLength = 500
)

type CreateAgentCommand struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
}

// Normalize trims surrounding whitespace from every field.
func (c CreateAgentCommand) Normalize() CreateAgentCommand {
	return CreateAgentCommand{
		Name:      strings.TrimSpace(c.Name),
		Role:      strings.TrimSpace(c.Role),
		Goal:      strings.TrimSpace(c.Goal),
		Backstory: strings.TrimSpace(c.Backstory),
	}
}

// Validate enforces presence and length limits. Lengths count runes.
func (c CreateAgentCommand) Validate() error {
	checks := []struct {
		field    string
		value    string
		max      int
		required bool
	}{
		{field: "name", value: c.Name, max: MaxAgentNameLength, required: true},
		{field: "role", value: c.Role, max: MaxAgentRoleLength, required: true},
		{field: "goal", value: c.Goal, max: MaxAgentGoalLength, required: true},
		{field: "backstory", value: c.Backstory, max: MaxAgentBackstoryLength},
	}

	for _, check := range checks {
		if check.required && strings.TrimSpace(check.value) == "" {
			return &domain.ValidationError{Field: check.field, Reason: "is required"}
		}
		if utf8.RuneCountInString(check.value) > check.max {
			return &domain.ValidationError{Field: check.field, Reason: "is too long"}
		}
	}

	return nil
}
