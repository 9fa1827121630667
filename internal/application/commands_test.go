package application

import (
	"strings"
	"testing"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAgentCommandValidate(t *testing.T) {
	t.Parallel()

	valid := CreateAgentCommand{Name: "Ada", Role: "Helper", Goal: "Assist"}

	tests := []struct {
		name    string
		mutate  func(*CreateAgentCommand)
		field   string
		reason  string
		wantErr bool
	}{
		{name: "valid without backstory", mutate: func(*CreateAgentCommand) {}},
		{name: "missing name", mutate: func(c *CreateAgentCommand) { c.Name = "  " }, field: "name", reason: "is required", wantErr: true},
		{name: "missing role", mutate: func(c *CreateAgentCommand) { c.Role = "" }, field: "role", reason: "is required", wantErr: true},
		{name: "missing goal", mutate: func(c *CreateAgentCommand) { c.Goal = "" }, field: "goal", reason: "is required", wantErr: true},
		{name: "name at limit", mutate: func(c *CreateAgentCommand) { c.Name = strings.Repeat("é", MaxAgentNameLength) }},
		{name: "name too long", mutate: func(c *CreateAgentCommand) { c.Name = strings.Repeat("a", MaxAgentNameLength+1) }, field: "name", reason: "is too long", wantErr: true},
		{name: "goal too long", mutate: func(c *CreateAgentCommand) { c.Goal = strings.Repeat("a", MaxAgentGoalLength+1) }, field: "goal", reason: "is too long", wantErr: true},
		{name: "backstory too long", mutate: func(c *CreateAgentCommand) { c.Backstory = strings.Repeat("a", MaxAgentBackstoryLength+1) }, field: "backstory", reason: "is too long", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid
			tt.mutate(&cmd)

			err := cmd.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrValidation)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, tt.reason, validationErr.Reason)
		})
	}
}

func TestCreateAgentCommandNormalize(t *testing.T) {
	t.Parallel()

	cmd := CreateAgentCommand{Name: " Ada ", Role: "\tHelper", Goal: "Assist\n", Backstory: "  "}.Normalize()
	assert.Equal(t, CreateAgentCommand{Name: "Ada", Role: "Helper", Goal: "Assist"}, cmd)
}
