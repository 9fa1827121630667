package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	personatoml "github.com/bnema/agent-chat-cli/internal/adapters/persona/toml"
	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAgentCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agent personas",
	}

	cmd.AddCommand(
		newAgentCreateCmd(app),
		newAgentListCmd(app),
		newAgentShowCmd(app),
		newAgentDeleteCmd(app),
		newAgentExportCmd(app),
		newAgentImportCmd(app),
	)

	return cmd
}

func newAgentCreateCmd(app *app) *cobra.Command {
	var input application.CreateAgentCommand
	var fromFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an agent",
		Example: `  ac agent create --name "Ada" --role "Mathematician" --goal "Explain the analytical engine"
  ac agent create --from-file personas.toml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromFile != "" {
				if cmd.Flags().Changed("name") || cmd.Flags().Changed("role") || cmd.Flags().Changed("goal") || cmd.Flags().Changed("backstory") {
					return errors.New("--from-file cannot be combined with persona flags")
				}
				return importPersonas(cmd, app, fromFile)
			}

			command := input.Normalize()
			if err := command.Validate(); err != nil {
				return err
			}

			agent, err := app.store.CreateAgent(cmd.Context(), command)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", agent.ID, agent.Name)
			return err
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", fmt.Sprintf("Agent name (max %d characters)", application.MaxAgentNameLength))
	cmd.Flags().StringVar(&input.Role, "role", "", fmt.Sprintf("Agent role (max %d characters)", application.MaxAgentRoleLength))
	cmd.Flags().StringVar(&input.Goal, "goal", "", fmt.Sprintf("Agent goal (max %d characters)", application.MaxAgentGoalLength))
	cmd.Flags().StringVar(&input.Backstory, "backstory", "", fmt.Sprintf("Optional backstory (max %d characters)", application.MaxAgentBackstoryLength))
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Create every persona in a TOML persona file")

	return cmd
}

func newAgentListCmd(app *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents, newest first",
		Long:  "Lists agents newest first. --json prints the stored records in creation order.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			agents := app.store.Agents()

			if jsonOutput {
				return writeAgentsJSON(cmd, agents)
			}

			output, err := app.agentsRenderer(newestFirst(agents), app.renderOptions(cmd))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newAgentShowCmd(app *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show one agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := resolveAgent(app, args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeAgentsJSON(cmd, []domain.Agent{agent})
			}

			output, err := app.agentsRenderer([]domain.Agent{agent}, app.renderOptions(cmd))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newAgentDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete an agent and its conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := resolveAgent(app, args[0])
			if err != nil {
				return err
			}

			return app.store.DeleteAgent(cmd.Context(), agent.ID)
		},
	}
}

func newAgentExportCmd(app *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all agents to a TOML persona file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := personatoml.NewFile(out)
			if err != nil {
				return err
			}

			agents := app.store.Agents()
			if err := file.Write(cmd.Context(), agents); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d agents to %s\n", len(agents), file.Path())
			return err
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Destination persona file")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newAgentImportCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <persona-file>",
		Short: "Create agents from a TOML persona file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importPersonas(cmd, app, args[0])
		},
	}
}

// importPersonas validates every persona before creating any of them.
func importPersonas(cmd *cobra.Command, app *app, path string) error {
	file, err := personatoml.NewFile(path)
	if err != nil {
		return err
	}

	personas, err := file.Read(cmd.Context())
	if err != nil {
		return err
	}

	commands := make([]application.CreateAgentCommand, 0, len(personas))
	for i, persona := range personas {
		command := application.CreateAgentCommand{
			Name:      persona.Name,
			Role:      persona.Role,
			Goal:      persona.Goal,
			Backstory: persona.Backstory,
		}.Normalize()
		if err := command.Validate(); err != nil {
			return fmt.Errorf("persona %d in %s: %w", i+1, file.Path(), err)
		}
		commands = append(commands, command)
	}

	for _, command := range commands {
		agent, err := app.store.CreateAgent(cmd.Context(), command)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", agent.ID, agent.Name); err != nil {
			return err
		}
	}

	return nil
}

// newestFirst orders agents by CreatedAt descending; ties keep creation order.
func newestFirst(agents []domain.Agent) []domain.Agent {
	sorted := slices.Clone(agents)
	slices.SortStableFunc(sorted, func(a, b domain.Agent) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

// resolveAgent matches an exact id first, then a case-insensitive name.
func resolveAgent(app *app, selector string) (domain.Agent, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return domain.Agent{}, errors.New("agent id or name is required")
	}

	if agent, ok := app.store.Agent(domain.AgentID(selector)); ok {
		return agent, nil
	}

	var matches []domain.Agent
	for _, agent := range app.store.Agents() {
		if strings.EqualFold(agent.Name, selector) {
			matches = append(matches, agent)
		}
	}

	switch len(matches) {
	case 0:
		return domain.Agent{}, fmt.Errorf("%q: %w", selector, domain.ErrAgentNotFound)
	case 1:
		return matches[0], nil
	default:
		return domain.Agent{}, fmt.Errorf("%d agents are named %q; use an id", len(matches), selector)
	}
}

func writeAgentsJSON(cmd *cobra.Command, agents []domain.Agent) error {
	encoded, err := application.EncodeAgents(agents)
	if err != nil {
		return err
	}

	return writeIndentedJSON(cmd, encoded)
}

func writeIndentedJSON(cmd *cobra.Command, raw string) error {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(raw), "", "  "); err != nil {
		return fmt.Errorf("format json output: %w", err)
	}
	out.WriteByte('\n')

	_, err := cmd.OutOrStdout().Write(out.Bytes())
	return err
}
