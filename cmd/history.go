package cmd

import (
	"fmt"

	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history <id|name>",
		Short: "Print an agent's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := resolveAgent(app, args[0])
			if err != nil {
				return err
			}

			conversation, ok := app.store.PeekConversation(agent.ID)
			if !ok {
				conversation = domain.Conversation{AgentID: agent.ID, Messages: []domain.Message{}, LastUpdated: agent.CreatedAt}
			}

			if asJSON {
				raw, err := application.EncodeConversations(map[domain.AgentID]domain.Conversation{agent.ID: conversation})
				if err != nil {
					return err
				}
				return writeIndentedJSON(cmd, raw)
			}

			output, err := app.transcriptRenderer(agent, conversation, app.renderOptions(cmd))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored conversation record as JSON")

	return cmd
}
