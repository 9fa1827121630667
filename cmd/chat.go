package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/spf13/cobra"
)

var quitCommands = map[string]struct{}{"/quit": {}, "/exit": {}}

func newChatCmd(app *app) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "chat <id|name>",
		Short: "Chat with an agent",
		Long:  "Opens the agent's conversation. With --message one turn is sent; otherwise each line read from stdin is sent until EOF or /quit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := resolveAgent(app, args[0])
			if err != nil {
				return err
			}

			agent, conversation, err := app.chat.Open(cmd.Context(), selected.ID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("message") {
				return sendTurn(cmd, app, agent, message)
			}

			transcript, err := app.transcriptRenderer(agent, conversation, app.renderOptions(cmd))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), transcript); err != nil {
				return err
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if _, quit := quitCommands[line]; quit {
					return nil
				}
				if err := sendTurn(cmd, app, agent, line); err != nil {
					return err
				}
			}

			return scanner.Err()
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Send a single message and exit")

	return cmd
}

// sendTurn runs one turn behind the spinner and prints the agent's message.
// Reply failures are part of the transcript, not command errors.
func sendTurn(cmd *cobra.Command, app *app, agent domain.Agent, content string) error {
	turn, err := awaitReply(cmd.Context(), cmd.ErrOrStderr(), agent.Name, agent.AvatarColor, func(ctx context.Context) (application.Turn, error) {
		return app.chat.Send(ctx, agent.ID, content)
	})
	if err != nil {
		return err
	}

	rendered, err := app.messageRenderer(agent, turn.Reply, app.renderOptions(cmd))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
