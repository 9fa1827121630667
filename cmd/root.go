package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ac",
		Short:         "Agent Chat (ac): create AI personas and chat with them",
		Long:          "ac keeps a local roster of AI agent personas (name, role, goal, backstory) and one persistent conversation per agent. Replies come from a remote agent service, OpenAI, or Anthropic; `ac serve` runs that service.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		app.notifier.SetOutput(cmd.ErrOrStderr())
	}
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAgentCmd(app),
		newChatCmd(app),
		newHistoryCmd(app),
		newAuthCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
