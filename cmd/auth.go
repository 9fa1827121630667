package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage reply provider credentials",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var provider string
	var secretValue string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a provider API key or remote token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseProvider(provider)
			if err != nil {
				return err
			}
			value := strings.TrimSpace(secretValue)
			if value == "" {
				return fmt.Errorf("secret value: %w", domain.ErrValidation)
			}

			if err := app.secretStore.Put(cmd.Context(), parsed.SecretKey(), value); err != nil {
				return fmt.Errorf("store %s credential: %w", parsed, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored credential for %s\n", parsed)
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider (remote|openai|anthropic)")
	cmd.Flags().StringVar(&secretValue, "secret-value", "", "Secret value")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("secret-value")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a stored provider credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseProvider(provider)
			if err != nil {
				return err
			}

			if err := app.secretStore.Delete(cmd.Context(), parsed.SecretKey()); err != nil {
				return fmt.Errorf("remove %s credential: %w", parsed, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed credential for %s\n", parsed)
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider (remote|openai|anthropic)")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}
