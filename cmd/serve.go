package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/agent-chat-cli/internal/adapters/httpapi"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string
	var provider string
	var model string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent backend HTTP service",
		Long:  "Serves POST /create_agent, POST /ask_agent and GET /agents, answering questions with OpenAI or Anthropic in the agent's persona.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseProvider(provider)
			if err != nil {
				return err
			}
			if parsed == domain.ProviderRemote {
				return fmt.Errorf("serve provider must be openai or anthropic, got %q", provider)
			}

			logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelInfo}))

			replies, err := newReplyClient(parsed, "", model, app.secretStore, app.httpClient)
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := httpapi.NewHandler(app.store, replies, app.cfg.ReplyTimeout, logger)
			logger.Info("starting agent service", "provider", parsed, "store", app.cfg.StoreBackend)

			return httpapi.Serve(ctx, listener, httpapi.NewRouter(handler, logger), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", app.cfg.ServeAddr, "Listen address")
	cmd.Flags().StringVar(&provider, "provider", string(app.cfg.ServeProvider), "Completion provider (openai|anthropic)")
	cmd.Flags().StringVar(&model, "model", app.cfg.ServeModel, "Provider model (empty uses the provider default)")

	return cmd
}
