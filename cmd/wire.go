package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	filekv "github.com/bnema/agent-chat-cli/internal/adapters/kv/file"
	memorykv "github.com/bnema/agent-chat-cli/internal/adapters/kv/memory"
	sqlitekv "github.com/bnema/agent-chat-cli/internal/adapters/kv/sqlite"
	chatrender "github.com/bnema/agent-chat-cli/internal/adapters/render/chat"
	anthropicreply "github.com/bnema/agent-chat-cli/internal/adapters/reply/anthropic"
	openaireply "github.com/bnema/agent-chat-cli/internal/adapters/reply/openai"
	remotereply "github.com/bnema/agent-chat-cli/internal/adapters/reply/remote"
	chainstore "github.com/bnema/agent-chat-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/agent-chat-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/agent-chat-cli/internal/adapters/secrets/pass"
	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/bnema/agent-chat-cli/internal/ports"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfg         config
	viper       *viper.Viper
	logger      *slog.Logger
	kv          ports.KeyValueStore
	store       *application.AgentStore
	chat        *application.ChatService
	secretStore ports.SecretStore
	notifier    *writerNotifier
	httpClient  *http.Client
	now         func() time.Time

	agentsRenderer     func([]domain.Agent, chatrender.RenderOptions) (string, error)
	transcriptRenderer func(domain.Agent, domain.Conversation, chatrender.RenderOptions) (string, error)
	messageRenderer    func(domain.Agent, domain.Message, chatrender.RenderOptions) (string, error)
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, notes, err := loadConfig(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	for _, note := range notes {
		logger.Debug(note)
	}

	kv, err := newKeyValueStore(cfg, v)
	if err != nil {
		return nil, fmt.Errorf("wire %s store: %w", cfg.StoreBackend, err)
	}

	secretStore, err := newSecretStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}

	httpClient := &http.Client{}
	replies, err := newReplyClient(cfg.ReplyProvider, cfg.ReplyBaseURL, cfg.ReplyModel, secretStore, httpClient)
	if err != nil {
		return nil, fmt.Errorf("wire reply client: %w", err)
	}

	notifier := &writerNotifier{}
	store := application.NewAgentStore(kv, ports.SystemClock{},
		application.WithNotifier(notifier),
		application.WithLogger(logger),
	)
	if err := store.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("load agent store: %w", err)
	}

	return &app{
		cfg:                cfg,
		viper:              v,
		logger:             logger,
		kv:                 kv,
		store:              store,
		chat:               application.NewChatService(store, replies, cfg.ReplyTimeout, logger),
		secretStore:        secretStore,
		notifier:           notifier,
		httpClient:         httpClient,
		now:                time.Now,
		agentsRenderer:     chatrender.RenderAgents,
		transcriptRenderer: chatrender.RenderTranscript,
		messageRenderer:    chatrender.RenderMessage,
	}, nil
}

func newKeyValueStore(cfg config, v *viper.Viper) (ports.KeyValueStore, error) {
	switch cfg.StoreBackend {
	case backendSQLite:
		return sqlitekv.NewStore(v)
	case backendMemory:
		return memorykv.NewStore(), nil
	default:
		return filekv.NewStore(v)
	}
}

func newSecretStore(cfg config) (ports.SecretStore, error) {
	switch cfg.SecretsBackend {
	case secretsFile:
		return filestore.NewStore(cfg.SecretsPath), nil
	case secretsPass:
		return passstore.NewStore(), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(cfg.SecretsPath)
	}
}

func newReplyClient(provider domain.Provider, baseURL string, model string, secrets ports.SecretStore, httpClient *http.Client) (ports.ReplyClient, error) {
	switch provider {
	case domain.ProviderRemote:
		return remotereply.Client{BaseURL: baseURL, HTTPClient: httpClient, Secrets: secrets}, nil
	case domain.ProviderOpenAI:
		return openaireply.Client{Model: model, HTTPClient: httpClient, Secrets: secrets}, nil
	case domain.ProviderAnthropic:
		return anthropicreply.Client{Model: model, HTTPClient: httpClient, Secrets: secrets}, nil
	default:
		return nil, fmt.Errorf("unsupported reply provider %q", provider)
	}
}

// writerNotifier prints success notifications; the root command points it at
// its stderr before any subcommand runs.
type writerNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.Notifier = (*writerNotifier)(nil)

func (n *writerNotifier) SetOutput(out io.Writer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.out = out
}

func (n *writerNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.out == nil {
		return
	}
	_, _ = fmt.Fprintln(n.out, message)
}

// renderOptions wraps to the terminal width when stdout is a terminal.
func (a *app) renderOptions(cmd *cobra.Command) chatrender.RenderOptions {
	opts := chatrender.RenderOptions{Now: a.now()}

	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(f.Fd()) {
		if width, _, err := term.GetSize(f.Fd()); err == nil {
			opts.Width = width
		}
	}

	return opts
}

func (a *app) close() {
	if closer, ok := a.kv.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("close store", "error", err)
		}
	}
}
