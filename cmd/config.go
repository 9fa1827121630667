package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/agent-chat-cli/internal/application"
	"github.com/bnema/agent-chat-cli/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/agent-chat"
	envPrefix  = "AC"

	keyStoreBackend   = "store.backend"
	keySecretsBackend = "secrets.backend"
	keySecretsPath    = "secrets.path"
	keyReplyProvider  = "reply.provider"
	keyReplyBaseURL   = "reply.base_url"
	keyReplyTimeout   = "reply.timeout"
	keyReplyModel     = "reply.model"
	keyServeAddr      = "serve.addr"
	keyServeProvider  = "serve.provider"
	keyServeModel     = "serve.model"
	keyLogLevel       = "log.level"
)

const (
	backendFile   = "file"
	backendSQLite = "sqlite"
	backendMemory = "memory"

	secretsAuto = "auto"
	secretsFile = "file"
	secretsPass = "pass"
)

type config struct {
	StoreBackend   string
	SecretsBackend string
	SecretsPath    string
	ReplyProvider  domain.Provider
	ReplyBaseURL   string
	ReplyTimeout   time.Duration
	ReplyModel     string
	ServeAddr      string
	ServeProvider  domain.Provider
	ServeModel     string
	LogLevel       slog.Level
}

// loadConfig layers defaults, ~/.config/agent-chat/config.toml, a .env file
// in the working directory, and AC_* environment variables.
func loadConfig(cfg *viper.Viper) (config, []string, error) {
	var notes []string
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return config{}, nil, fmt.Errorf("load .env: %w", err)
		}
		notes = append(notes, "no .env file in working directory")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config{}, nil, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(baseDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(keyStoreBackend, backendFile)
	cfg.SetDefault(keySecretsBackend, secretsAuto)
	cfg.SetDefault(keySecretsPath, filepath.Join(baseDir, "secrets"))
	cfg.SetDefault(keyReplyProvider, string(domain.ProviderRemote))
	cfg.SetDefault(keyReplyBaseURL, "http://127.0.0.1:8000")
	cfg.SetDefault(keyReplyTimeout, application.DefaultReplyTimeout)
	cfg.SetDefault(keyReplyModel, "")
	cfg.SetDefault(keyServeAddr, "127.0.0.1:8000")
	cfg.SetDefault(keyServeProvider, string(domain.ProviderOpenAI))
	cfg.SetDefault(keyServeModel, "")
	cfg.SetDefault(keyLogLevel, "warn")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return config{}, nil, fmt.Errorf("read config file: %w", err)
		}
		notes = append(notes, "no config file in "+baseDir)
	}

	out := config{
		StoreBackend:   strings.ToLower(cfg.GetString(keyStoreBackend)),
		SecretsBackend: strings.ToLower(cfg.GetString(keySecretsBackend)),
		SecretsPath:    cfg.GetString(keySecretsPath),
		ReplyBaseURL:   cfg.GetString(keyReplyBaseURL),
		ReplyTimeout:   cfg.GetDuration(keyReplyTimeout),
		ReplyModel:     cfg.GetString(keyReplyModel),
		ServeAddr:      cfg.GetString(keyServeAddr),
		ServeModel:     cfg.GetString(keyServeModel),
	}

	if out.ReplyProvider, err = domain.ParseProvider(strings.ToLower(cfg.GetString(keyReplyProvider))); err != nil {
		return config{}, nil, fmt.Errorf("%s: %w", keyReplyProvider, err)
	}
	if out.ServeProvider, err = domain.ParseProvider(strings.ToLower(cfg.GetString(keyServeProvider))); err != nil {
		return config{}, nil, fmt.Errorf("%s: %w", keyServeProvider, err)
	}
	if err := out.LogLevel.UnmarshalText([]byte(cfg.GetString(keyLogLevel))); err != nil {
		return config{}, nil, fmt.Errorf("%s: %w", keyLogLevel, err)
	}

	if err := out.Validate(); err != nil {
		return config{}, nil, err
	}

	return out, notes, nil
}

func (c config) Validate() error {
	switch c.StoreBackend {
	case backendFile, backendSQLite, backendMemory:
	default:
		return fmt.Errorf("%s: unknown backend %q (want file, sqlite or memory)", keyStoreBackend, c.StoreBackend)
	}

	switch c.SecretsBackend {
	case secretsAuto, secretsFile, secretsPass:
	default:
		return fmt.Errorf("%s: unknown backend %q (want auto, file or pass)", keySecretsBackend, c.SecretsBackend)
	}

	if c.ReplyTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", keyReplyTimeout, c.ReplyTimeout)
	}
	if c.ReplyProvider == domain.ProviderRemote && c.ReplyBaseURL == "" {
		return fmt.Errorf("%s is required for the remote provider", keyReplyBaseURL)
	}
	if c.ServeProvider == domain.ProviderRemote {
		return fmt.Errorf("%s must be openai or anthropic", keyServeProvider)
	}
	if c.ServeAddr == "" {
		return fmt.Errorf("%s is required", keyServeAddr)
	}

	return nil
}
