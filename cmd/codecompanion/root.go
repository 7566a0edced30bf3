package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codefionn/codecompanion/internal/config"
	"github.com/codefionn/codecompanion/internal/flows"
	"github.com/codefionn/codecompanion/internal/history"
	"github.com/codefionn/codecompanion/internal/llm"
	"github.com/codefionn/codecompanion/internal/logger"
	"github.com/codefionn/codecompanion/internal/securemem"
)

var version = "dev"

// app carries what the commands share: the loaded configuration and the
// constructors that tests replace.
type app struct {
	cfgFile   string
	envFile   string
	cfg       *config.Config
	keys      *securemem.KeyRing
	newClient func(cfg *config.Config, apiKey *securemem.String) (llm.Client, error)
	counter   llm.TokenCounter
	isTTY     func(w io.Writer) bool
}

func newApp() *app {
	return &app{
		envFile:   ".env",
		keys:      securemem.NewKeyRing(),
		newClient: newLLMClient,
		isTTY:     isTerminal,
	}
}

func newLLMClient(cfg *config.Config, apiKey *securemem.String) (llm.Client, error) {
	// The SDK clients keep the key for their lifetime, so they get a copy.
	return llm.NewClient(cfg.Provider, apiKey.Reveal(), cfg.ModelName())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "codecompanion",
		Short:         "Generate Java code and explain Java errors with a language model",
		Long:          `Code Companion highlights Java source, generates Java code from a description and explains errors in Java code, from the terminal or a local web UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			a.keys.Clear()
			return logger.Global().Close()
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: "+config.GetConfigPath()+")")

	root.AddCommand(
		newServeCmd(a),
		newHighlightCmd(a),
		newGenerateCmd(a),
		newExplainCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
	)
	return root
}

// loadConfig reads .env, the config file and the environment, then sets up logging.
func (a *app) loadConfig() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	path := a.cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("config loaded from %s (provider %s, model %s)", path, cfg.Provider, cfg.ModelName())

	// The key moves into protected memory; the plain copy is dropped.
	a.keys.Set(cfg.Provider, cfg.ResolveAPIKey())
	cfg.APIKey = ""
	a.cfg = cfg
	return nil
}

func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.GetConfigPath()
}

// service builds the flow service with rate limiting and, when configured,
// the history store. The returned cleanup closes the store.
func (a *app) service() (*flows.Service, *history.Store, func(), error) {
	apiKey := a.keys.Get(a.cfg.Provider)
	if apiKey == nil {
		apiKey = securemem.NewString("")
	}

	client, err := a.newClient(a.cfg, apiKey)
	if err != nil {
		return nil, nil, nil, err
	}

	counter := a.counter
	if counter == nil {
		counter = llm.NewTiktokenCounter()
	}
	client = llm.NewRateLimitedClient(client, a.cfg.RequestInterval(), a.cfg.TokensPerMinute, counter)

	var store *history.Store
	if a.cfg.HistoryPath != "" {
		store, err = history.Open(a.cfg.HistoryPath)
		if err != nil {
			logger.Warn("history disabled: %v", err)
			store = nil
		}
	}

	svc := flows.NewService(client, flows.Options{
		Temperature:     a.cfg.Temperature,
		MaxOutputTokens: a.cfg.MaxOutputTokens,
		MaxInputTokens:  a.cfg.MaxInputTokens,
		CacheTTL:        a.cfg.CacheTTLDuration(),
		Counter:         counter,
		History:         store,
	})

	cleanup := func() {
		if store != nil {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close history: %v", err)
			}
		}
	}
	return svc, store, cleanup, nil
}
