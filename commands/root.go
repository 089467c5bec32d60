// Package commands implements the regkg CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/spf13/cobra"

	"github.com/c360studio/regkg/config"
)

// App carries the resolved configuration and logger shared by every
// subcommand.
type App struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand builds the regkg root command.
func NewRootCommand(version, buildTime string) *cobra.Command {
	app := &App{}
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "regkg",
		Short: "Deterministic knowledge-graph curation for regulatory text",
		Long: `Regkg curates a provenance-tracked knowledge graph over regulatory
text and entity records.

It provides:
- Content-hash gated provenance recording (PROV-O)
- Deterministic entity reconciliation with a full audit trail
- Bounded multi-hop graph expansion for retrieval context

Artifacts are byte-reproducible: identical input and rules always
produce identical output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := setupLogger(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			app.Logger = logger

			cfg, err := loadConfig(configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newReconcileCommand(app))
	cmd.AddCommand(newExpandCommand(app))
	cmd.AddCommand(newProvenanceCommand(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "regkg version %s (build: %s)\n", version, buildTime)
		},
	})

	return cmd
}

// setupLogger builds a text slog handler at the requested level.
func setupLogger(level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})), nil
}

// loadConfig resolves configuration: an explicit file overlays the
// defaults, otherwise the layered loader applies user and project
// config.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if path == "" {
		return config.NewLoader(logger).Load()
	}

	cfg := config.DefaultConfig()
	fileCfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectNATS connects to the configured NATS server for graph
// publishing.
func connectNATS(ctx context.Context, url string) (*natsclient.Client, error) {
	client, err := natsclient.NewClient(url,
		natsclient.WithName("regkg"),
		natsclient.WithMaxReconnects(5),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}
	return client, nil
}
