package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtconv/internal/buildinfo"
	"github.com/cleared-dev/stmtconv/internal/config"
	"github.com/cleared-dev/stmtconv/internal/convert"
	"github.com/cleared-dev/stmtconv/internal/logging"
	"github.com/cleared-dev/stmtconv/internal/statement"
)

// globalFlags are the persistent flags shared by all subcommands.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "stmtconv",
		Short:   "Convert bank statement PDFs to CSV",
		Version: buildinfo.Summary(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "path to stmtconv.yaml")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(newParseCommand(g))
	rootCmd.AddCommand(newServeCommand(g))
	rootCmd.AddCommand(newLayoutsCommand(g))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// load resolves configuration from defaults, the config file, the
// environment and finally flags, and builds the logger.
func (g *globalFlags) load() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newService(cfg *config.Config, logger *slog.Logger, strict bool) *convert.Service {
	ex := statement.NewExtractor(nil, statement.Options{
		Layout:        cfg.Parse.Layout,
		PositiveHints: cfg.Parse.PositiveHints,
		NegativeHints: cfg.Parse.NegativeHints,
	})
	return convert.New(ex, logger, strict || cfg.Parse.Strict)
}
