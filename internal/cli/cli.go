package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/internal/config"
	"github.com/matzehuels/blockfall/pkg/buildinfo"
	"github.com/matzehuels/blockfall/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "blockfall"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config *config.Config

	configPath string
	noCache    bool
	token      string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockfall animates GitHub contribution calendars as falling blocks",
		Long: `Blockfall turns a GitHub contribution calendar into an animated SVG.

Each run packs the active days with falling tetromino pieces, seeded from the
calendar itself, so the same calendar always produces the same animation.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.preRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.registerGlobalFlags(root)

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the loaded configuration. Without
// a token the runner has no provider and only --input works.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg := c.config()
	cc, err := cfg.OpenCache(ctx, c.noCache)
	if err != nil {
		return nil, err
	}

	keyer := cfg.Keyer()
	provider, err := cfg.Provider(cc, keyer)
	if err != nil {
		cc.Close()
		return nil, err
	}
	runner := pipeline.NewRunner(provider, cc, keyer, c.Logger)

	archive, err := cfg.OpenArchive(ctx)
	if err != nil {
		runner.Close()
		return nil, err
	}
	runner.Archive = archive
	return runner, nil
}

// config returns the loaded configuration, or an empty one when the root
// command has not run (tests invoking subcommands directly).
func (c *CLI) config() *config.Config {
	if c.Config == nil {
		c.Config = &config.Config{}
	}
	return c.Config
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
