package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/internal/config"
	"github.com/matzehuels/blockfall/pkg/observability"
)

// registerGlobalFlags adds the flags every subcommand shares. --verbose is
// owned by main, which sets the log level before preRun runs.
func (c *CLI) registerGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blockfall/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable caching")
	flags.StringVar(&c.token, "token", "", "GitHub token (overrides "+config.EnvToken+")")
}

// preRun loads the configuration and, at debug level, routes pipeline,
// cache and HTTP events to the logger.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.token != "" {
		cfg.Token = c.token
	}
	c.Config = cfg

	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	c.Logger.Debug("config loaded", "path", c.configPath, "user", cfg.User, "cache", cfg.Cache.Backend)
	return nil
}
