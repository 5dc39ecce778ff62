package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/internal/config"
	"github.com/matzehuels/blockfall/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags optionFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve animations over HTTP",
		Long: `Serve animations over HTTP.

  GET /{login}.svg    animated SVG
  GET /{login}.json   placement timeline
  GET /healthz        liveness probe

Query parameters theme, policy, runs, weeks and static override the defaults
per request. Set cache.backend = "redis" to share rendered output between
instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			base, err := c.resolveOptions(cmd, nil, &flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.config().Addr()
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()
			if runner.Provider == nil {
				printWarning("No GitHub token configured; every request will fail")
			}

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
			return server.New(runner, base, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	flags.registerPlan(cmd)
	cmd.Flags().StringVar(&flags.theme, "theme", "", "default colour theme")
	cmd.Flags().IntVar(&flags.weeks, "weeks", 0, "default number of weeks")

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
