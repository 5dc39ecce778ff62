package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/pkg/pipeline"
)

// generateCommand creates the generate command, the main entry point.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate [login]",
		Short: "Render a contribution calendar as an animated SVG",
		Long: `Render a contribution calendar as an animated SVG.

The calendar is fetched from the GitHub GraphQL API (a token is required, via
--token, GITHUB_TOKEN or the config file) or read from --input. Fetched
calendars and rendered outputs are cached locally.

Examples:
  blockfall generate octocat
  blockfall generate octocat -f svg,json -o out/octocat
  blockfall generate -i calendar.json --theme light --runs 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if output == "" {
				output = c.config().Output
			}
			return c.runGenerate(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path, extension added per format (default <login>)")
	flags.registerFetch(cmd)
	flags.registerPlan(cmd)
	flags.registerRender(cmd)

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", opts.Login))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()
	prog.done("Generated animation")

	if output == "" {
		output = opts.Login
	}
	paths, err := pipeline.WriteArtifacts(output, result.Artifacts)
	if err != nil {
		return err
	}

	if result.CacheInfo.FromArchive {
		printWarning("GitHub was unreachable; used the archived calendar")
	}
	printSuccess("Generated %s", StyleHighlight.Render(opts.Login))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Total, result.Stats.Pieces, result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Preview in the terminal", appName+" preview "+opts.Login)
	return nil
}
