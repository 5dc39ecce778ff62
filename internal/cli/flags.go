package cli

import (
	"time"

	"github.com/spf13/cobra"

	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/pipeline"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// optionFlags holds pipeline flags. Only flags the user actually set
// override the config file, so defaults here are display-only.
type optionFlags struct {
	// fetch
	user    string
	input   string
	weeks   int
	to      string
	refresh bool

	// plan
	runs        int
	policy      string
	seed        uint32
	step        float64
	travel      float64
	runDuration float64
	hold        float64

	// render
	formats string
	theme   string
	title   string
	labels  bool
	static  bool
	scale   float64
}

func (f *optionFlags) registerFetch(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.user, "user", "u", "", "GitHub login (default from config or BLOCKFALL_USER)")
	flags.StringVarP(&f.input, "input", "i", "", "read the calendar from a JSON or YAML file instead of GitHub")
	flags.IntVar(&f.weeks, "weeks", pipeline.DefaultWeeks, "number of weeks to show")
	flags.StringVar(&f.to, "to", "", "last day of the calendar, YYYY-MM-DD (default today)")
	flags.BoolVar(&f.refresh, "refresh", false, "bypass the cache and refetch")
}

func (f *optionFlags) registerPlan(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&f.runs, "runs", timeline.DefaultRuns, "independent packings per cycle")
	flags.StringVar(&f.policy, "policy", pipeline.DefaultPolicy, "drop order: drop, rows")
	flags.Uint32Var(&f.seed, "seed", 0, "override the seed derived from the calendar")
	flags.Float64Var(&f.step, "step", timeline.DefaultStepDuration, "seconds between drops")
	flags.Float64Var(&f.travel, "travel", timeline.DefaultTravelDuration, "seconds a piece takes to fall")
	flags.Float64Var(&f.runDuration, "run-duration", timeline.DefaultRunDuration, "seconds per run, including the hold")
	flags.Float64Var(&f.hold, "hold", timeline.DefaultHoldDuration, "seconds the finished picture stays (must be positive)")
}

func (f *optionFlags) registerRender(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	flags.StringVar(&f.theme, "theme", render.DefaultTheme, "colour theme: dark, light")
	flags.StringVar(&f.title, "title", "", "title drawn above the grid")
	flags.BoolVar(&f.labels, "labels", false, "draw month labels")
	flags.BoolVar(&f.static, "static", false, "render the final frame without animation")
	flags.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

// apply copies every flag the user set onto opts.
func (f *optionFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	changed := cmd.Flags().Changed

	if changed("user") {
		opts.Login = f.user
	}
	if changed("input") {
		opts.Input = f.input
	}
	if changed("weeks") {
		opts.Weeks = f.weeks
	}
	if changed("to") {
		t, err := time.Parse(time.DateOnly, f.to)
		if err != nil {
			return bferrors.New(bferrors.ErrCodeInvalidInput, "--to must be YYYY-MM-DD, got %q", f.to)
		}
		opts.To = t
	}
	if changed("refresh") {
		opts.Refresh = f.refresh
	}

	if changed("runs") {
		opts.Timeline.Runs = f.runs
	}
	if changed("policy") {
		opts.Policy = f.policy
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("step") {
		opts.Timeline.StepDuration = f.step
	}
	if changed("travel") {
		opts.Timeline.TravelDuration = f.travel
	}
	if changed("run-duration") {
		opts.Timeline.RunDuration = f.runDuration
	}
	if changed("hold") {
		opts.Timeline.HoldDuration = f.hold
	}

	if changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if changed("theme") {
		opts.Theme = f.theme
	}
	if changed("title") {
		opts.Title = f.title
	}
	if changed("labels") {
		opts.Labels = f.labels
	}
	if changed("static") {
		opts.Static = f.static
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	return nil
}

// resolveOptions layers flags and an optional login argument over the
// config file.
func (c *CLI) resolveOptions(cmd *cobra.Command, args []string, f *optionFlags) (pipeline.Options, error) {
	opts := c.config().PipelineOptions()
	if err := f.apply(cmd, &opts); err != nil {
		return opts, err
	}
	if len(args) > 0 {
		opts.Login = args[0]
	}
	opts.Logger = c.Logger
	return opts, nil
}
