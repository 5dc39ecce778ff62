package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/integrations/github"
	"github.com/matzehuels/blockfall/pkg/observability"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/rng"
	"github.com/matzehuels/blockfall/pkg/snapshot"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// CalendarProvider loads a contribution calendar.
// [github.Client] and [github.FileProvider] implement it.
type CalendarProvider interface {
	FetchCalendar(ctx context.Context, login string, from, to time.Time, refresh bool) (*github.Calendar, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Provider CalendarProvider
	Archive  snapshot.Store // optional
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(p CalendarProvider, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Provider: p,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete fetch → plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	cal, fromArchive, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Calendar = cal
	result.CacheInfo.FromArchive = fromArchive
	result.Stats.FetchTime = time.Since(fetchStart)

	g, err := BuildGrid(cal, opts.Weeks)
	if err != nil {
		return nil, err
	}
	result.Grid = g
	result.Stats.Total = g.Total()
	result.Stats.Cells = len(g.OccupiedCells())
	result.InputHash = inputHash(opts, g)

	r.Logger.Info("loaded calendar",
		"login", opts.Login,
		"weeks", g.Width(),
		"contributions", g.Total(),
		"duration", result.Stats.FetchTime)

	// Stage 2: Plan
	planStart := time.Now()
	tl, err := r.Plan(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Timeline = tl
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.Pieces = len(tl.Entries())

	r.Logger.Info("planned runs",
		"runs", len(tl.Runs),
		"pieces", result.Stats.Pieces,
		"seed", tl.BaseSeed,
		"duration", result.Stats.PlanTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, g, tl, result.InputHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch loads the calendar for opts. An input file takes precedence over the
// provider. When the provider fails with a transient error and an archive is
// configured, the latest archived calendar is used instead; the second return
// value reports that.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*github.Calendar, bool, error) {
	provider := r.Provider
	if opts.Input != "" {
		provider = github.FileProvider{Path: opts.Input}
	}
	if provider == nil {
		return nil, false, bferrors.New(bferrors.ErrCodeConfig, "no calendar source: set a GitHub token or pass an input file")
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, opts.Login)
	start := time.Now()

	from, to := opts.Range()
	cal, err := provider.FetchCalendar(ctx, opts.Login, from, to, opts.Refresh)
	if err == nil {
		hooks.OnFetchComplete(ctx, opts.Login, countDays(cal), time.Since(start), nil)
		if r.Archive != nil && opts.Input == "" {
			if err := r.Archive.Save(ctx, snapshot.New(opts.Login, from, to, cal)); err != nil {
				r.Logger.Warn("archive calendar", "login", opts.Login, "err", err)
			}
		}
		return cal, false, nil
	}
	hooks.OnFetchComplete(ctx, opts.Login, 0, time.Since(start), err)

	if r.Archive == nil || !transient(err) {
		return nil, false, err
	}
	snap, archErr := r.Archive.Latest(ctx, opts.Login)
	if archErr != nil {
		r.Logger.Debug("no archived calendar", "login", opts.Login, "err", archErr)
		return nil, false, err
	}
	r.Logger.Warn("GitHub unavailable, using archived calendar",
		"login", opts.Login,
		"fetched_at", snap.FetchedAt.Format(time.RFC3339),
		"err", bferrors.UserMessage(err))
	return snap.Calendar, true, nil
}

// BuildGrid converts a calendar into the activity grid.
func BuildGrid(cal *github.Calendar, weeks int) (*activity.Grid, error) {
	ws, err := cal.ToWeeks()
	if err != nil {
		return nil, bferrors.Wrap(bferrors.ErrCodeInvalidInput, err, "calendar for %s", cal.Login)
	}
	return activity.FromWeeks(ws, weeks), nil
}

// Plan derives the base seed and builds the timeline.
func (r *Runner) Plan(ctx context.Context, g *activity.Grid, opts Options) (*timeline.Timeline, error) {
	policy, err := timeline.ByName(opts.Policy)
	if err != nil {
		return nil, err
	}
	base := opts.Seed
	if base == 0 {
		base = rng.BaseSeed(opts.Login, g.Total(), opts.To)
	}

	hooks := observability.Pipeline()
	hooks.OnPlanStart(ctx, opts.Timeline.Runs, len(g.OccupiedCells()))
	start := time.Now()
	tl, err := timeline.Plan(g, base, opts.Timeline, policy)
	pieces := 0
	if tl != nil {
		pieces = len(tl.Entries())
	}
	hooks.OnPlanComplete(ctx, pieces, time.Since(start), err)
	if err != nil {
		return nil, bferrors.Wrap(bferrors.ErrCodeInternal, err, "plan timeline")
	}
	return tl, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *activity.Grid, tl *timeline.Timeline, hash string, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Cache()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format, tl.BaseSeed))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, "artifact")
				break
			}
			hooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, g, tl, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format, tl.BaseSeed))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache artifact", "format", format, "err", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Archive != nil {
		if aerr := r.Archive.Close(); err == nil {
			err = aerr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// inputHash keys artifacts by grid content, geometry and pacing. The render
// options that also matter are part of cache.ArtifactKeyOpts.
func inputHash(opts Options, g *activity.Grid) string {
	in := struct {
		Login    string          `json:"login"`
		Counts   [][]int         `json:"counts"`
		Last     string          `json:"last,omitempty"`
		Layout   render.Layout   `json:"layout"`
		Timeline timeline.Config `json:"timeline"`
	}{
		Login:    opts.Login,
		Counts:   g.Counts(),
		Layout:   opts.Layout,
		Timeline: opts.Timeline,
	}
	if last, ok := g.LastDate(); ok {
		in.Last = last.Format(time.DateOnly)
	}
	data, err := json.Marshal(in)
	if err != nil {
		panic(fmt.Sprintf("pipeline: marshal input hash: %v", err))
	}
	return cache.Hash(data)
}

func countDays(cal *github.Calendar) int {
	n := 0
	for _, w := range cal.Weeks {
		n += len(w.Days)
	}
	return n
}

// transient reports whether a fetch error may clear up on its own.
func transient(err error) bool {
	switch bferrors.GetCode(err) {
	case bferrors.ErrCodeNetwork, bferrors.ErrCodeRateLimited:
		return true
	}
	return false
}
