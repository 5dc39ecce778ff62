// Package pipeline provides the generation pipeline for blockfall.
//
// This package implements the complete fetch → plan → render pipeline used by
// the CLI and the HTTP server, so both entry points produce byte-identical
// documents for the same inputs.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load the contribution calendar from GitHub, an input file, or
//     the snapshot archive when GitHub is unreachable
//  2. Plan: Pack the grid once per run and schedule the drops
//  3. Render: Generate output in various formats (SVG, JSON, PNG, PDF)
//
// # Usage
//
//	runner := pipeline.NewRunner(github.NewClient(token, c, nil), c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Login:   "octocat",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/integrations/github"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWeeks is the calendar window, matching GitHub's profile graph.
	DefaultWeeks = activity.MaxWeeks

	// DefaultPolicy is the default drop scheduling policy.
	DefaultPolicy = "drop"

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Fetch options
	Login   string    `json:"login"`
	Input   string    `json:"input,omitempty"` // calendar file used instead of GitHub
	Weeks   int       `json:"weeks,omitempty"`
	To      time.Time `json:"to,omitzero"` // reference date; defaults to today (UTC)
	Refresh bool      `json:"refresh,omitempty"`

	// Plan options
	Timeline timeline.Config `json:"timeline"`
	Policy   string          `json:"policy,omitempty"`
	Seed     uint32          `json:"seed,omitempty"` // overrides the derived base seed

	// Render options
	Formats []string      `json:"formats,omitempty"`
	Theme   string        `json:"theme,omitempty"`
	Layout  render.Layout `json:"layout"`
	Title   string        `json:"title,omitempty"`
	Labels  bool          `json:"labels,omitempty"`
	Static  bool          `json:"static,omitempty"`
	Scale   float64       `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Calendar is the fetched contribution calendar.
	Calendar *github.Calendar

	// Grid is the activity grid built from Calendar.
	Grid *activity.Grid

	// Timeline holds every run's placements and schedule.
	Timeline *timeline.Timeline

	// InputHash is the content hash of everything that shapes the artifacts
	// besides the render options.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks where inputs and outputs came from.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Total      int
	Cells      int
	Pieces     int
	FetchTime  time.Duration
	PlanTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FromArchive bool // Whether the calendar came from the snapshot archive
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return bferrors.New(bferrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := bferrors.ValidateLogin(o.Login); err != nil {
		return err
	}
	if o.Weeks == 0 {
		o.Weeks = DefaultWeeks
	}
	if o.Weeks < 1 || o.Weeks > activity.MaxWeeks {
		return bferrors.New(bferrors.ErrCodeInvalidInput, "weeks must be between 1 and %d, got %d", activity.MaxWeeks, o.Weeks)
	}
	if o.To.IsZero() {
		o.To = time.Now()
	}
	o.To = dateOf(o.To)

	o.Timeline = o.Timeline.WithDefaults()
	if err := o.Timeline.Validate(); err != nil {
		return err
	}
	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	if _, err := timeline.ByName(o.Policy); err != nil {
		return err
	}

	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := render.ThemeByName(o.Theme); err != nil {
		return err
	}
	if o.Scale <= 0 {
		return bferrors.New(bferrors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if s, ok := render.FindSentinel(o.Title); ok {
		return bferrors.New(bferrors.ErrCodeInvalidInput, "title must not contain %q", s)
	}
	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = slices.Compact(slices.Clone(o.Formats))
	if o.Theme == "" {
		o.Theme = render.DefaultTheme
	}
	if o.Layout == (render.Layout{}) {
		o.Layout = render.DefaultLayout()
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Range returns the calendar window to fetch: from the Sunday that starts the
// oldest requested week to the end of the reference day. GitHub rejects
// ranges longer than a year, so from is clamped to one year before To.
func (o *Options) Range() (from, to time.Time) {
	day := dateOf(o.To)
	to = day.Add(24*time.Hour - time.Second)
	from = day.AddDate(0, 0, -7*(max(o.Weeks, 1)-1))
	from = from.AddDate(0, 0, -int(from.Weekday()))
	if limit := day.AddDate(-1, 0, 1); from.Before(limit) {
		from = limit
	}
	return from, to
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string, seed uint32) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Theme:  o.Theme,
		Policy: o.Policy,
		Runs:   o.Timeline.Runs,
		Seed:   seed,
		Static: o.Static,
		Labels: o.Labels,
		Title:  o.Title,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
