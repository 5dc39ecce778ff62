package render

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	layout   Layout
	identity string
	theme    string
}

// WithJSONLayout records pixel geometry alongside grid coordinates.
func WithJSONLayout(l Layout) JSONOption { return func(r *jsonRenderer) { r.layout = l } }

// WithJSONIdentity records whose calendar the timeline was built from.
func WithJSONIdentity(login string) JSONOption { return func(r *jsonRenderer) { r.identity = login } }

// WithJSONTheme records the theme name for round-trip rendering.
func WithJSONTheme(name string) JSONOption { return func(r *jsonRenderer) { r.theme = name } }

type jsonOutput struct {
	Identity string             `json:"identity,omitempty"`
	Theme    string             `json:"theme,omitempty"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Total    int                `json:"total"`
	LastDate string             `json:"last_date,omitempty"`
	Counts   [][]int            `json:"counts"`
	Layout   Layout             `json:"layout"`
	Canvas   [2]float64         `json:"canvas"`
	Duration float64            `json:"duration"`
	Timeline *timeline.Timeline `json:"timeline"`
}

// RenderJSON exports the grid and timeline as a pretty-printed JSON document,
// for external players and for debugging a packing.
func RenderJSON(g *activity.Grid, tl *timeline.Timeline, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{layout: DefaultLayout()}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := r.layout.Canvas(g)
	out := jsonOutput{
		Identity: r.identity,
		Theme:    r.theme,
		Width:    g.Width(),
		Height:   g.Height(),
		Total:    g.Total(),
		Counts:   g.Counts(),
		Layout:   r.layout,
		Canvas:   [2]float64{w, h},
		Timeline: tl,
	}
	if last, ok := g.LastDate(); ok {
		out.LastDate = last.Format(time.DateOnly)
	}
	if tl != nil {
		out.Duration = tl.Duration()
	}
	return json.MarshalIndent(out, "", "  ")
}
