package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/matzehuels/blockfall/pkg/activity"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme  Theme
	layout Layout
	title  string
	labels bool
	static bool
}

func WithTheme(t Theme) SVGOption   { return func(r *svgRenderer) { r.theme = t } }
func WithLayout(l Layout) SVGOption { return func(r *svgRenderer) { r.layout = l } }
func WithTitle(s string) SVGOption  { return func(r *svgRenderer) { r.title = s } }
func WithLabels() SVGOption         { return func(r *svgRenderer) { r.labels = true } }

// WithStatic drops the animation and draws the first run's pieces at rest.
// Converters without SMIL support (rsvg-convert) need this.
func WithStatic() SVGOption { return func(r *svgRenderer) { r.static = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: themes[DefaultTheme], layout: DefaultLayout()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws g as a static heatmap and tl as an animated overlay of
// falling pieces. The heatmap group never animates. Every piece ends inside
// the grid's pixel bounds, and the overlay is clipped to them while falling.
// A nil or empty timeline produces an empty overlay.
func RenderSVG(g *activity.Grid, tl *timeline.Timeline, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)
	if !r.layout.valid() {
		return nil, bferrors.New(bferrors.ErrCodeInvalidInput, "invalid layout %+v", r.layout)
	}

	w, h := r.layout.Canvas(g)
	bounds := r.layout.Bounds(g)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", EscapeXML(r.title))
	}
	fmt.Fprintf(&buf, "  <defs><clipPath id=\"grid-clip\"><rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/></clipPath></defs>\n",
		bounds.X, bounds.Y, bounds.W, bounds.H)
	fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n", r.theme.Background)

	r.renderHeader(&buf, g)
	r.renderHeatmap(&buf, g)
	if err := r.renderRuns(&buf, g, tl, bounds); err != nil {
		return nil, err
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *svgRenderer) renderHeader(buf *bytes.Buffer, g *activity.Grid) {
	if r.title != "" {
		fmt.Fprintf(buf, "  <text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-family=\"sans-serif\" font-size=\"12\">%s</text>\n",
			r.layout.MarginX, r.layout.MarginY+12, r.theme.Text, EscapeXML(r.title))
	}
	if !r.labels {
		return
	}
	buf.WriteString("  <g id=\"labels\" font-family=\"sans-serif\" font-size=\"9\">\n")
	for x, month := range monthStarts(g) {
		px, _ := r.layout.CellOrigin(x, 0)
		fmt.Fprintf(buf, "    <text x=\"%.2f\" y=\"%.2f\" fill=\"%s\">%s</text>\n",
			px, r.layout.MarginY+r.layout.Header-4, r.theme.Text, EscapeXML(month))
	}
	buf.WriteString("  </g>\n")
}

// monthStarts maps columns that contain the first day of a month to that
// month's short name. Columns without dates get no label.
func monthStarts(g *activity.Grid) map[int]string {
	out := map[int]string{}
	for x := range g.Width() {
		for y := range g.Height() {
			if d := g.Day(x, y); d.HasDate && d.Date.Day() == 1 {
				out[x] = d.Date.Month().String()[:3]
				break
			}
		}
	}
	return out
}

func (r *svgRenderer) renderHeatmap(buf *bytes.Buffer, g *activity.Grid) {
	buf.WriteString("  <g id=\"heatmap\">\n")
	for x := range g.Width() {
		for y := range g.Height() {
			c := r.layout.CellRect(x, y)
			d := g.Day(x, y)
			fmt.Fprintf(buf, "    <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"2\" fill=\"%s\"",
				c.X, c.Y, c.W, c.H, r.theme.level(g.Level(x, y)))
			if d.HasDate {
				fmt.Fprintf(buf, "><title>%s: %d</title></rect>\n", d.Date.Format(time.DateOnly), d.Count)
			} else {
				buf.WriteString("/>\n")
			}
		}
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderRuns(buf *bytes.Buffer, g *activity.Grid, tl *timeline.Timeline, bounds Rect) error {
	buf.WriteString("  <g id=\"runs\" clip-path=\"url(#grid-clip)\">\n")
	defer buf.WriteString("  </g>\n")
	if tl == nil || tl.Empty() {
		return nil
	}

	runs := tl.Runs
	if r.static {
		runs = runs[:1]
	}
	cycle := tl.Duration()
	for _, run := range runs {
		fmt.Fprintf(buf, "    <g class=\"run\" data-run=\"%d\">\n", run.Index)
		for _, e := range run.Entries {
			if err := r.renderPiece(buf, g, e, run.Start+tl.Config.RunDuration, cycle, bounds); err != nil {
				return err
			}
		}
		buf.WriteString("    </g>\n")
	}
	return nil
}

// renderPiece draws one entry. Cells sit at their final pixel position; the
// group is translated up by the spawn distance and falls into place between
// Begin and End, stays until runEnd, then hides for the rest of the cycle.
func (r *svgRenderer) renderPiece(buf *bytes.Buffer, g *activity.Grid, e timeline.Entry, runEnd, cycle float64, bounds Rect) error {
	p := e.Placement
	color := r.theme.piece(p.Kind)

	if r.static {
		fmt.Fprintf(buf, "      <g class=\"piece\" data-kind=\"%s\">\n", p.Kind)
	} else {
		dy := (e.FromY - float64(e.ToY)) * r.layout.Pitch()
		fmt.Fprintf(buf, "      <g class=\"piece\" data-kind=\"%s\" opacity=\"0\" transform=\"translate(0 %.2f)\">\n", p.Kind, dy)
		t0 := fraction(e.Begin, cycle, 0)
		t1 := fraction(e.End(), cycle, t0)
		t2 := fraction(runEnd, cycle, t1)
		fmt.Fprintf(buf, "        <animateTransform attributeName=\"transform\" type=\"translate\" values=\"0 %.2f;0 %.2f;0 0;0 0\" keyTimes=\"0;%.4f;%.4f;1\" calcMode=\"spline\" keySplines=\"0 0 1 1;0.55 0 1 0.45;0 0 1 1\" dur=\"%.2fs\" repeatCount=\"indefinite\"/>\n",
			dy, dy, t0, t1, cycle)
		fmt.Fprintf(buf, "        <animate attributeName=\"opacity\" values=\"0;1;0\" keyTimes=\"0;%.4f;%.4f\" calcMode=\"discrete\" dur=\"%.2fs\" repeatCount=\"indefinite\"/>\n",
			t0, t2, cycle)
	}

	for _, c := range p.Cells() {
		if !g.InBounds(c.X, c.Y) {
			return bferrors.New(bferrors.ErrCodeInternal, "run %d piece %d covers cell %v outside the grid", e.Run, e.Index, c)
		}
		rect := r.layout.CellRect(c.X, c.Y)
		if !bounds.Contains(rect) {
			return bferrors.New(bferrors.ErrCodeInternal, "run %d piece %d lands outside the grid bounds", e.Run, e.Index)
		}
		fmt.Fprintf(buf, "        <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"2\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"/>\n",
			rect.X, rect.Y, rect.W, rect.H, r.theme.level(g.Level(c.X, c.Y)), color)
	}
	buf.WriteString("      </g>\n")
	return nil
}

// fraction converts t to a keyTime in [floor, 1].
func fraction(t, cycle, floor float64) float64 {
	if cycle <= 0 {
		return floor
	}
	return max(floor, min(1, t/cycle))
}

// EscapeXML escapes s for use in element text or attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
