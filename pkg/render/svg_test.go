package render

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/blockfall/pkg/activity"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/pack"
	"github.com/matzehuels/blockfall/pkg/rng"
	"github.com/matzehuels/blockfall/pkg/shape"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

func sampleGrid() *activity.Grid {
	start := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC) // Sunday
	next := rng.New(17)
	var days []activity.Day
	for i := range 10 * activity.DaysPerWeek {
		d := activity.Day{Date: start.AddDate(0, 0, i), HasDate: true}
		if next() < 0.6 {
			d.Count = next.Intn(15)
		}
		days = append(days, d)
	}
	return activity.FromDays(days, 10)
}

func samplePlan(t *testing.T, g *activity.Grid) *timeline.Timeline {
	t.Helper()
	cfg := timeline.DefaultConfig()
	cfg.Runs = 3
	tl, err := timeline.Plan(g, rng.BaseSeed("octocat", g.Total(), time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)), cfg, timeline.Drop{})
	if err != nil {
		t.Fatal(err)
	}
	return tl
}

// group returns the raw markup of the element <g id="id">...</g>.
func group(t *testing.T, doc []byte, id string) string {
	t.Helper()
	s := string(doc)
	start := strings.Index(s, `<g id="`+id+`"`)
	if start < 0 {
		t.Fatalf("no <g id=%q> in document", id)
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "<g"):
			depth++
		case strings.HasPrefix(s[i:], "</g>"):
			depth--
			if depth == 0 {
				return s[start : i+len("</g>")]
			}
		}
	}
	t.Fatalf("unterminated <g id=%q>", id)
	return ""
}

func TestRenderSVGWellFormed(t *testing.T) {
	g := sampleGrid()
	tl := samplePlan(t, g)

	doc, err := RenderSVG(g, tl, WithTitle(`octocat & "friends" <3`), WithLabels())
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckIntegrity(doc); err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if !bytes.Contains(doc, []byte("octocat &amp; &#34;friends&#34; &lt;3")) {
		t.Error("title is not escaped")
	}
	if !bytes.Contains(doc, []byte(">Sep</text>")) {
		t.Error("month label missing")
	}
}

func TestRenderSVGHeatmapIsStatic(t *testing.T) {
	g := sampleGrid()
	doc, err := RenderSVG(g, samplePlan(t, g))
	if err != nil {
		t.Fatal(err)
	}
	heat := group(t, doc, "heatmap")
	for _, tag := range []string{"<animate", "<set", "opacity"} {
		if strings.Contains(heat, tag) {
			t.Errorf("heatmap contains %s", tag)
		}
	}
	if n := strings.Count(heat, "<rect"); n != g.Width()*g.Height() {
		t.Errorf("heatmap has %d rects, want %d", n, g.Width()*g.Height())
	}
}

var rectRE = regexp.MustCompile(`<rect x="([0-9.]+)" y="([0-9.]+)" width="([0-9.]+)" height="([0-9.]+)"`)

func TestRenderSVGOverlayWithinBounds(t *testing.T) {
	g := sampleGrid()
	tl := samplePlan(t, g)
	l := DefaultLayout()
	doc, err := RenderSVG(g, tl, WithLayout(l))
	if err != nil {
		t.Fatal(err)
	}

	runs := group(t, doc, "runs")
	bounds := l.Bounds(g)
	matches := rectRE.FindAllStringSubmatch(runs, -1)

	want := 0
	for _, r := range tl.Runs {
		for _, p := range r.Placements {
			want += len(p.Offsets)
		}
	}
	if len(matches) != want {
		t.Fatalf("overlay has %d rects, want %d", len(matches), want)
	}
	for _, m := range matches {
		var v [4]float64
		for i := range v {
			v[i], _ = strconv.ParseFloat(m[i+1], 64)
		}
		rect := Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
		if !bounds.Contains(rect) {
			t.Errorf("overlay rect %+v outside grid bounds %+v", rect, bounds)
		}
	}
	if n := strings.Count(runs, "<animateTransform"); n != len(tl.Entries()) {
		t.Errorf("%d animateTransform elements for %d entries", n, len(tl.Entries()))
	}
}

func TestRenderSVGEmptyTimeline(t *testing.T) {
	g := activity.FromRows([][]int{{0, 0, 0}, {0, 0, 0}})
	tl, err := timeline.Plan(g, 1, timeline.DefaultConfig(), timeline.Drop{})
	if err != nil {
		t.Fatal(err)
	}
	for _, tl := range []*timeline.Timeline{tl, nil} {
		doc, err := RenderSVG(g, tl)
		if err != nil {
			t.Fatal(err)
		}
		if err := CheckIntegrity(doc); err != nil {
			t.Fatal(err)
		}
		runs := group(t, doc, "runs")
		if strings.Contains(runs, "<rect") {
			t.Errorf("empty timeline rendered pieces: %s", runs)
		}
	}
}

func TestRenderSVGStatic(t *testing.T) {
	g := sampleGrid()
	tl := samplePlan(t, g)
	doc, err := RenderSVG(g, tl, WithStatic())
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(doc, []byte("<animate")) {
		t.Error("static render contains animation")
	}
	if n := bytes.Count(doc, []byte(`class="run"`)); n != 1 {
		t.Errorf("static render has %d runs, want 1", n)
	}
}

func TestRenderSVGRejectsOutOfBoundsPiece(t *testing.T) {
	g := activity.FromRows([][]int{{1, 1}})
	tl := &timeline.Timeline{
		Config: timeline.DefaultConfig(),
		Runs: []timeline.Run{{Entries: []timeline.Entry{{
			Placement: pack.Placement{Kind: shape.I, Offsets: shape.Rotations(shape.I)[0]},
			Duration:  0.6,
		}}}},
	}
	_, err := RenderSVG(g, tl)
	if !bferrors.Is(err, bferrors.ErrCodeInternal) {
		t.Errorf("RenderSVG = %v, want INTERNAL_ERROR", err)
	}
}

func TestRenderSVGKeyTimesMonotonic(t *testing.T) {
	g := sampleGrid()
	doc, err := RenderSVG(g, samplePlan(t, g))
	if err != nil {
		t.Fatal(err)
	}
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, a := range se.Attr {
			if a.Name.Local != "keyTimes" {
				continue
			}
			prev := -1.0
			for _, f := range strings.Split(a.Value, ";") {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil || v < prev || v > 1 {
					t.Fatalf("bad keyTimes %q", a.Value)
				}
				prev = v
			}
		}
	}
}

func TestLayoutCellOrigin(t *testing.T) {
	l := Layout{Cell: 10, Gap: 2, MarginX: 5, MarginY: 7, Header: 20}
	x, y := l.CellOrigin(3, 4)
	if x != 5+3*12 || y != 7+20+4*12 {
		t.Errorf("CellOrigin(3,4) = (%v,%v)", x, y)
	}
	g := activity.FromRows([][]int{{0, 0, 0}, {0, 0, 0}})
	b := l.Bounds(g)
	if b != (Rect{X: 5, Y: 27, W: 34, H: 22}) {
		t.Errorf("Bounds = %+v", b)
	}
	w, h := l.Canvas(g)
	if w != 44 || h != 56 {
		t.Errorf("Canvas = %v x %v", w, h)
	}
}

func TestThemeByName(t *testing.T) {
	for _, name := range Themes() {
		th, err := ThemeByName(name)
		if err != nil || th.Name != name {
			t.Errorf("ThemeByName(%q) = %v, %v", name, th.Name, err)
		}
	}
	if th, _ := ThemeByName(""); th.Name != DefaultTheme {
		t.Errorf("empty theme = %q", th.Name)
	}
	if _, err := ThemeByName("neon"); !bferrors.Is(err, bferrors.ErrCodeInvalidTheme) {
		t.Errorf("ThemeByName(neon) = %v", err)
	}
}
