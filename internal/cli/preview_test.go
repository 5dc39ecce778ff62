package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

func testPreview(t *testing.T) previewModel {
	t.Helper()
	g := activity.FromRows([][]int{
		{1, 1, 0, 2},
		{1, 1, 0, 2},
		{0, 0, 0, 3},
		{4, 4, 4, 4},
	})
	tl, err := timeline.Plan(g, 7, timeline.Config{Runs: 3}, timeline.Drop{})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	theme, err := render.ThemeByName(render.DefaultTheme)
	if err != nil {
		t.Fatal(err)
	}
	return newPreviewModel("octocat", g, tl, theme)
}

func TestPreviewAdvance(t *testing.T) {
	m := testPreview(t)

	m = m.advance(1)
	if m.run != 0 || m.elapsed != 1 {
		t.Errorf("after 1s: run %d elapsed %g", m.run, m.elapsed)
	}

	m = m.advance(m.tl.Config.RunDuration)
	if m.run != 1 || m.elapsed != 0 {
		t.Errorf("after a full run: run %d elapsed %g", m.run, m.elapsed)
	}

	m.run = len(m.tl.Runs) - 1
	m = m.nextRun()
	if m.run != 0 {
		t.Errorf("nextRun() from the last run = %d, want 0", m.run)
	}
}

func TestPreviewKeys(t *testing.T) {
	m := testPreview(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !next.(previewModel).paused {
		t.Error("space should pause")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if got := next.(previewModel).speed; got != 2 {
		t.Errorf("speed after + = %g, want 2", got)
	}

	paused := m
	paused.paused = true
	next, cmd := paused.Update(previewTickMsg{})
	if next.(previewModel).elapsed != 0 {
		t.Error("paused model advanced")
	}
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestPreviewCanvas(t *testing.T) {
	m := testPreview(t)

	lines := strings.Split(strings.TrimSuffix(m.canvas(), "\n"), "\n")
	if want := timeline.SpawnRows + m.grid.Height(); len(lines) != want {
		t.Fatalf("canvas has %d rows, want %d", len(lines), want)
	}

	// At the end of a run every piece has landed, so no cell is pending.
	m.elapsed = m.tl.Config.RunDuration - 0.01
	if strings.Contains(m.canvas(), "░") {
		t.Error("pending cells remain after every piece landed")
	}

	if !strings.Contains(m.View(), "run 1/3") {
		t.Error("View() is missing the run counter")
	}
}
