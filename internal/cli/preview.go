package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/pipeline"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// previewFrame is the playback tick.
const previewFrame = 50 * time.Millisecond

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "preview [login]",
		Short: "Play the animation in the terminal",
		Long: `Play the animation in the terminal.

Runs the same fetch and planning as generate and plays the runs back with
one character cell per day. Nothing is written to disk.

Keys: space pause, n next run, r restart, +/- speed, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), opts)
		},
	}

	flags.registerFetch(cmd)
	flags.registerPlan(cmd)
	cmd.Flags().StringVar(&flags.theme, "theme", render.DefaultTheme, "colour theme: dark, light")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	theme, err := render.ThemeByName(opts.Theme)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %s...", opts.Login))
	spinner.Start()
	cal, _, err := runner.Fetch(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	g, err := pipeline.BuildGrid(cal, opts.Weeks)
	if err != nil {
		spinner.StopWithError("Invalid calendar")
		return err
	}
	spinner.SetMessage(fmt.Sprintf("Planning %d runs...", opts.Timeline.Runs))
	tl, err := runner.Plan(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Planning failed")
		return err
	}
	spinner.Stop()

	if tl.Empty() {
		printInfo("No contributions to animate for %s", opts.Login)
		return nil
	}

	m := newPreviewModel(opts.Login, g, tl, theme)
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// previewModel - terminal playback of a timeline
// =============================================================================

type previewTickMsg struct{}

type previewModel struct {
	login string
	grid  *activity.Grid
	tl    *timeline.Timeline
	theme render.Theme

	run     int
	elapsed float64 // seconds since the start of the current run
	speed   float64
	paused  bool
}

func newPreviewModel(login string, g *activity.Grid, tl *timeline.Timeline, theme render.Theme) previewModel {
	return previewModel{login: login, grid: g, tl: tl, theme: theme, speed: 1}
}

func previewTick() tea.Cmd {
	return tea.Tick(previewFrame, func(time.Time) tea.Msg { return previewTickMsg{} })
}

func (m previewModel) Init() tea.Cmd {
	return previewTick()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "n", "right":
			m = m.nextRun()
		case "r":
			m.elapsed = 0
		case "+", "=":
			m.speed = math.Min(m.speed*2, 8)
		case "-":
			m.speed = math.Max(m.speed/2, 0.125)
		}
	case previewTickMsg:
		if !m.paused {
			m = m.advance(previewFrame.Seconds() * m.speed)
		}
		return m, previewTick()
	}
	return m, nil
}

// advance moves playback forward by dt seconds, wrapping into the next run.
func (m previewModel) advance(dt float64) previewModel {
	m.elapsed += dt
	if m.elapsed >= m.tl.Config.RunDuration {
		m = m.nextRun()
	}
	return m
}

func (m previewModel) nextRun() previewModel {
	m.run = (m.run + 1) % len(m.tl.Runs)
	m.elapsed = 0
	return m
}

func (m previewModel) View() string {
	var b strings.Builder

	status := fmt.Sprintf("run %d/%d · %.1fs · %gx", m.run+1, len(m.tl.Runs), m.elapsed, m.speed)
	if m.paused {
		status += " · paused"
	}
	b.WriteString(StyleTitle.Render(m.login) + "  " + StyleDim.Render(status))
	b.WriteString("\n\n")
	b.WriteString(m.canvas())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  n next run  r restart  +/- speed  q quit"))
	b.WriteString("\n")
	return b.String()
}

// canvas draws the spawn area and the grid, two terminal columns per cell.
func (m previewModel) canvas() string {
	w, h := m.grid.Width(), m.grid.Height()
	rows := timeline.SpawnRows + h
	cells := make([][]string, rows)

	empty := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Levels[0])).Render("··")
	pending := StyleDim.Render("░░")
	for y := range cells {
		cells[y] = make([]string, w)
		for x := range w {
			gy := y - timeline.SpawnRows
			switch {
			case gy < 0:
				cells[y][x] = "  "
			case m.grid.Occupied(x, gy):
				cells[y][x] = pending
			default:
				cells[y][x] = empty
			}
		}
	}

	run := m.tl.Runs[m.run]
	now := run.Start + m.elapsed
	for _, e := range run.Entries {
		if now < e.Begin {
			continue
		}
		shift := 0
		color := m.theme.Pieces[e.Placement.Kind]
		if now < e.End() {
			y := e.FromY + (float64(e.ToY)-e.FromY)*(now-e.Begin)/e.Duration
			shift = int(math.Round(y)) - e.ToY
		}
		for _, cell := range e.Placement.Cells() {
			y := cell.Y + shift + timeline.SpawnRows
			if y < 0 || y >= rows || cell.X < 0 || cell.X >= w {
				continue
			}
			if shift == 0 {
				color = m.theme.Levels[m.grid.Level(cell.X, cell.Y)]
			}
			cells[y][cell.X] = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
		}
	}

	var b strings.Builder
	for _, row := range cells {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}
