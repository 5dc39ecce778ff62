package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/pipeline"
)

var levelLabels = [5]string{"none", "1-2", "3-5", "6-9", "10+"}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		flags  optionFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats [login]",
		Short: "Summarize a contribution calendar",
		Long: `Summarize a contribution calendar: totals, streaks, and the distribution
of daily counts over active days.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, args, &flags)
			if err != nil {
				return err
			}
			return c.runStats(cmd.Context(), opts, asJSON)
		},
	}

	flags.registerFetch(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, opts pipeline.Options, asJSON bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cal, fromArchive, err := runner.Fetch(ctx, opts)
	if err != nil {
		return err
	}
	g, err := pipeline.BuildGrid(cal, opts.Weeks)
	if err != nil {
		return err
	}
	s := activity.Summarize(g)

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	if fromArchive {
		printWarning("GitHub was unreachable; showing the archived calendar")
	}
	fmt.Fprintln(stdout, StyleTitle.Render(opts.Login))
	printNewline()
	printKeyValue("Total", StyleNumber.Render(strconv.Itoa(s.Total)))
	printKeyValue("Active days", fmt.Sprintf("%d of %d", s.ActiveDays, s.Days))
	printKeyValue("Streak", fmt.Sprintf("%d current · %d longest", s.CurrentStreak, s.LongestStreak))
	if !s.BusiestDate.IsZero() {
		printKeyValue("Busiest", fmt.Sprintf("%d on %s", s.BusiestCount, s.BusiestDate.Format("Mon Jan 2, 2006")))
	}
	printKeyValue("Per day", fmt.Sprintf("mean %.1f · median %.1f · p90 %.1f · σ %.1f", s.Mean, s.Median, s.P90, s.StdDev))
	printNewline()
	fmt.Fprintln(stdout, levelTable(s))
	return nil
}

// levelTable renders days per intensity bucket.
func levelTable(s activity.Summary) string {
	rows := make([][]string, 0, len(s.Levels))
	for i, n := range s.Levels {
		share := 0.0
		if s.Days > 0 {
			share = 100 * float64(n) / float64(s.Days)
		}
		rows = append(rows, []string{levelLabels[i], strconv.Itoa(n), fmt.Sprintf("%.0f%%", share)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("COUNT", "DAYS", "SHARE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(colorCyan)
			}
			if col > 0 {
				return style.Foreground(colorWhite).Align(lipgloss.Right)
			}
			return style.Foreground(colorGray)
		}).
		String()
}
