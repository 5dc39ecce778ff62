package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfall/pkg/cache"
	bferrors "github.com/matzehuels/blockfall/pkg/errors"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/shape"
)

// check is one doctor probe. A failed required check fails the command.
type check struct {
	name     string
	required bool
	run      func(ctx context.Context) (string, error)
}

// doctorCommand creates the doctor command.
func (c *CLI) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the installation and configuration",
		Long: `Check the installation and configuration.

Verifies the piece catalog, looks for rsvg-convert (needed for png and pdf
output), and opens the configured cache and archive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDoctor(cmd.Context(), c.doctorChecks())
		},
	}
}

func (c *CLI) doctorChecks() []check {
	cfg := c.config()
	return []check{
		{name: "pieces", required: true, run: func(context.Context) (string, error) {
			if err := shape.Validate(); err != nil {
				return "", err
			}
			return fmt.Sprintf("%d kinds, rotations consistent", len(shape.Kinds())), nil
		}},
		{name: "converter", run: func(ctx context.Context) (string, error) {
			return render.ConverterVersion(ctx)
		}},
		{name: "token", run: func(context.Context) (string, error) {
			if cfg.Token == "" {
				return "", bferrors.New(bferrors.ErrCodeConfig, "not set; only --input works")
			}
			return "set", nil
		}},
		{name: "cache", required: true, run: func(ctx context.Context) (string, error) {
			cc, err := cfg.OpenCache(ctx, c.noCache)
			if err != nil {
				return "", err
			}
			defer cc.Close()
			if fc, ok := cc.(*cache.FileCache); ok {
				return "file " + fc.Dir(), nil
			}
			return fmt.Sprintf("%T", cc), nil
		}},
		{name: "archive", required: true, run: func(ctx context.Context) (string, error) {
			s, err := cfg.OpenArchive(ctx)
			if err != nil {
				return "", err
			}
			if s == nil {
				return "disabled", nil
			}
			defer s.Close()
			return cfg.Archive.DSN, nil
		}},
	}
}

func (c *CLI) runDoctor(ctx context.Context, checks []check) error {
	failed := 0
	for _, ch := range checks {
		detail, err := ch.run(ctx)
		switch {
		case err == nil:
			printSuccess("%-10s %s", ch.name, StyleDim.Render(detail))
		case ch.required:
			failed++
			printError("%-10s %s", ch.name, bferrors.UserMessage(err))
		default:
			printWarning("%-10s %s", ch.name, bferrors.UserMessage(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("doctor: %d required check(s) failed", failed)
	}
	return nil
}
