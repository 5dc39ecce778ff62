package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/blockfall/pkg/activity"
	"github.com/matzehuels/blockfall/pkg/observability"
	"github.com/matzehuels/blockfall/pkg/render"
	"github.com/matzehuels/blockfall/pkg/timeline"
)

// Render generates output artifacts in the requested formats. Every SVG,
// including the one fed to the PNG and PDF converters, passes
// render.CheckIntegrity before it is returned.
func Render(ctx context.Context, g *activity.Grid, tl *timeline.Timeline, opts Options) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	theme, err := render.ThemeByName(opts.Theme)
	if err != nil {
		return nil, err
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte

		switch format {
		case FormatSVG:
			data, err = renderSVG(g, tl, theme, opts, opts.Static)
		case FormatJSON:
			data, err = render.RenderJSON(g, tl,
				render.WithJSONLayout(opts.Layout),
				render.WithJSONIdentity(opts.Login),
				render.WithJSONTheme(theme.Name))
		case FormatPNG, FormatPDF:
			var svg []byte
			if svg, err = renderSVG(g, tl, theme, opts, true); err != nil {
				break
			}
			if format == FormatPNG {
				data, err = render.ToPNG(ctx, svg, opts.Scale)
			} else {
				data, err = render.ToPDF(ctx, svg)
			}
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderSVG(g *activity.Grid, tl *timeline.Timeline, theme render.Theme, opts Options, static bool) ([]byte, error) {
	svgOpts := []render.SVGOption{
		render.WithTheme(theme),
		render.WithLayout(opts.Layout),
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, render.WithTitle(opts.Title))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, render.WithLabels())
	}
	if static {
		svgOpts = append(svgOpts, render.WithStatic())
	}

	doc, err := render.RenderSVG(g, tl, svgOpts...)
	if err != nil {
		return nil, err
	}
	if err := render.CheckIntegrity(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
