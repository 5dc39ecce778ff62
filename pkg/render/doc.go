// Package render draws a planned timeline over its activity grid.
//
// # Overview
//
//   - [RenderSVG] writes a self-contained animated SVG: a static heatmap
//     group plus one group per run whose pieces fall with SMIL
//     animateTransform and hide when their run ends.
//   - [RenderJSON] exports the grid and every timeline entry with pixel
//     coordinates for other front ends.
//   - [ToPNG] and [ToPDF] convert a static SVG with the external
//     rsvg-convert tool (from librsvg).
//
// # Geometry
//
// [Layout] maps grid cells to pixels. Column x is one week, row y is one
// weekday, Sunday at the top. Every landed piece stays inside
// [Layout.Bounds].
//
// # Integrity
//
// [CheckIntegrity] parses generated SVG and rejects malformed XML and
// non-finite numeric attributes. The pipeline runs it on every document.
//
//	svg, err := render.RenderSVG(g, tl, render.WithTheme(theme), render.WithLabels())
//	png, err := render.ToPNG(ctx, staticSVG, 2.0)
package render
