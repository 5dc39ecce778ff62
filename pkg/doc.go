// Package pkg provides the core libraries for blockfall, which animates a
// GitHub contribution calendar as falling tetromino pieces.
//
// # Overview
//
// The pkg directory is organized by stage:
//
//  1. [integrations] - GitHub GraphQL client and calendar files
//  2. [activity] - The week-by-weekday grid and its summary statistics
//  3. [rng], [shape], [pack] - Seeded randomness, the piece catalog and the greedy packer
//  4. [timeline] - Drop scheduling across runs
//  5. [render] - SVG and JSON output, PNG/PDF conversion
//  6. [pipeline] - Orchestration (fetch → plan → render) with caching
//  7. [cache], [snapshot] - Response and artifact caching, calendar archive
//
// # Architecture
//
// The typical data flow:
//
//	GitHub GraphQL / calendar file
//	         ↓
//	    [activity] grid (weeks × 7 days)
//	         ↓
//	    [pack] placements per run, seeded by [rng]
//	         ↓
//	    [timeline] entries (begin, duration, spawn row)
//	         ↓
//	    [render] animated SVG / JSON / PNG / PDF
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/blockfall/pkg/activity"
//	    "github.com/matzehuels/blockfall/pkg/render"
//	    "github.com/matzehuels/blockfall/pkg/timeline"
//	)
//
//	g := activity.FromRows(counts)
//	tl, err := timeline.Plan(g, seed, timeline.DefaultConfig(), timeline.Drop{})
//	svg, err := render.RenderSVG(g, tl)
//
// Most callers should go through [pipeline.Runner], which adds fetching,
// caching and multiple output formats.
package pkg
