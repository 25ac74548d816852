// Package pkg provides the core libraries for Spritetag icon extraction and tagging.
//
// # Overview
//
// Spritetag takes an SVG sprite sheet, splits it into standalone icons and
// asks a vision model for a human-readable title and search keywords for each
// one. The pkg directory is organized into four main areas:
//
//  1. [sprite], [svg], [datauri] - Decomposition of sprites into icons
//  2. [render], [raster] - Rendering backends for measuring and rasterizing
//  3. [tagging], [integrations] - Icon descriptions from the Gemini API
//  4. [pipeline], [session], [io] - Orchestration, search and persistence
//
// # Architecture
//
// The typical data flow through Spritetag:
//
//	SVG sprite
//	     ↓
//	[sprite] package (symbols → top-level groups → whole document)
//	     ↓
//	[raster] package (each icon to a fixed-size PNG)
//	     ↓
//	[tagging] package (title + keywords, cached)
//	     ↓
//	[pipeline] package (events, catalog, live filter)
//
// # Quick Start
//
// Tag every icon of a sprite and search the result:
//
//	backend := native.New()
//	runner := pipeline.NewRunner(
//	    sprite.NewDecomposer(backend, logger),
//	    raster.NewProjector(backend),
//	    tagging.NewTagger(gemini.NewClient(apiKey, gemini.DefaultModel), logger),
//	    logger,
//	)
//
//	catalog := pipeline.NewCatalog()
//	_, err := runner.Process(ctx, pipeline.Upload{Name: "icons.svg", Content: src}, catalog)
//
//	catalog.SetQuery("arrow")
//	for _, icon := range catalog.Displayed() {
//	    fmt.Println(icon.ID, icon.Title, icon.Keywords)
//	}
//
// # Main Packages
//
// [datauri] - Unicode-safe base64 data URIs for SVG and PNG payloads.
//
// [svg] - Parsed SVG documents: queries, namespaces, viewBox handling and
// serialization of standalone icons.
//
// [sprite] - The decomposer and its three strategies. Groups are measured
// through a [render] backend to compute a tight viewBox.
//
// [render] - Measurer and Rasterizer interfaces with three backends: native
// (pure Go), chrome (headless browser) and rsvg (rsvg-convert).
//
// [raster] - Exact-size PNG projection of icons for the vision model.
//
// [tagging] - Prompting, result normalization and description caching.
//
// [integrations] - Shared HTTP client with retries and status mapping, and the
// Gemini client in its own subpackage.
//
// [pipeline] - The sequential tagging runner, its events and the searchable
// catalog. Used by both the CLI and the HTTP server.
//
// [session] - Upload sessions of the HTTP server with event replay.
//
// [io] - JSON catalog export/import and per-icon .svg files.
//
// [cache] - File, Redis and no-op caches behind one interface.
//
// [config] - TOML file and environment configuration.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/sprite/...       # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// The chrome and rsvg backend tests skip when no browser or rsvg-convert
// binary is available.
//
// [datauri]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/datauri
// [svg]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/svg
// [sprite]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/sprite
// [render]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/render
// [raster]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/raster
// [tagging]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/tagging
// [integrations]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/integrations
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/session
// [io]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/spritetag/pkg/config
package pkg
