// Package render defines the rendering capabilities sprite decomposition and
// rasterization depend on.
//
// # Overview
//
// Two operations need a real SVG renderer: measuring the bounding box of a
// group (decomposition tier 2) and drawing an icon into a bitmap (the raster
// projector). Both are expressed as small interfaces so the decomposition and
// tagging code never depends on a particular engine:
//
//   - [Measurer]: mounts a document on an off-screen [Surface] and answers
//     bounding-box queries for its elements
//   - [Rasterizer]: draws standalone SVG markup into an exact-size image
//   - [Backend]: both of the above
//
// # Backends
//
// Implementations live in subpackages:
//
//   - [native]: pure Go (oksvg/rasterx), no external processes
//   - [chrome]: headless Chrome via go-rod, the most faithful renderer
//   - [rsvg]: rasterization through the rsvg-convert tool (librsvg)
//
// The [backends] package selects one by name, as configured:
//
//	b, err := backends.Open(ctx, "native", backends.Options{})
//	defer b.Close()
//	surface, err := b.Mount(ctx, doc)
//	defer surface.Close()
//	box, err := surface.BBox(group)
package render
