// Package sprite splits an SVG sprite sheet into standalone icons.
//
// # Overview
//
// A sprite bundles many logical icons into one document. [Decomposer] turns
// it into an ordered list of [Icon] values, each a complete SVG document
// with its own viewBox, a stable identifier, and a data URI of the markup.
//
// # Strategies
//
// Sprites come in a few shapes, so decomposition tries an ordered list of
// [Strategy] implementations and keeps the first non-empty result:
//
//  1. [Symbols]: one icon per <symbol> element, anywhere in the document.
//     The symbol's viewBox is reused (default "0 0 24 24").
//  2. [Groups]: one icon per top-level <g>, when there are at least two.
//     The viewBox is the group's measured bounding box; groups with zero
//     width or height are dropped.
//  3. [Single]: the whole document as one icon, markup unchanged.
//
// Identifiers come from the element's id attribute, or are synthesized as
// "<base>-<strategy>-<index>" where base is the file name without its .svg
// suffix and index is the element's position among its tier's candidates.
//
// # Invalid Input
//
// Input that is not well-formed XML, or whose root is not <svg>, is not an
// error: [Decomposer.Decompose] returns an empty [Result]. Errors are
// reserved for failures of the machinery itself (a measurement surface that
// cannot be mounted, a cancelled context).
//
//	d := sprite.NewDecomposer(native.New(), logger)
//	res, err := d.Decompose(ctx, src, "icons.svg")
//	for _, icon := range res.Icons {
//	    fmt.Println(icon.ID, icon.DataURI[:32])
//	}
package sprite
