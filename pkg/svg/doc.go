// Package svg provides the vector document model used by sprite decomposition.
//
// Documents are parsed with [github.com/beevik/etree] in strict mode: input
// that is not well-formed XML, or whose root element is not <svg>, is
// rejected with an INVALID_SVG error. The package only understands as much
// SVG as decomposition needs:
//
//   - [Document.Symbols]: every <symbol> element, at any depth, in document order
//   - [Document.TopLevelGroups]: <g> elements whose parent is the root element
//   - [ID], [ViewBox], [Title]: attribute and label lookups
//   - [Wrap]: builds a fresh, self-contained <svg> around an element's children
//
// Geometry is not computed here. Bounding boxes come from a render backend
// (see pkg/render) and are expressed as a [Rect].
//
// # Namespaces
//
// Output documents always declare the SVG namespace. Prefixed namespace
// declarations from the source root (xmlns:xlink and friends) are copied to
// every wrapped document so references such as xlink:href keep resolving:
//
//	doc, _ := svg.Parse(src)
//	for _, sym := range doc.Symbols() {
//	    markup, _ := svg.Wrap(svg.ViewBox(sym, svg.DefaultViewBox), sym, doc.Namespaces())
//	}
package svg
