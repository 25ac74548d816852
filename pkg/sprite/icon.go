package sprite

import (
	"strings"

	"github.com/matzehuels/spritetag/pkg/datauri"
)

// Icon is one standalone icon extracted from a sprite.
type Icon struct {
	// ID is unique within one decomposition run.
	ID string `json:"id"`

	// SVG is a complete document that renders without the original sprite.
	SVG string `json:"svgString"`

	// DataURI is always datauri.SVG(SVG).
	DataURI string `json:"dataUri"`

	// AltText is the text of a nested <title>, if the source supplied one.
	AltText string `json:"altText,omitempty"`
}

// NewIcon builds an Icon, deriving DataURI from markup.
func NewIcon(id, markup, altText string) Icon {
	return Icon{
		ID:      id,
		SVG:     markup,
		DataURI: datauri.SVG(markup),
		AltText: altText,
	}
}

// Valid reports whether DataURI still encodes SVG.
func (i Icon) Valid() bool {
	return i.DataURI == datauri.SVG(i.SVG)
}

// BaseName strips one trailing ".svg" from a file name. Other extensions and
// upper-case variants are kept, so "icons.SVG" stays as is.
func BaseName(name string) string {
	return strings.TrimSuffix(name, ".svg")
}
