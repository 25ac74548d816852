package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/spritetag/pkg/datauri"
	"github.com/matzehuels/spritetag/pkg/pipeline"
)

// ReadJSON decodes a catalog from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or invalid
//   - The version is newer than [FormatVersion]
//   - An icon has no ID or no SVG markup
//
// Missing data URIs are derived from the markup and missing keyword lists
// become empty. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode: %w", err)
	}
	if c.Version > FormatVersion {
		return Catalog{}, fmt.Errorf("unsupported catalog version %d (max %d)", c.Version, FormatVersion)
	}
	for i := range c.Icons {
		icon := &c.Icons[i]
		if icon.ID == "" {
			return Catalog{}, fmt.Errorf("icon %d: missing id", i)
		}
		if icon.SVG == "" {
			return Catalog{}, fmt.Errorf("icon %s: missing svgString", icon.ID)
		}
		if icon.DataURI == "" {
			icon.DataURI = datauri.SVG(icon.SVG)
		}
		if icon.Keywords == nil {
			icon.Keywords = []string{}
		}
	}
	if c.Icons == nil {
		c.Icons = []pipeline.TaggedIcon{}
	}
	return c, nil
}

// ImportJSON reads a catalog from a JSON file.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
