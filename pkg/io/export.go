package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/spritetag/pkg/pipeline"
)

// FormatVersion is the catalog format written by this package.
const FormatVersion = 1

// Catalog is the serialized form of one tagged sprite.
type Catalog struct {
	Version  int                   `json:"version"`
	Source   string                `json:"source,omitempty"`
	Strategy string                `json:"strategy,omitempty"`
	Icons    []pipeline.TaggedIcon `json:"icons"`
}

// WriteJSON encodes a catalog as indented JSON and writes it to w.
// A zero Version is written as [FormatVersion].
func WriteJSON(c Catalog, w io.Writer) error {
	if c.Version == 0 {
		c.Version = FormatVersion
	}
	if c.Icons == nil {
		c.Icons = []pipeline.TaggedIcon{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a catalog to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(c Catalog, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(c, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteIcons writes each icon's SVG to dir as "<id>.svg" and returns the
// written paths in icon order. IDs are reduced to safe file names; clashes
// get a numeric suffix ("a.svg", "a-2.svg"). dir is created if needed.
func WriteIcons(dir string, icons []pipeline.TaggedIcon) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	taken := make(map[string]bool, len(icons))
	paths := make([]string, 0, len(icons))
	for _, icon := range icons {
		base := FileName(icon.ID)
		name := base
		for n := 2; taken[name]; n++ {
			name = base + "-" + strconv.Itoa(n)
		}
		taken[name] = true
		path := filepath.Join(dir, name+".svg")
		if err := os.WriteFile(path, []byte(icon.SVG), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName maps an icon ID to a file name without extension. Letters,
// digits, '-', '_' and '.' are kept; runs of anything else become a single
// '-'. Leading dots are dropped and an empty result becomes "icon".
func FileName(id string) string {
	var sb strings.Builder
	dash := false
	for _, r := range id {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.':
			sb.WriteRune(r)
			dash = false
		case !dash:
			sb.WriteByte('-')
			dash = true
		}
	}
	name := strings.Trim(strings.TrimLeft(sb.String(), "."), "-")
	if name == "" {
		return "icon"
	}
	return name
}
