// Package native is a pure Go rendering backend built on oksvg and rasterx.
//
// It needs no external processes, which makes it the default backend. oksvg
// supports the path-based subset of SVG used by typical icon sets (shapes,
// paths, gradients, transforms, defs and use). Text and filters are not
// rendered, so groups made only of text measure as empty.
//
// Bounding boxes are computed by replaying a group's geometry through a
// recording [rasterx.Scanner] instead of a pixel buffer, under the identity
// transform, so extents are exact to the 1/64 user-unit resolution of rasterx
// paths. Only path geometry contributes to the extent. Stroke width, caps and
// joins are ignored, so a stroked shape measures like its outline.
package native

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/svg"
)

// Name is the configuration name of this backend.
const Name = "native"

// MaxSurfaceSize bounds each raster dimension, matching common canvas limits.
const MaxSurfaceSize = 16384

// defaultViewport is used for documents declaring neither a viewBox nor a size.
var defaultViewport = svg.Rect{Width: 300, Height: 150}

// Backend renders with oksvg. The zero value is ready to use.
type Backend struct{}

// New returns a native backend.
func New() *Backend { return &Backend{} }

var _ render.Backend = (*Backend)(nil)

func (*Backend) Name() string { return Name }

func (*Backend) Close() error { return nil }

// Rasterize draws markup so that its viewBox fills width×height exactly.
func (b *Backend) Rasterize(ctx context.Context, markup []byte, width, height int) (img image.Image, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 || width > MaxSurfaceSize || height > MaxSurfaceSize {
		return nil, errors.New(errors.ErrCodeSurface, "cannot allocate %dx%d surface", width, height)
	}

	icon, err := readIcon(markup)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			img, err = nil, errors.New(errors.ErrCodeDecode, "render vector image: %v", r)
		}
	}()

	vb := viewport(icon)
	sx := float64(width) / vb.Width
	sy := float64(height) / vb.Height
	icon.Transform = rasterx.Matrix2D{A: sx, D: sy, E: -vb.X * sx, F: -vb.Y * sy}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return rgba, nil
}

// Mount returns a surface measuring elements of doc.
func (b *Backend) Mount(ctx context.Context, doc *svg.Document) (render.Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &surface{doc: doc, ns: doc.Namespaces(), defs: doc.Defs()}, nil
}

type surface struct {
	mu     sync.Mutex
	doc    *svg.Document
	ns     []svg.Attr
	defs   []*svg.Element
	closed bool
}

// BBox measures el by rendering its children, together with the document's
// definitions, into a recording scanner.
func (s *surface) BBox(ctx context.Context, el *svg.Element) (svg.Rect, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return svg.Rect{}, errors.New(errors.ErrCodeSurface, "surface is closed")
	}
	if err := ctx.Err(); err != nil {
		return svg.Rect{}, err
	}

	markup, err := svg.Wrap("0 0 1 1", el, s.ns, s.defs...)
	if err != nil {
		return svg.Rect{}, errors.Wrap(errors.ErrCodeMeasure, err, "isolate element")
	}
	icon, err := readIcon([]byte(markup))
	if err != nil {
		return svg.Rect{}, errors.Wrap(errors.ErrCodeMeasure, err, "load element")
	}
	return measure(icon)
}

func (s *surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// readIcon parses markup, converting parser panics into DECODE_FAILED.
func readIcon(markup []byte) (icon *oksvg.SvgIcon, err error) {
	defer func() {
		if r := recover(); r != nil {
			icon, err = nil, errors.New(errors.ErrCodeDecode, "load vector image: %v", r)
		}
	}()
	markup, err = resolveCurrentColor(markup)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "load vector image")
	}
	icon, err = oksvg.ReadIconStream(bytes.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "load vector image")
	}
	return icon, nil
}

func viewport(icon *oksvg.SvgIcon) svg.Rect {
	vb := svg.Rect{X: icon.ViewBox.X, Y: icon.ViewBox.Y, Width: icon.ViewBox.W, Height: icon.ViewBox.H}
	if vb.Empty() {
		return defaultViewport
	}
	return vb
}

func measure(icon *oksvg.SvgIcon) (box svg.Rect, err error) {
	defer func() {
		if r := recover(); r != nil {
			box, err = svg.Rect{}, errors.New(errors.ErrCodeMeasure, "measure element: %s", fmt.Sprint(r))
		}
	}()

	// Strokes collapse onto their centerline so only geometry is measured.
	for i := range icon.SVGPaths {
		icon.SVGPaths[i].LineWidth = 0
	}
	icon.Transform = rasterx.Identity
	rec := &extentScanner{}
	icon.Draw(rasterx.NewDasher(1, 1, rec), 1.0)
	return rec.rect(), nil
}
