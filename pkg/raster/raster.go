// Package raster converts vector icons into PNG data URIs.
//
// Vision models classify bitmaps far more reliably than SVG source, so each
// icon is drawn into a small fixed-size raster before it is described. The
// raster is a lossy proxy used only for classification: the icon's aspect
// ratio is not preserved, the viewBox is stretched to fill the surface.
//
//	p := raster.NewProjector(native.New())
//	png, err := p.Rasterize(ctx, icon.DataURI, 128, 128)
package raster

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/spritetag/pkg/datauri"
	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/render"
)

// DefaultSize is the default raster width and height in pixels.
const DefaultSize = 128

// Projector turns SVG data URIs into PNG data URIs of an exact size.
type Projector struct {
	Rasterizer render.Rasterizer
}

// NewProjector returns a Projector drawing with r.
func NewProjector(r render.Rasterizer) *Projector {
	return &Projector{Rasterizer: r}
}

// RasterizeDefault is Rasterize at DefaultSize×DefaultSize.
func (p *Projector) RasterizeDefault(ctx context.Context, vectorURI string) (string, error) {
	return p.Rasterize(ctx, vectorURI, DefaultSize, DefaultSize)
}

// Rasterize decodes vectorURI, draws it stretched to width×height and returns
// the result as a "data:image/png;base64" URI.
//
// It fails with DECODE_FAILED when the URI or the markup it carries cannot be
// loaded, and with SURFACE_UNAVAILABLE when no surface of the requested size
// can be obtained. Errors are returned to the caller, never swallowed.
func (p *Projector) Rasterize(ctx context.Context, vectorURI string, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", errors.New(errors.ErrCodeSurface, "cannot allocate %dx%d surface", width, height)
	}
	if p.Rasterizer == nil {
		return "", errors.New(errors.ErrCodeSurface, "no rasterizer configured")
	}

	mediaType, markup, err := datauri.Parse(vectorURI)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeDecode, err, "failed to load SVG image for conversion")
	}
	if mediaType != datauri.MediaTypeSVG {
		return "", errors.New(errors.ErrCodeDecode, "unexpected media type %q", mediaType)
	}

	img, err := p.Rasterizer.Rasterize(ctx, markup, width, height)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeDecode, err, "failed to load SVG image for conversion")
		}
		return "", err
	}
	if img == nil {
		return "", errors.New(errors.ErrCodeSurface, "renderer produced no surface")
	}

	img = fit(img, width, height)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", errors.Wrap(errors.ErrCodeSurface, err, "encode png")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return datauri.PNG(buf.Bytes()), nil
}

// fit stretches img to exactly width×height when a backend returned another size.
func fit(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}
