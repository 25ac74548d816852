// Package rsvg rasterizes SVG with the rsvg-convert tool from librsvg.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
// librsvg renders considerably more of SVG than the native backend (text,
// filters, masks), at the cost of one process per image. It provides no
// measurement; pair it with another [render.Measurer] via [render.Combine].
package rsvg

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os/exec"
	"strconv"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/render"
)

// Name is the configuration name of this backend.
const Name = "rsvg"

// Binary is the executable looked up on PATH.
const Binary = "rsvg-convert"

// Rasterizer shells out to rsvg-convert.
type Rasterizer struct {
	path string
}

var _ render.Rasterizer = (*Rasterizer)(nil)

// New locates rsvg-convert on PATH.
func New() (*Rasterizer, error) {
	path, err := exec.LookPath(Binary)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurface, err,
			"png export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}
	return &Rasterizer{path: path}, nil
}

// Rasterize renders markup at exactly width×height pixels.
func (r *Rasterizer) Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeSurface, "cannot allocate %dx%d surface", width, height)
	}

	out, err := r.convert(ctx, markup,
		"-w", strconv.Itoa(width),
		"-h", strconv.Itoa(height),
	)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "read %s output", Binary)
	}
	return img, nil
}

func (r *Rasterizer) convert(ctx context.Context, markup []byte, extraArgs ...string) ([]byte, error) {
	args := append([]string{"-f", "png"}, extraArgs...)
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Stdin = bytes.NewReader(markup)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "%s: %s", Binary, bytes.TrimSpace(errBuf.Bytes()))
	}
	return out.Bytes(), nil
}
