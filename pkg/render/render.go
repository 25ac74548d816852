package render

import (
	"context"
	"image"

	"github.com/matzehuels/spritetag/pkg/svg"
)

// Measurer mounts documents for geometric queries.
type Measurer interface {
	// Mount attaches doc to a fresh off-screen surface. The caller must
	// Close the returned Surface on every exit path.
	Mount(ctx context.Context, doc *svg.Document) (Surface, error)
}

// Surface is an off-screen container holding one mounted document.
type Surface interface {
	// BBox returns the tight bounding box of el's rendered geometry in el's
	// user space. el must belong to the mounted document. Elements with
	// nothing to paint report an empty Rect and no error.
	BBox(ctx context.Context, el *svg.Element) (svg.Rect, error)

	// Close detaches the surface and releases its resources.
	Close() error
}

// Rasterizer draws standalone SVG markup into a bitmap.
type Rasterizer interface {
	// Rasterize renders markup stretched to exactly width×height pixels,
	// without preserving the aspect ratio. It fails with DECODE_FAILED when
	// the markup cannot be loaded and SURFACE_UNAVAILABLE when no drawing
	// surface of that size can be obtained.
	Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error)
}

// Backend is a complete rendering engine.
type Backend interface {
	Measurer
	Rasterizer

	// Name identifies the backend ("native", "chrome", "rsvg").
	Name() string

	// Close releases engine-wide resources such as browser processes.
	Close() error
}

// Combine builds a Backend from separate measuring and rasterizing engines.
// Close is forwarded to each part that has a Close method.
func Combine(name string, m Measurer, r Rasterizer) Backend {
	return &combined{name: name, Measurer: m, Rasterizer: r}
}

type combined struct {
	Measurer
	Rasterizer
	name string
}

func (c *combined) Name() string { return c.name }

func (c *combined) Close() error {
	var first error
	if cl, ok := c.Measurer.(interface{ Close() error }); ok {
		first = cl.Close()
	}
	if cl, ok := c.Rasterizer.(interface{ Close() error }); ok {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
