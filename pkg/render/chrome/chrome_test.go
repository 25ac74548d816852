package chrome

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/svg"
)

func newOrSkip(t *testing.T) *Backend {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if !Available() {
		t.Skip("chrome not installed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)
	b, err := New(ctx, Options{})
	if err != nil {
		t.Skipf("chrome unavailable: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBBox(t *testing.T) {
	b := newOrSkip(t)
	doc, err := svg.Parse(`<svg xmlns="http://www.w3.org/2000/svg">
		<g><rect x="2" y="3" width="10" height="5"/></g>
		<g><text>hidden</text></g>
		<g/>
	</svg>`)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	s, err := b.Mount(ctx, doc)
	if err != nil {
		t.Fatalf("Mount() error: %v", err)
	}
	defer s.Close()

	groups := doc.TopLevelGroups()
	got, err := s.BBox(ctx, groups[0])
	if err != nil {
		t.Fatalf("BBox() error: %v", err)
	}
	if math.Abs(got.X-2) > 1e-6 || math.Abs(got.Width-10) > 1e-6 {
		t.Errorf("BBox() = %v, want {2 3 10 5}", got)
	}

	empty, err := s.BBox(ctx, groups[2])
	if err != nil {
		t.Fatalf("BBox(empty) error: %v", err)
	}
	if !empty.Empty() {
		t.Errorf("BBox(empty) = %v, want empty", empty)
	}
}

func TestRasterize(t *testing.T) {
	b := newOrSkip(t)
	img, err := b.Rasterize(context.Background(),
		[]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 2 1" width="2" height="1"><rect width="2" height="1" fill="red"/></svg>`),
		32, 16)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if bnd := img.Bounds(); bnd.Dx() != 32 || bnd.Dy() != 16 {
		t.Errorf("bounds = %v, want 32x16", bnd)
	}
}

func TestRasterizeDecodeError(t *testing.T) {
	b := newOrSkip(t)
	_, err := b.Rasterize(context.Background(), []byte("<svg"), 8, 8)
	if !errors.Is(err, errors.ErrCodeDecode) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeDecode)
	}
}
