// Package chrome renders through a headless Chrome controlled with go-rod.
//
// A browser is the reference renderer for sprite sheets: bounding boxes come
// from SVGGraphicsElement.getBBox() and rasters from an <img> drawn on a
// <canvas>, so every construct the browser supports is honoured. Each
// mounted document lives in its own page inside a hidden, zero-size
// container; closing the surface closes the page.
package chrome

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/matzehuels/spritetag/pkg/datauri"
	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/svg"
)

// Name is the configuration name of this backend.
const Name = "chrome"

// Options configures the browser connection.
type Options struct {
	// ControlURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local headless Chrome.
	ControlURL string

	Logger *log.Logger
}

// Backend renders with a headless Chrome.
type Backend struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *log.Logger
	once    sync.Once
}

var _ render.Backend = (*Backend)(nil)

// Available reports whether a local Chrome binary can be found.
func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}

// New launches (or connects to) Chrome.
func New(ctx context.Context, opts Options) (*Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &Backend{logger: logger}
	wsURL := opts.ControlURL
	if wsURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSurface, err, "launch chrome")
		}
		wsURL = u
		b.lnch = l
		logger.Debug("launched local chrome", "url", wsURL)
	} else {
		logger.Debug("connecting to chrome", "url", wsURL)
	}

	browser := rod.New().ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		b.cleanup()
		return nil, errors.Wrap(errors.ErrCodeSurface, err, "connect to chrome")
	}
	b.browser = browser
	return b, nil
}

func (*Backend) Name() string { return Name }

// Close shuts down the browser (when launched locally) and its launcher.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() { err = b.cleanup() })
	return err
}

func (b *Backend) cleanup() error {
	if b.lnch == nil {
		return nil // remote browsers outlive us
	}
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	b.lnch.Kill()
	b.lnch.Cleanup()
	return err
}

func (b *Backend) page(ctx context.Context) (*rod.Page, error) {
	p, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurface, err, "open page")
	}
	return p.Context(ctx), nil
}

// =============================================================================
// Measurement
// =============================================================================

const mountJS = `(src) => {
	const doc = new DOMParser().parseFromString(src, "image/svg+xml");
	if (doc.querySelector("parsererror")) return false;
	const box = document.createElement("div");
	box.style.cssText = "position:absolute;visibility:hidden;width:1px;height:1px;overflow:hidden";
	document.body.appendChild(box);
	window.__spriteRoot = box.appendChild(document.importNode(doc.documentElement, true));
	return true;
}`

const bboxJS = `(path) => {
	let el = window.__spriteRoot;
	for (const i of path) el = el.children[i];
	const b = el.getBBox();
	return {x: b.x, y: b.y, width: b.width, height: b.height};
}`

// Mount opens a page and attaches a live copy of doc to a hidden container.
func (b *Backend) Mount(ctx context.Context, doc *svg.Document) (render.Surface, error) {
	p, err := b.page(ctx)
	if err != nil {
		return nil, err
	}
	res, err := p.Eval(mountJS, doc.Source())
	if err != nil {
		p.Close()
		return nil, errors.Wrap(errors.ErrCodeSurface, err, "mount document")
	}
	if !res.Value.Bool() {
		p.Close()
		return nil, errors.New(errors.ErrCodeInvalidSVG, "browser rejected document")
	}
	return &surface{page: p}, nil
}

type surface struct {
	page *rod.Page
	once sync.Once
}

func (s *surface) BBox(ctx context.Context, el *svg.Element) (svg.Rect, error) {
	path := svg.Path(el)
	if path == nil {
		path = []int{}
	}
	res, err := s.page.Context(ctx).Eval(bboxJS, path)
	if err != nil {
		return svg.Rect{}, errors.Wrap(errors.ErrCodeMeasure, err, "getBBox")
	}
	v := res.Value
	return svg.Rect{
		X:      v.Get("x").Num(),
		Y:      v.Get("y").Num(),
		Width:  v.Get("width").Num(),
		Height: v.Get("height").Num(),
	}, nil
}

func (s *surface) Close() error {
	var err error
	s.once.Do(func() { err = s.page.Close() })
	return err
}

// =============================================================================
// Rasterization
// =============================================================================

const rasterJS = `(uri, w, h) => new Promise((resolve) => {
	const img = new Image();
	img.onload = () => {
		const canvas = document.createElement("canvas");
		canvas.width = w;
		canvas.height = h;
		const ctx = canvas.getContext("2d");
		if (!ctx) return resolve({error: "surface"});
		ctx.drawImage(img, 0, 0, w, h);
		try {
			resolve({uri: canvas.toDataURL("image/png")});
		} catch (e) {
			resolve({error: "surface", message: String(e)});
		}
	};
	img.onerror = () => resolve({error: "decode"});
	img.src = uri;
})`

// Rasterize draws markup through an <img> onto a width×height canvas.
func (b *Backend) Rasterize(ctx context.Context, markup []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeSurface, "cannot allocate %dx%d surface", width, height)
	}
	p, err := b.page(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	res, err := p.Eval(rasterJS, datauri.SVG(string(markup)), width, height)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurface, err, "draw image")
	}
	v := res.Value
	switch v.Get("error").Str() {
	case "":
	case "decode":
		return nil, errors.New(errors.ErrCodeDecode, "failed to load SVG image for conversion")
	default:
		return nil, errors.New(errors.ErrCodeSurface, "could not get canvas context %s", v.Get("message").Str())
	}

	_, data, err := datauri.Parse(v.Get("uri").Str())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurface, err, "read canvas")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSurface, err, "decode canvas png")
	}
	return img, nil
}
