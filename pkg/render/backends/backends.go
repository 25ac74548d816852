// Package backends opens a rendering backend by its configured name.
//
// This package exists to break import cycles: the backend packages import
// pkg/render for its interfaces, so pkg/render cannot import them back.
//
//	b, err := backends.Open(ctx, "chrome", backends.Options{ChromeURL: url})
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
package backends

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/render/chrome"
	"github.com/matzehuels/spritetag/pkg/render/native"
	"github.com/matzehuels/spritetag/pkg/render/rsvg"
)

// Default is the backend used when none is configured.
const Default = native.Name

// Names lists the accepted backend names.
var Names = []string{native.Name, chrome.Name, rsvg.Name}

// Options carries backend-specific settings.
type Options struct {
	// ChromeURL connects the chrome backend to a running browser.
	ChromeURL string

	Logger *log.Logger
}

// Valid reports whether name is a known backend ("" selects the default).
func Valid(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Open returns the named backend. The rsvg backend only rasterizes, so it
// is paired with the native measurer.
func Open(ctx context.Context, name string, opts Options) (render.Backend, error) {
	switch name {
	case "", native.Name:
		return native.New(), nil
	case chrome.Name:
		b, err := chrome.New(ctx, chrome.Options{ControlURL: opts.ChromeURL, Logger: opts.Logger})
		if err != nil {
			return nil, err
		}
		return b, nil
	case rsvg.Name:
		r, err := rsvg.New()
		if err != nil {
			return nil, err
		}
		return render.Combine(rsvg.Name, native.New(), r), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown render backend %q (want one of %s)", name, fmt.Sprint(Names))
	}
}
