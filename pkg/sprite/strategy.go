package sprite

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/svg"
)

// Strategy names.
const (
	StrategySymbol = "symbol"
	StrategyGroup  = "group"
	StrategySingle = "single"
)

// Strategy extracts icons from a parsed sprite. An empty result (with a nil
// error) means the strategy does not apply and the next one is tried.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc *svg.Document, base string) ([]Icon, error)
}

func synthesizeID(el *svg.Element, base, strategy string, index int) string {
	if id := svg.ID(el); id != "" {
		return id
	}
	return fmt.Sprintf("%s-%s-%d", base, strategy, index)
}

// =============================================================================
// Symbols
// =============================================================================

// Symbols extracts one icon per <symbol> element.
type Symbols struct{}

func (Symbols) Name() string { return StrategySymbol }

func (Symbols) Extract(ctx context.Context, doc *svg.Document, base string) ([]Icon, error) {
	symbols := doc.Symbols()
	icons := make([]Icon, 0, len(symbols))
	ns := doc.Namespaces()
	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		markup, err := svg.Wrap(svg.ViewBox(sym, svg.DefaultViewBox), sym, ns)
		if err != nil {
			return nil, err
		}
		icons = append(icons, NewIcon(synthesizeID(sym, base, StrategySymbol, i), markup, svg.Title(sym)))
	}
	return icons, nil
}

// =============================================================================
// Groups
// =============================================================================

// Groups extracts one icon per top-level <g> element, sized to its bounding
// box. A document with fewer than two top-level groups is not treated as a
// sprite. When no surface can be mounted the strategy logs a warning and
// yields nothing.
type Groups struct {
	Measurer render.Measurer
	Logger   *log.Logger
}

func (Groups) Name() string { return StrategyGroup }

func (g Groups) Extract(ctx context.Context, doc *svg.Document, base string) (icons []Icon, err error) {
	groups := doc.TopLevelGroups()
	if len(groups) <= 1 {
		return nil, nil
	}
	if g.Measurer == nil {
		g.logger().Warn("group measurement unavailable", "error", "no measurer configured")
		return nil, nil
	}

	surface, err := g.Measurer.Mount(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logger().Warn("group measurement unavailable", "error", err)
		return nil, nil
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil {
			g.logger().Warn("could not release measurement surface", "error", cerr)
		}
	}()

	ns := doc.Namespaces()
	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		icon, ok, err := g.extractOne(ctx, surface, group, ns, base, i)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger().Warn("could not process a group element, it might be invisible", "index", i, "error", err)
			continue
		}
		if ok {
			icons = append(icons, icon)
		}
	}
	return icons, nil
}

// extractOne measures and wraps a single group. ok is false for groups with
// an empty bounding box.
func (g Groups) extractOne(ctx context.Context, surface render.Surface, group *svg.Element, ns []svg.Attr, base string, index int) (icon Icon, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeMeasure, "measure group: %v", r)
		}
	}()

	box, err := surface.BBox(ctx, group)
	if err != nil {
		return Icon{}, false, err
	}
	if box.Empty() {
		return Icon{}, false, nil
	}
	markup, err := svg.Wrap(box.ViewBox(), group, ns)
	if err != nil {
		return Icon{}, false, err
	}
	return NewIcon(synthesizeID(group, base, StrategyGroup, index), markup, svg.Title(group)), true, nil
}

func (g Groups) logger() *log.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return log.Default()
}

// =============================================================================
// Single
// =============================================================================

// Single emits the whole document as one icon with its markup unchanged.
type Single struct{}

func (Single) Name() string { return StrategySingle }

func (Single) Extract(_ context.Context, doc *svg.Document, base string) ([]Icon, error) {
	id := fmt.Sprintf("%s-%s-0", base, StrategySingle)
	return []Icon{NewIcon(id, doc.Source(), svg.Title(doc.Root()))}, nil
}
