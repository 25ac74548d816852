package sprite

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/observability"
	"github.com/matzehuels/spritetag/pkg/render"
	"github.com/matzehuels/spritetag/pkg/svg"
)

// Result is the outcome of one decomposition run.
type Result struct {
	// Strategy names the strategy that produced Icons, or "" when empty.
	Strategy string `json:"strategy,omitempty"`

	// Icons are in document order within the chosen strategy.
	Icons []Icon `json:"icons"`
}

// Empty reports whether nothing was extracted.
func (r Result) Empty() bool { return len(r.Icons) == 0 }

// Decomposer runs strategies in order until one yields icons.
type Decomposer struct {
	Strategies []Strategy
	Logger     *log.Logger
}

// NewDecomposer returns a Decomposer with the standard symbol, group and
// single strategies. m measures groups; when it is nil, group-based sprites
// fall through to the single strategy with a warning.
func NewDecomposer(m render.Measurer, logger *log.Logger) *Decomposer {
	if logger == nil {
		logger = log.Default()
	}
	return &Decomposer{
		Strategies: []Strategy{
			Symbols{},
			Groups{Measurer: m, Logger: logger},
			Single{},
		},
		Logger: logger,
	}
}

// Decompose extracts icons from src, an SVG document read from a file named
// name. Malformed or non-SVG input yields an empty Result and a nil error.
func (d *Decomposer) Decompose(ctx context.Context, src, name string) (res Result, err error) {
	start := time.Now()
	observability.Pipeline().OnDecomposeStart(ctx, name)
	defer func() {
		observability.Pipeline().OnDecomposeComplete(ctx, name, res.Strategy, len(res.Icons), time.Since(start), err)
	}()

	doc, perr := svg.Parse(src)
	if perr != nil {
		d.logger().Error("uploaded file is not a valid SVG", "file", name, "error", perr)
		return Result{Icons: []Icon{}}, nil
	}

	base := BaseName(name)
	for _, s := range d.Strategies {
		if err := ctx.Err(); err != nil {
			return Result{Icons: []Icon{}}, err
		}
		icons, err := s.Extract(ctx, doc, base)
		if err != nil {
			return Result{Icons: []Icon{}}, err
		}
		if len(icons) > 0 {
			d.logger().Debug("extracted icons", "file", name, "strategy", s.Name(), "count", len(icons))
			return Result{Strategy: s.Name(), Icons: icons}, nil
		}
	}
	return Result{Icons: []Icon{}}, nil
}

func (d *Decomposer) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}
