package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/observability"
)

// logHooks reports observability events as debug log lines.
type logHooks struct {
	logger *log.Logger
}

// registerLogHooks installs logHooks for pipeline, cache and HTTP events.
func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnDecomposeStart(_ context.Context, source string) {
	h.logger.Debug("decompose", "source", source)
}

func (h *logHooks) OnDecomposeComplete(_ context.Context, source, strategy string, iconCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("decompose failed", "source", source, "took", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("decomposed", "source", source, "strategy", strategy, "icons", iconCount, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnRasterizeComplete(_ context.Context, iconID string, d time.Duration, err error) {
	h.logger.Debug("rasterized", "icon", iconID, "took", d.Round(time.Millisecond), "err", err)
}

func (h *logHooks) OnTagComplete(_ context.Context, iconID string, d time.Duration, failed bool) {
	h.logger.Debug("tagged", "icon", iconID, "took", d.Round(time.Millisecond), "failed", failed)
}

func (h *logHooks) OnSessionComplete(_ context.Context, source, state string, iconCount int, d time.Duration) {
	h.logger.Debug("session complete", "source", source, "state", state, "icons", iconCount, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
