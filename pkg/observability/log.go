package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, errors at error
// level. It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source, format string) {
	h.logger.Debug("load start", "source", source, "format", format)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, entities int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("load done", "source", source, "entities", entities, "duration", d)
}

func (h *LogHooks) OnSolveStart(_ context.Context, entities int) {
	h.logger.Debug("solve start", "entities", entities)
}

func (h *LogHooks) OnSolveComplete(_ context.Context, entities int, s SolveStats, d time.Duration) {
	if s.TimedOut {
		h.logger.Warn("solve timed out", "entities", entities, "iterations", s.Iterations, "duration", d)
		return
	}
	h.logger.Debug("solve done", "entities", entities, "iterations", s.Iterations, "moved", s.Moved, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, kind string) {
	h.logger.Debug("render start", "kind", kind)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, kind string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("render failed", "kind", kind, "err", err)
		return
	}
	h.logger.Debug("render done", "kind", kind, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path, requestID string) {
	h.logger.Debug("request", "method", method, "path", path, "request_id", requestID)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Error("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
