// Package analysis owns the live analysis engine: it builds the engine
// lazily, applies the configured options and turns raw engine output into
// issues.
package analysis

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"csslint/internal/core/errors"
	"csslint/internal/core/options"
	"csslint/internal/core/prefs"
	"csslint/internal/engine/csslint"
	"csslint/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the narrow surface of a style sheet checker.
type Engine interface {
	Verify(ctx context.Context, source string, options map[string]any) (map[string]any, error)
	Close() error
}

// EngineFactory builds a fresh engine. It is called at most once per
// invalidation.
type EngineFactory func() (Engine, error)

// DefaultFactory builds the built-in engine.
func DefaultFactory() (Engine, error) {
	e, err := csslint.New()
	if err != nil {
		return nil, err
	}
	return e, nil
}

type State int

const (
	Uninitialized State = iota
	Ready
	Invalidated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Invalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// Handle serializes every analysis through one mutex, across projects.
type Handle struct {
	prefs   prefs.Source
	factory EngineFactory

	mu      sync.Mutex
	engine  Engine
	applied options.Mapping
	closed  bool

	live  atomic.Bool
	stale atomic.Bool
}

// New returns an uninitialized handle. A nil factory selects DefaultFactory.
func New(src prefs.Source, factory EngineFactory) *Handle {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Handle{prefs: src, factory: factory, applied: options.Mapping{}}
}

// State reports the handle state without waiting for a running analysis.
func (h *Handle) State() State {
	switch {
	case h.stale.Load():
		return Invalidated
	case h.live.Load():
		return Ready
	default:
		return Uninitialized
	}
}

// Invalidate marks the engine stale. The rebuild happens on the next Analyze.
func (h *Handle) Invalidate() {
	h.stale.Store(true)
	observability.EngineInvalidationsTotal.Inc()
}

// Listen invalidates the handle on every preference change until ctx is done
// or changes is closed.
func (h *Handle) Listen(ctx context.Context, changes <-chan prefs.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			slog.Debug("preference changed, invalidating analysis engine", "key", change.Key, "removed", change.Removed)
			h.Invalidate()
		}
	}
}

// AppliedOptions returns a copy of the mapping handed to the engine.
func (h *Handle) AppliedOptions() options.Mapping {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.applied.Clone()
}

// Analyze runs the engine on text. A construction failure is returned as
// ENGINE_ERROR; a failure of this file alone as INTERNAL_ERROR.
func (h *Handle) Analyze(ctx context.Context, path, text string) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "analysis.Analyze",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	h.mu.Lock()
	defer h.mu.Unlock()

	engine, err := h.ensureReady()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "engine unavailable")
		return nil, err
	}

	start := time.Now()
	raw, err := engine.Verify(ctx, text, h.applied.Object())
	observability.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "verify style sheet"), errors.CtxPath, path)
	}

	issues, dropped := extractIssues(raw)
	if dropped > 0 {
		observability.DroppedRecordsTotal.Add(float64(dropped))
	}
	span.SetAttributes(attribute.Int("issues", len(issues)))
	return issues, nil
}

// ensureReady must be called with mu held.
func (h *Handle) ensureReady() (Engine, error) {
	if h.closed {
		return nil, errors.New(errors.CodeEngine, "analysis handle closed")
	}
	if h.engine != nil && !h.stale.Load() {
		return h.engine, nil
	}

	h.stale.Store(false)
	if h.engine != nil {
		if err := h.engine.Close(); err != nil {
			slog.Warn("failed to close stale analysis engine", "error", err)
		}
		h.engine = nil
		h.live.Store(false)
	}

	engine, err := h.factory()
	if err != nil {
		h.stale.Store(true)
		slog.Error("failed to construct analysis engine", "error", err)
		return nil, errors.Wrap(err, errors.CodeEngine, "construct analysis engine")
	}
	observability.EngineConstructionsTotal.Inc()

	h.engine = engine
	h.applied = h.configure()
	h.live.Store(true)
	slog.Debug("analysis engine ready", "options", strings.Join(h.applied.Keys(), ","))
	return engine, nil
}

// configure rebuilds the mapping from scratch: every catalog option with a
// non-empty configured value, parsed by kind.
func (h *Handle) configure() options.Mapping {
	mapping := options.Mapping{}
	if h.prefs == nil {
		return mapping
	}
	for _, opt := range options.All() {
		raw, ok := h.prefs.Get(opt.Key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := options.Parse(opt.Kind, raw)
		if err != nil {
			slog.Warn("ignoring unparsable option value", "option", opt.Key, "value", raw, "error", err)
			continue
		}
		mapping[opt.Key] = v
	}
	return mapping
}

// Close releases the engine. Later analyses fail with ENGINE_ERROR.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.live.Store(false)
	if h.engine == nil {
		return nil
	}
	err := h.engine.Close()
	h.engine = nil
	return err
}
