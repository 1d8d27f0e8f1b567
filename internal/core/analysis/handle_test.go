package analysis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"csslint/internal/core/errors"
	"csslint/internal/core/options"
	"csslint/internal/core/prefs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	result map[string]any
	err    error
	delay  time.Duration

	mu       sync.Mutex
	received []map[string]any
	closed   bool

	active    atomic.Int32
	maxActive atomic.Int32
}

func (s *stubEngine) Verify(_ context.Context, _ string, opts map[string]any) (map[string]any, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxActive.Load()
		if n <= m || s.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.received = append(s.received, opts)
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if s.result == nil {
		return map[string]any{"messages": []map[string]any{}}, nil
	}
	return s.result, nil
}

func (s *stubEngine) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubEngine) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// countingFactory hands out a fresh stub per build and remembers each one.
type countingFactory struct {
	mu      sync.Mutex
	built   []*stubEngine
	fail    error
	prepare func(*stubEngine)
}

func (f *countingFactory) build() (Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	e := &stubEngine{}
	if f.prepare != nil {
		f.prepare(e)
	}
	f.built = append(f.built, e)
	return e, nil
}

func (f *countingFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.built)
}

func (f *countingFactory) last() *stubEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.built[len(f.built)-1]
}

func TestHandle_LazyConstruction(t *testing.T) {
	f := &countingFactory{}
	h := New(prefs.NewMemory(nil), f.build)

	assert.Equal(t, Uninitialized, h.State())
	assert.Equal(t, 0, f.count())

	_, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)
	assert.Equal(t, Ready, h.State())

	_, err = h.Analyze(context.Background(), "/site/b.css", "b {}")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(), "engine must be reused while valid")
}

func TestHandle_InvalidateRebuildsLazily(t *testing.T) {
	f := &countingFactory{}
	h := New(prefs.NewMemory(nil), f.build)

	_, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)
	first := f.last()

	h.Invalidate()
	h.Invalidate()
	assert.Equal(t, Invalidated, h.State())
	assert.Equal(t, 1, f.count(), "invalidation must not build")
	assert.False(t, first.isClosed())

	_, err = h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count())
	assert.True(t, first.isClosed(), "stale engine must be released on rebuild")
	assert.Equal(t, Ready, h.State())
}

func TestHandle_OptionRoundTrip(t *testing.T) {
	store := prefs.NewMemory(options.DefaultPreferences())
	f := &countingFactory{}
	h := New(store, f.build)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, unsubscribe := store.Subscribe(8)
	defer unsubscribe()
	go h.Listen(ctx, changes)

	_, err := h.Analyze(ctx, "/site/a.css", "a {}")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"box-model", "display-property-grouping", "duplicate-properties", "empty-rules", "known-properties",
	}, h.AppliedOptions().Keys())

	require.NoError(t, store.Set("ids", "true"))
	require.Eventually(t, func() bool { return h.State() == Invalidated }, time.Second, 5*time.Millisecond)

	_, err = h.Analyze(ctx, "/site/a.css", "a {}")
	require.NoError(t, err)
	assert.Equal(t, options.BoolValue(true), h.AppliedOptions()["ids"])
	assert.Equal(t, true, f.last().received[0]["ids"])

	require.NoError(t, store.Unset("ids"))
	require.Eventually(t, func() bool { return h.State() == Invalidated }, time.Second, 5*time.Millisecond)

	_, err = h.Analyze(ctx, "/site/a.css", "a {}")
	require.NoError(t, err)
	_, present := h.AppliedOptions()["ids"]
	assert.False(t, present)
	assert.NotContains(t, f.last().received[0], "ids")
}

func TestHandle_ConfigureSkipsBlankAndKeepsFalse(t *testing.T) {
	store := prefs.NewMemory(nil)
	require.NoError(t, store.Set("ids", "   "))
	require.NoError(t, store.Set("important", "false"))
	require.NoError(t, store.Set("floats", "TRUE"))

	h := New(store, (&countingFactory{}).build)
	_, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)

	applied := h.AppliedOptions()
	assert.Equal(t, []string{"floats", "important"}, applied.Keys())
	assert.Equal(t, options.BoolValue(false), applied["important"])
	assert.Equal(t, options.BoolValue(true), applied["floats"])
}

func TestHandle_DropsMalformedRecords(t *testing.T) {
	f := &countingFactory{prepare: func(e *stubEngine) {
		e.result = map[string]any{"messages": []any{
			map[string]any{"line": 3, "col": 5, "message": "kept", "rule": "ids", "type": "warning"},
			map[string]any{"col": 1, "message": "no line"},
			map[string]any{"line": 1, "col": nil, "message": "nil col"},
			map[string]any{"line": 1, "col": 1},
			"not a record",
			map[string]any{"line": 7.0, "col": int64(2), "message": "float line", "type": "error"},
			map[string]any{"message": "rollup", "rollup": true},
		}}
	}}
	h := New(prefs.NewMemory(nil), f.build)

	issues, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)
	assert.Equal(t, Result{
		{Line: 3, Column: 5, Message: "kept", Category: "ids"},
		{Line: 7, Column: 2, Message: "float line", Category: "error"},
	}, issues)
}

func TestHandle_ConstructionFailureIsEngineError(t *testing.T) {
	f := &countingFactory{fail: fmt.Errorf("rule library corrupt")}
	h := New(prefs.NewMemory(nil), f.build)

	_, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeEngine), "got %v", err)
	assert.NotEqual(t, Ready, h.State())

	f.mu.Lock()
	f.fail = nil
	f.mu.Unlock()

	_, err = h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)
	assert.Equal(t, Ready, h.State())
}

func TestHandle_VerifyFailureIsPerFile(t *testing.T) {
	f := &countingFactory{prepare: func(e *stubEngine) { e.err = fmt.Errorf("stack overflow") }}
	h := New(prefs.NewMemory(nil), f.build)

	_, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal), "got %v", err)
	assert.Contains(t, err.Error(), "/site/a.css")
	assert.Equal(t, Ready, h.State(), "a verify failure must not discard the engine")
}

func TestHandle_AnalysesNeverOverlap(t *testing.T) {
	f := &countingFactory{prepare: func(e *stubEngine) { e.delay = 2 * time.Millisecond }}
	h := New(prefs.NewMemory(nil), f.build)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.Analyze(context.Background(), fmt.Sprintf("/p%d/a.css", i), "a {}")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.count())
	assert.Equal(t, int32(1), f.last().maxActive.Load())
}

func TestHandle_Close(t *testing.T) {
	f := &countingFactory{}
	h := New(prefs.NewMemory(nil), f.build)
	_, err := h.Analyze(context.Background(), "/site/a.css", "a {}")
	require.NoError(t, err)

	require.NoError(t, h.Close())
	assert.True(t, f.last().isClosed())

	_, err = h.Analyze(context.Background(), "/site/a.css", "a {}")
	assert.True(t, errors.IsCode(err, errors.CodeEngine))
}

func TestHandle_DefaultFactoryEndToEnd(t *testing.T) {
	store := prefs.NewMemory(options.DefaultPreferences())
	h := New(store, nil)
	t.Cleanup(func() { _ = h.Close() })

	issues, err := h.Analyze(context.Background(), "/site/a.css", "a {\n  color: red;\n  color: red;\n}\n")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "duplicate-properties", issues[0].Category)
	assert.Equal(t, 3, issues[0].Line)
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3, 3, true},
		{int32(4), 4, true},
		{uint16(5), 5, true},
		{float32(6), 6, true},
		{7.9, 7, true},
		{"8", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := toInt(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("toInt(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
