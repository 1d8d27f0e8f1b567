// Package csslint is the built-in style sheet analysis library. It parses CSS
// with tree-sitter and runs the checks named in its embedded rule library
// against the rules switched on in an options object.
package csslint

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

var ErrClosed = errors.New("csslint: engine closed")

// Engine is safe for concurrent use. Each Verify call parses its own tree.
type Engine struct {
	lib    *Library
	pool   *parserPool
	closed atomic.Bool
}

// New builds an engine from the embedded rule library.
func New() (*Engine, error) {
	return NewWithLibrary(defaultLibrary)
}

// NewWithLibrary builds an engine from a rule library resource.
func NewWithLibrary(data []byte) (*Engine, error) {
	lib, err := LoadLibrary(data)
	if err != nil {
		return nil, err
	}
	pool, err := newParserPool()
	if err != nil {
		return nil, err
	}
	return &Engine{lib: lib, pool: pool}, nil
}

// Rules lists the library entries the engine was built from.
func (e *Engine) Rules() []RuleSpec {
	return e.lib.Rules()
}

// Verify analyzes source. The result holds "messages", a slice of records
// keyed line, col, message, type, rule and evidence.
func (e *Engine) Verify(ctx context.Context, source string, options map[string]any) (map[string]any, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := []byte(source)
	sp, err := e.pool.get()
	if err != nil {
		return nil, err
	}
	tree := sp.Parse(src, nil)
	e.pool.put(sp)
	if tree == nil {
		return nil, fmt.Errorf("parse style sheet: parser returned no tree")
	}
	defer tree.Close()

	sheet := buildStylesheet(src, tree.RootNode())

	var msgs []message
	for _, rule := range e.lib.rules {
		level := levelFor(options[rule.spec.ID])
		if rule.spec.Always {
			level = levelError
		}
		if level == "" {
			continue
		}
		rule.check(sheet, &reporter{sheet: sheet, spec: rule.spec, level: level, out: &msgs})
	}
	sortMessages(msgs)

	records := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, m.record())
	}
	return map[string]any{"messages": records}, nil
}

// Close releases the engine. Verify fails afterwards.
func (e *Engine) Close() error {
	e.closed.Store(true)
	return nil
}

// levelFor maps an option value to a report level: true or 1 is a warning,
// 2 an error, anything else switches the rule off.
func levelFor(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return levelWarning
		}
	case int:
		return levelForInt(int64(t))
	case int64:
		return levelForInt(t)
	case float64:
		return levelForInt(int64(t))
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		switch s {
		case "true", levelWarning:
			return levelWarning
		case levelError:
			return levelError
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return levelForInt(n)
		}
	}
	return ""
}

func levelForInt(n int64) string {
	switch n {
	case 1:
		return levelWarning
	case 2:
		return levelError
	}
	return ""
}
