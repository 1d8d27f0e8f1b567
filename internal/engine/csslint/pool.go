package csslint

import (
	"fmt"
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

var cssLanguage = sync.OnceValue(func() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_css.Language())
})

// parserPool recycles CSS parsers between Verify calls.
//
// Concurrency: safe for use by multiple goroutines simultaneously.
type parserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	leased atomic.Int64
}

func newParserPool() (*parserPool, error) {
	p := &parserPool{lang: cssLanguage()}
	// A grammar the parser rejects fails construction, not the first Parse.
	sp, err := p.newParser()
	if err != nil {
		return nil, err
	}
	p.pool = sync.Pool{
		New: func() any {
			sp, err := p.newParser()
			if err != nil {
				return nil
			}
			return sp
		},
	}
	p.pool.Put(sp)
	return p, nil
}

func (p *parserPool) newParser() (*sitter.Parser, error) {
	sp := sitter.NewParser()
	if err := sp.SetLanguage(p.lang); err != nil {
		sp.Close()
		return nil, fmt.Errorf("set css language: %w", err)
	}
	return sp, nil
}

func (p *parserPool) get() (*sitter.Parser, error) {
	sp, _ := p.pool.Get().(*sitter.Parser)
	if sp == nil {
		var err error
		if sp, err = p.newParser(); err != nil {
			return nil, err
		}
	}
	p.leased.Add(1)
	return sp, nil
}

// put resets sp so it keeps no reference to the previous tree. sp must not be
// used afterwards.
func (p *parserPool) put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.leased.Add(-1)
	sp.Reset()
	p.pool.Put(sp)
}

func (p *parserPool) inUse() int {
	return int(p.leased.Load())
}
