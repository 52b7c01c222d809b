// Package jsparse extracts module-level facts from JavaScript and TypeScript
// sources using tree-sitter.
package jsparse

import (
	"embed"
	"path"
	"path/filepath"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/zerr"
)

//go:embed queries/*/*.scm
var queryFiles embed.FS

// Dialect selects the grammar a source is parsed with.
type Dialect int

const (
	// DialectTSX parses JavaScript, JSX and TSX.
	DialectTSX Dialect = iota
	// DialectTypeScript parses plain TypeScript, where `<T>x` is a type assertion.
	DialectTypeScript
)

var languages = struct {
	tsx        *ts.Language
	typescript *ts.Language
}{
	ts.NewLanguage(tsTypescript.LanguageTSX()),
	ts.NewLanguage(tsTypescript.LanguageTypescript()),
}

// Parser pools for reuse.
var (
	tsxParserPool = sync.Pool{
		New: func() any {
			parser := ts.NewParser()
			if err := parser.SetLanguage(languages.tsx); err != nil {
				panic("failed to set TSX language: " + err.Error())
			}
			return parser
		},
	}

	tsParserPool = sync.Pool{
		New: func() any {
			parser := ts.NewParser()
			if err := parser.SetLanguage(languages.typescript); err != nil {
				panic("failed to set TypeScript language: " + err.Error())
			}
			return parser
		},
	}
)

// DialectFor picks the grammar from a file extension.
func DialectFor(filePath string) Dialect {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	default:
		return DialectTSX
	}
}

func (d Dialect) language() *ts.Language {
	if d == DialectTypeScript {
		return languages.typescript
	}
	return languages.tsx
}

func (d Dialect) pool() *sync.Pool {
	if d == DialectTypeScript {
		return &tsParserPool
	}
	return &tsxParserPool
}

// parse runs fn over the syntax tree of content. The tree is only valid inside fn.
func parse(dialect Dialect, content []byte, fn func(root *ts.Node) error) error {
	pool := dialect.pool()
	parser := pool.Get().(*ts.Parser) //nolint:forcetypeassert // Pool only holds parsers
	defer func() {
		parser.Reset()
		pool.Put(parser)
	}()

	tree := parser.Parse(content, nil)
	if tree == nil {
		return zerr.New("parser returned no tree")
	}
	defer tree.Close()

	return fn(tree.RootNode())
}

// queryKey identifies a compiled query.
type queryKey struct {
	dialect Dialect
	name    string
}

// QueryManager compiles and caches the embedded queries per dialect.
type QueryManager struct {
	mu      sync.Mutex
	closed  bool
	queries map[queryKey]*ts.Query
}

// NewQueryManager compiles the named queries for every dialect.
func NewQueryManager(names ...string) (*QueryManager, error) {
	qm := &QueryManager{queries: make(map[queryKey]*ts.Query)}

	for _, dialect := range []Dialect{DialectTSX, DialectTypeScript} {
		for _, name := range names {
			if err := qm.load(dialect, name); err != nil {
				qm.Close()
				return nil, err
			}
		}
	}

	return qm, nil
}

func (qm *QueryManager) load(dialect Dialect, name string) error {
	queryPath := path.Join("queries", "typescript", name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read query"), "query", queryPath)
	}

	query, qerr := ts.NewQuery(dialect.language(), string(data))
	if qerr != nil {
		return zerr.With(zerr.Wrap(qerr, "failed to compile query"), "query", queryPath)
	}

	qm.queries[queryKey{dialect: dialect, name: name}] = query
	return nil
}

// Query returns a compiled query.
func (qm *QueryManager) Query(dialect Dialect, name string) (*ts.Query, error) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	q, ok := qm.queries[queryKey{dialect: dialect, name: name}]
	if !ok {
		return nil, zerr.With(zerr.New("query not found"), "query", name)
	}
	return q, nil
}

// Close releases all query resources. Safe to call multiple times.
func (qm *QueryManager) Close() {
	qm.mu.Lock()
	if qm.closed {
		qm.mu.Unlock()
		return
	}
	qm.closed = true
	queries := qm.queries
	qm.queries = nil
	qm.mu.Unlock()

	for _, q := range queries {
		q.Close()
	}
}

var (
	globalQM     *QueryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

// queryManager returns the process-wide query manager.
func queryManager() (*QueryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = NewQueryManager("imports")
	})
	return globalQM, globalQMErr
}

func parseError(err error, filePath string) error {
	return zerr.With(zerr.Wrap(err, domain.ErrSourceParseFailed.Error()), "path", filePath)
}
