package jsparse

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// ImportKind distinguishes how a module is referenced.
type ImportKind int

const (
	// ImportStatic is an `import ... from` or side-effect import.
	ImportStatic ImportKind = iota
	// ImportReexport is an `export ... from`.
	ImportReexport
	// ImportDynamic is an `import()` call with a literal specifier.
	ImportDynamic
	// ImportRequire is a CommonJS `require()` call with a literal specifier.
	ImportRequire
)

// Import is one module specifier referenced by a source file.
type Import struct {
	Specifier string
	Kind      ImportKind
	// Line is 1-indexed.
	Line int
}

// ExtractImports returns every runtime module specifier referenced by content,
// in source order. Type-only imports and re-exports are left out since they
// never reach the bundle.
func ExtractImports(filePath string, content []byte) ([]Import, error) {
	qm, err := queryManager()
	if err != nil {
		return nil, parseError(err, filePath)
	}

	dialect := DialectFor(filePath)
	query, err := qm.Query(dialect, "imports")
	if err != nil {
		return nil, parseError(err, filePath)
	}

	var imports []Import
	err = parse(dialect, content, func(root *ts.Node) error {
		cursor := ts.NewQueryCursor()
		defer cursor.Close()

		matches := cursor.Matches(query, root, content)
		captureNames := query.CaptureNames()

		for {
			match := matches.Next()
			if match == nil {
				break
			}

			imp, ok := importFromMatch(match, captureNames, content)
			if ok {
				imports = append(imports, imp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, parseError(err, filePath)
	}

	return imports, nil
}

func importFromMatch(match *ts.QueryMatch, captureNames []string, content []byte) (Import, bool) {
	var (
		imp   Import
		found bool
	)

	for _, capture := range match.Captures {
		switch captureNames[capture.Index] {
		case "import.stmt", "reexport.stmt":
			if typeOnly(&capture.Node) {
				return Import{}, false
			}
			continue
		case "import.spec":
			imp.Kind = ImportStatic
		case "reexport.spec":
			imp.Kind = ImportReexport
		case "dynamicImport.spec":
			imp.Kind = ImportDynamic
		case "require.spec":
			imp.Kind = ImportRequire
		default:
			continue
		}
		imp.Specifier = capture.Node.Utf8Text(content)
		imp.Line = int(capture.Node.StartPosition().Row) + 1
		found = true
	}

	return imp, found && imp.Specifier != ""
}

// typeOnly reports whether an import or export statement carries the `type` modifier.
func typeOnly(stmt *ts.Node) bool {
	for i := range stmt.ChildCount() {
		child := stmt.Child(i)
		if child != nil && child.Kind() == "type" {
			return true
		}
	}
	return false
}
