package jsparse

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Shape summarizes the module syntax found at the top level of a file.
type Shape struct {
	// HasImports is true when the file has at least one import statement.
	HasImports bool
	// HasExports is true when the file has at least one export statement.
	HasExports bool
	// HasDefault is true when the file exports a default binding.
	HasDefault bool
}

// ESM reports whether the file uses ES module syntax at all.
func (s Shape) ESM() bool {
	return s.HasImports || s.HasExports
}

// AnalyzeShape inspects the top-level statements of content.
func AnalyzeShape(filePath string, content []byte) (Shape, error) {
	var shape Shape
	err := parse(DialectFor(filePath), content, func(root *ts.Node) error {
		for i := range root.NamedChildCount() {
			stmt := root.NamedChild(i)
			if stmt == nil {
				continue
			}
			switch stmt.Kind() {
			case "import_statement":
				shape.HasImports = true
			case "export_statement":
				shape.HasExports = true
				if !shape.HasDefault && exportsDefault(stmt, content) {
					shape.HasDefault = true
				}
			}
		}
		return nil
	})
	if err != nil {
		return Shape{}, parseError(err, filePath)
	}
	return shape, nil
}

// exportsDefault covers `export default ...` and `export { x as default }`.
func exportsDefault(stmt *ts.Node, content []byte) bool {
	for i := range stmt.ChildCount() {
		child := stmt.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "default":
			return true
		case "export_clause":
			if clauseExportsDefault(child, content) {
				return true
			}
		}
	}
	return false
}

func clauseExportsDefault(clause *ts.Node, content []byte) bool {
	for i := range clause.NamedChildCount() {
		spec := clause.NamedChild(i)
		if spec == nil || spec.Kind() != "export_specifier" {
			continue
		}
		exported := spec.ChildByFieldName("alias")
		if exported == nil {
			exported = spec.ChildByFieldName("name")
		}
		if exported != nil && exported.Utf8Text(content) == "default" {
			return true
		}
	}
	return false
}
