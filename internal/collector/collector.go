// Package collector implements the definition collector: the first-pass
// visitor over a parsed Python syntax tree that populates the symbol table
// and entity set with modules, classes, functions/methods, and data.
package collector

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/somix-extract/internal/pyparse"
	"github.com/viant/somix-extract/internal/resolver"
	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/symtab"
)

// Collector runs the definition pass over one file at a time, writing
// into a shared Model and Table.
type Collector struct {
	Model   *somix.Model
	Symbols *symtab.Table
}

// New returns a Collector writing into model/table.
func New(model *somix.Model, table *symtab.Table) *Collector {
	return &Collector{Model: model, Symbols: table}
}

// FileResult is everything the collector learns about one module that the
// usage analyzer later needs: its dotted module name and its import
// namespace.
type FileResult struct {
	Module    string
	Namespace resolver.Namespace
}

// CollectFile runs the definition pass over tree, whose module name is
// derived by the walker from the file's path relative to the base
// directory. absPath is used only to build editor links.
func (c *Collector) CollectFile(tree *pyparse.Tree, module, absPath string) *FileResult {
	ns := resolver.NewNamespace()

	moduleGrouping := &somix.Grouping{
		Entity: somix.Entity{
			Name:          lastSegment(module),
			UniqueName:    module,
			TechnicalType: somix.TechPythonFile,
			LinkToEditor:  link(absPath, tree.Root),
		},
		IsMain: true,
	}
	c.Model.AddGrouping(moduleGrouping)
	c.Symbols.Put(module, symtab.KindGrouping, moduleGrouping)
	c.Model.AddParentChild("", module, true) // modules are roots

	w := &walker{
		c:      c,
		tree:   tree,
		module: module,
		ns:     ns,
		path:   absPath,
		locals: make(map[string]bool),
	}
	w.walkModuleBody(tree.Root)

	return &FileResult{Module: module, Namespace: ns}
}

// walker carries the descent state the collector needs while visiting one
// file's tree: the enclosing class/function (for uniqueName construction)
// and the accumulating import namespace.
type walker struct {
	c      *Collector
	tree   *pyparse.Tree
	module string
	ns     resolver.Namespace
	path   string
	class  string // current enclosing class uniqueName, "" at module scope
	funcIn string // current enclosing function uniqueName, "" outside a function
	locals map[string]bool
}

func (w *walker) walkModuleBody(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.visitStatement(n.Child(i))
	}
}

func (w *walker) visitStatement(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case pyparse.KindImportStatement:
		w.visitImport(n)
	case pyparse.KindImportFrom:
		w.visitImportFrom(n)
	case pyparse.KindClassDefinition:
		w.visitClass(n)
	case pyparse.KindFunctionDefinition:
		w.visitFunction(n)
	case pyparse.KindAssignment:
		w.visitAssignment(n)
	case pyparse.KindExpressionStmt:
		for i := 0; i < int(n.ChildCount()); i++ {
			w.visitStatement(n.Child(i))
		}
	case pyparse.KindIfStatement, pyparse.KindBlock:
		for i := 0; i < int(n.ChildCount()); i++ {
			w.visitStatement(n.Child(i))
		}
	}
}

// visitImport handles "import m [as n]", binding the local alias (n, or m
// itself) to m. A single import statement may list several comma-separated
// dotted names.
func (w *walker) visitImport(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyparse.KindDottedName, pyparse.KindIdentifier:
			name := w.tree.Text(child)
			w.ns[name] = name
		case pyparse.KindAliasedImport:
			w.visitAliasedImport(child)
		}
	}
}

func (w *walker) visitAliasedImport(n *sitter.Node) {
	var orig, alias string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyparse.KindDottedName:
			orig = w.tree.Text(child)
		case pyparse.KindIdentifier:
			if orig == "" {
				orig = w.tree.Text(child)
			} else {
				alias = w.tree.Text(child)
			}
		}
	}
	if orig == "" {
		return
	}
	if alias == "" {
		alias = orig
	}
	w.ns[alias] = orig
}

// visitImportFrom handles "from M import n [as a]", binding the local alias
// (a, or n itself) to "M.n".
func (w *walker) visitImportFrom(n *sitter.Node) {
	var module string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyparse.KindDottedName:
			if module == "" {
				module = w.tree.Text(child)
				continue
			}
			name := w.tree.Text(child)
			w.ns[name] = module + "." + name
		case pyparse.KindIdentifier:
			name := w.tree.Text(child)
			w.ns[name] = module + "." + name
		case pyparse.KindAliasedImport:
			var orig, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc == nil {
					continue
				}
				switch gc.Type() {
				case pyparse.KindDottedName, pyparse.KindIdentifier:
					if orig == "" {
						orig = w.tree.Text(gc)
					} else {
						alias = w.tree.Text(gc)
					}
				}
			}
			if orig == "" {
				continue
			}
			if alias == "" {
				alias = orig
			}
			w.ns[alias] = module + "." + orig
		}
	}
}

// visitClass handles a class_definition. A class nested inside another
// class extends the dotted uniqueName scheme one level deeper rather than
// being rejected.
func (w *walker) visitClass(n *sitter.Node) {
	name := firstIdentifierText(w.tree, n)
	if name == "" {
		return
	}
	parent := w.module
	if w.class != "" {
		parent = w.class
	}
	uname := parent + "." + name

	grouping := &somix.Grouping{
		Entity: somix.Entity{
			Name:          name,
			UniqueName:    uname,
			TechnicalType: somix.TechClass,
			LinkToEditor:  link(w.path, n),
		},
	}
	w.c.Model.AddGrouping(grouping)
	w.c.Symbols.Put(uname, symtab.KindGrouping, grouping)
	w.attach(parent, uname, false)

	prevClass := w.class
	w.class = uname
	if body := blockOf(n); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			w.visitStatement(body.Child(i))
		}
	}
	w.class = prevClass
}

func (w *walker) visitFunction(n *sitter.Node) {
	name := firstIdentifierText(w.tree, n)
	if name == "" {
		return
	}
	parent := w.module
	technical := somix.TechFunction
	if w.class != "" {
		parent = w.class
		technical = somix.TechMethod
	}
	uname := parent + "." + name

	params := extractParamNames(w.tree, n)
	code := somix.NewCode(params)
	code.Entity = somix.Entity{
		Name:          name,
		UniqueName:    uname,
		TechnicalType: technical,
		LinkToEditor:  link(w.path, n),
	}
	w.c.Model.AddCode(code)
	w.c.Symbols.Put(uname, symtab.KindCode, code)
	w.attach(parent, uname, false)

	prevFunc := w.funcIn
	w.funcIn = uname
	if body := blockOf(n); body != nil {
		w.visitFunctionBody(body)
	}
	w.funcIn = prevFunc
}

// visitFunctionBody descends a function body looking only for nested
// function and class definitions and assignments; it does not need call/attribute
// handling, that is the usage analyzer's job.
func (w *walker) visitFunctionBody(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case pyparse.KindFunctionDefinition:
		w.visitFunction(n)
		return
	case pyparse.KindClassDefinition:
		w.visitClass(n)
		return
	case pyparse.KindAssignment:
		w.visitAssignment(n)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.visitFunctionBody(n.Child(i))
	}
}

// visitAssignment handles assignment targets: a simple name at
// module/class/function scope, or a "self.x" attribute inside a method.
func (w *walker) visitAssignment(n *sitter.Node) {
	target := assignmentTarget(n)
	if target == nil {
		return
	}
	switch target.Type() {
	case pyparse.KindIdentifier:
		w.bindSimpleName(w.tree.Text(target), target)
	case pyparse.KindAttribute:
		w.bindAttribute(target)
	}
}

func (w *walker) bindSimpleName(name string, pos *sitter.Node) {
	var uname string
	enterTable := true
	switch {
	case w.funcIn != "":
		uname = w.funcIn + "." + name
		enterTable = false
	case w.class != "":
		uname = w.class + "." + name
	default:
		uname = w.module + "." + name
	}

	parent := w.module
	if w.funcIn != "" {
		parent = w.funcIn
	} else if w.class != "" {
		parent = w.class
	}

	if enterTable {
		if _, ok := w.c.Symbols.Get(uname); ok {
			return
		}
	} else {
		// Locals never enter the symbol table, so they need their own
		// dedup: a second assignment to the same local must not mint a
		// second Data entity under the same uniqueName.
		if w.locals[uname] {
			return
		}
		w.locals[uname] = true
	}
	data := &somix.Data{Entity: somix.Entity{
		Name:          name,
		UniqueName:    uname,
		TechnicalType: somix.TechPythonVariable,
		LinkToEditor:  link(w.path, pos),
	}}
	w.c.Model.AddData(data)
	if enterTable {
		w.c.Symbols.Put(uname, symtab.KindData, data)
	}
	w.attach(parent, uname, true)
}

// bindAttribute handles "self.x = ...": the attribute is owned by the
// enclosing class, deduplicated if already declared by another method.
func (w *walker) bindAttribute(attr *sitter.Node) {
	if w.class == "" {
		return
	}
	obj, field := splitAttribute(w.tree, attr)
	if obj != "self" || field == "" {
		return
	}
	uname := w.class + "." + field
	if _, ok := w.c.Symbols.Get(uname); ok {
		return
	}
	data := &somix.Data{Entity: somix.Entity{
		Name:          field,
		UniqueName:    uname,
		TechnicalType: somix.TechPythonVariable,
		LinkToEditor:  link(w.path, attr),
	}}
	w.c.Model.AddData(data)
	w.c.Symbols.Put(uname, symtab.KindData, data)
	w.attach(w.class, uname, true)
}

// attach records a ParentChild relation and, when the parent is a Grouping
// (module or class), appends the child to its Children list. Parents that
// are Code entities (locals inside a function) carry no child list.
func (w *walker) attach(parent, child string, isMain bool) {
	w.c.Model.AddParentChild(parent, child, isMain)
	if entry, ok := w.c.Symbols.Get(parent); ok && entry.Kind == symtab.KindGrouping {
		g := entry.Value.(*somix.Grouping)
		g.Children = append(g.Children, child)
	}
}

// lastSegment returns the final dot-separated segment of a module name, the
// module's own short name.
func lastSegment(module string) string {
	if i := strings.LastIndexByte(module, '.'); i >= 0 {
		return module[i+1:]
	}
	return module
}

// --- tree-shape helpers -----------------------------------------------

func firstIdentifierText(t *pyparse.Tree, n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == pyparse.KindIdentifier {
			return t.Text(child)
		}
	}
	return ""
}

func blockOf(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == pyparse.KindBlock {
			return child
		}
	}
	return nil
}

// extractParamNames reads a function_definition's parameters node, returning
// plain parameter names in declaration order ("self" included — callers that
// need to exclude it do so explicitly). Defaults, type annotations, *args,
// and **kwargs are reduced to their bound name.
func extractParamNames(t *pyparse.Tree, fn *sitter.Node) []string {
	var params *sitter.Node
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child != nil && child.Type() == pyparse.KindParameters {
			params = child
			break
		}
	}
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case pyparse.KindIdentifier:
			names = append(names, t.Text(child))
		case "default_parameter", "typed_parameter", "typed_default_parameter",
			"list_splat_pattern", "dictionary_splat_pattern":
			if name := firstIdentifierText(t, child); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// assignmentTarget returns the left-hand side node of a simple assignment:
// the child before the literal "=" token.
func assignmentTarget(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "=" {
			if i == 0 {
				return nil
			}
			return n.Child(i - 1)
		}
	}
	return nil
}

// splitAttribute returns ("self", "x") for a self.x attribute node; the
// object half is the first child, the attribute name the last identifier.
func splitAttribute(t *pyparse.Tree, attr *sitter.Node) (object, field string) {
	if attr.ChildCount() == 0 {
		return "", ""
	}
	obj := attr.Child(0)
	if obj != nil {
		object = t.Text(obj)
	}
	for i := int(attr.ChildCount()) - 1; i >= 0; i-- {
		child := attr.Child(i)
		if child != nil && child.Type() == pyparse.KindIdentifier {
			field = t.Text(child)
			break
		}
	}
	return object, field
}

func link(absPath string, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	p := filepath.ToSlash(absPath)
	row := int(n.StartPoint().Row) + 1
	col := int(n.StartPoint().Column) + 1
	return fmt.Sprintf("vscode://file/%s/:%d:%d", p, row, col)
}

