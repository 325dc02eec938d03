// Package usage implements the usage analyzer: the second-pass visitor that
// resolves call targets and data accesses against the already-populated
// symbol table, proposing parameter type updates along the way.
package usage

import (
	"errors"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/viant/somix-extract/internal/pyparse"
	"github.com/viant/somix-extract/internal/resolver"
	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/symtab"
	"github.com/viant/somix-extract/internal/typeenv"
	"github.com/viant/somix-extract/internal/xerrors"
	"github.com/viant/somix-extract/internal/xlog"
)

// errUnbound marks a dotted chain no symbol table entry binds.
var errUnbound = errors.New("name is not bound in the symbol table")

// ignoredBuiltins holds the Python built-ins whose calls never produce a
// Call record.
var ignoredBuiltins = map[string]bool{
	"print": true, "len": true, "range": true, "str": true, "int": true,
	"float": true, "list": true, "dict": true, "set": true, "tuple": true,
	"open": true,
}

// Analyzer runs one usage analyzer pass over every file's tree, writing
// Call/Access records into the shared model and parameter-type proposals
// into the shared assignment table.
type Analyzer struct {
	Model    *somix.Model
	Symbols  *symtab.Table
	Resolver *resolver.Resolver
	Params   *typeenv.ParamAssignments
}

// New returns an Analyzer over the given shared state.
func New(model *somix.Model, table *symtab.Table, res *resolver.Resolver, params *typeenv.ParamAssignments) *Analyzer {
	return &Analyzer{Model: model, Symbols: table, Resolver: res, Params: params}
}

// File is everything the usage analyzer needs for one source file: its
// parsed tree, its module name, and the import namespace the definition
// pass built for it.
type File struct {
	Tree      *pyparse.Tree
	Module    string
	Namespace resolver.Namespace
}

// Analyze runs a single pass over f, descending into every class and
// function and emitting Call/Access records plus parameter-type proposals.
func (a *Analyzer) Analyze(f File) {
	v := &visitor{a: a, tree: f.Tree, module: f.Module, ns: f.Namespace}
	v.walkModuleBody(f.Tree.Root)
}

type visitor struct {
	a      *Analyzer
	tree   *pyparse.Tree
	module string
	ns     resolver.Namespace
	class  string
	code   string // current function/method uniqueName
	vars   *typeenv.Scope
	cvars  *typeenv.ClassScope
}

func (v *visitor) ctx() resolver.Context {
	return resolver.Context{
		Module:       v.module,
		CurrentClass: v.class,
		Namespace:    v.ns,
		Vars:         v.vars,
		ClassVars:    v.cvars,
	}
}

func (v *visitor) walkModuleBody(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		v.visitStatement(n.Child(i))
	}
}

func (v *visitor) visitStatement(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case pyparse.KindClassDefinition:
		v.visitClass(n)
	case pyparse.KindFunctionDefinition:
		v.visitFunction(n)
	case pyparse.KindIfStatement, pyparse.KindBlock, pyparse.KindExpressionStmt:
		for i := 0; i < int(n.ChildCount()); i++ {
			v.visitStatement(n.Child(i))
		}
	}
}

func (v *visitor) visitClass(n *sitter.Node) {
	name := firstIdentifierText(v.tree, n)
	if name == "" {
		return
	}
	parent := v.module
	if v.class != "" {
		parent = v.class
	}
	uname := parent + "." + name

	prevClass, prevCVars := v.class, v.cvars
	v.class = uname
	v.cvars = typeenv.NewClassScope()

	if body := blockOf(n); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			v.visitStatement(body.Child(i))
		}
	}

	v.class, v.cvars = prevClass, prevCVars
}

func (v *visitor) visitFunction(n *sitter.Node) {
	name := firstIdentifierText(v.tree, n)
	if name == "" {
		return
	}
	parent := v.module
	if v.class != "" {
		parent = v.class
	}
	uname := parent + "." + name

	entry, ok := v.a.Symbols.Get(uname)
	if !ok || entry.Kind != symtab.KindCode {
		return
	}
	code := entry.Value.(*somix.Code)

	prevCode, prevVars := v.code, v.vars
	v.code = uname
	v.vars = typeenv.NewScope()
	for param, classUname := range code.ParameterTypes {
		v.vars.Bind(param, classUname)
	}

	if body := blockOf(n); body != nil {
		v.walkBody(body)
	}

	if v.cvars != nil {
		for name, classUname := range snapshotSelfBindings(v.vars) {
			v.cvars.Bind(name, classUname)
		}
	}

	v.code, v.vars = prevCode, prevVars
}

// snapshotSelfBindings extracts the subset of a function scope's bindings
// whose key begins with "self.", merged into the enclosing class's scope at
// function exit so later methods see attribute types bound by earlier ones.
func snapshotSelfBindings(s *typeenv.Scope) map[string]string {
	out := make(map[string]string)
	for k, val := range s.Export() {
		if strings.HasPrefix(k, "self.") {
			out[k] = val
		}
	}
	return out
}

func (v *visitor) walkBody(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case pyparse.KindFunctionDefinition:
		v.visitFunction(n)
		return
	case pyparse.KindClassDefinition:
		v.visitClass(n)
		return
	case pyparse.KindAssignment:
		v.visitAssignment(n)
		v.walkExpr(assignmentRHS(n))
		return
	case pyparse.KindCall:
		v.visitCall(n)
		for i := 0; i < int(n.ChildCount()); i++ {
			v.walkBody(n.Child(i))
		}
		return
	case pyparse.KindAttribute:
		v.visitAttributeRead(n)
	case pyparse.KindIdentifier:
		v.visitBareName(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		v.walkBody(n.Child(i))
	}
}

// walkExpr descends an expression purely to surface nested calls/accesses
// it contains (e.g. the right-hand side of an assignment), without treating
// the expression itself as a new statement boundary.
func (v *visitor) walkExpr(n *sitter.Node) {
	if n == nil {
		return
	}
	v.walkBody(n)
}

func (v *visitor) visitAssignment(n *sitter.Node) {
	target := assignmentTarget(n)
	value := assignmentRHS(n)
	if target == nil || value == nil {
		return
	}
	switch target.Type() {
	case pyparse.KindIdentifier:
		name := v.tree.Text(target)
		classUname, _, ok := v.inferExprType(value)
		if ok {
			v.vars.Bind(name, classUname)
		}
	case pyparse.KindAttribute:
		obj, field := splitAttribute(v.tree, target)
		if obj != "self" || field == "" {
			return
		}
		classUname, _, ok := v.inferExprType(value)
		if ok {
			v.vars.Bind("self."+field, classUname)
		}
		v.emitSelfWrite(field)
	}
}

// emitSelfWrite records "self.field = ..." as a write Access on the
// enclosing class's data member. A self-attribute assignment is a write,
// never a read, regardless of which method it appears in.
func (v *visitor) emitSelfWrite(field string) {
	if v.code == "" || v.class == "" {
		return
	}
	dataUname := v.class + "." + field
	entry, ok := v.a.Symbols.Get(dataUname)
	if !ok || entry.Kind != symtab.KindData {
		return
	}
	v.a.Model.AddAccess(v.code, dataUname, false, true)
}

// inferExprType infers a value expression's class type: a call "C(...)"
// resolves C as a class; a bare name returns its bound type.
func (v *visitor) inferExprType(expr *sitter.Node) (classUname, initUname string, ok bool) {
	switch expr.Type() {
	case pyparse.KindCall:
		callee := calleeText(v.tree, expr)
		if callee == "" {
			return "", "", false
		}
		return v.a.Resolver.InferExpressionType(v.ctx(), "", true, callee)
	case pyparse.KindIdentifier:
		name := v.tree.Text(expr)
		c, i, ok := v.a.Resolver.InferExpressionType(v.ctx(), name, false, "")
		return c, i, ok
	default:
		return "", "", false
	}
}

// visitCall resolves a call expression and emits a Call record plus
// parameter-type proposals for each positional argument.
func (v *visitor) visitCall(n *sitter.Node) {
	if v.code == "" {
		return
	}
	callee := calleeText(v.tree, n)
	if callee == "" || ignoredBuiltins[callee] {
		return
	}

	if strings.IndexByte(callee, '.') < 0 && isKnownClass(v, callee) {
		v.emitConstructorCall(callee)
		return
	}

	parts := strings.Split(callee, ".")
	calleeUname, viaInstance, ok := v.a.Resolver.ResolveCall(v.ctx(), parts)
	if !ok {
		// dropped, not fatal: the name may bind on a later pass once more
		// parameter types are known
		xlog.Default().Debug("dropping unresolved call",
			"caller", v.code, "error", xerrors.Resolve(callee, errUnbound))
		return
	}
	v.a.Model.AddCall(v.code, calleeUname)

	entry, ok := v.a.Symbols.Get(calleeUname)
	if !ok || entry.Kind != symtab.KindCode {
		return
	}
	calleeCode := entry.Value.(*somix.Code)
	// A call through a receiver ("self.g()", "x.m()") never names the
	// implicit first ("self") parameter explicitly; shift the binding so
	// argument 0 lines up with the callee's second declared parameter.
	paramOffset := 0
	if viaInstance && len(calleeCode.Parameters) > 0 {
		paramOffset = 1
	}
	args := argumentNodes(n)
	for i, argNode := range args {
		pi := i + paramOffset
		if pi >= len(calleeCode.Parameters) {
			break
		}
		param := calleeCode.Parameters[pi]
		argText := v.tree.Text(argNode)
		isCall := argNode.Type() == pyparse.KindCall
		callExpr := ""
		if isCall {
			callExpr = calleeText(v.tree, argNode)
		}
		classUname, ok := v.a.Resolver.InferArgumentType(v.ctx(), argText, isCall, callExpr)
		if ok {
			v.a.Params.Assign(calleeUname, param, classUname)
		}
	}
}

// emitConstructorCall handles "C(args)": it emits a Call to C's __init__
// only when that method actually exists; a class with no explicit __init__
// produces no constructor Call.
func (v *visitor) emitConstructorCall(className string) {
	_, initUname, ok := v.a.Resolver.InferExpressionType(v.ctx(), "", true, className)
	if !ok || initUname == "" {
		return
	}
	v.a.Model.AddCall(v.code, initUname)
}

func isKnownClass(v *visitor, name string) bool {
	_, ok := v.a.Resolver.ResolveClass(v.ctx(), name)
	return ok
}

// visitAttributeRead handles "base.attr" in read context: the attribute is
// attributed to the current class for a self receiver, or to base's
// inferred class when one is known.
func (v *visitor) visitAttributeRead(n *sitter.Node) {
	if v.code == "" {
		return
	}
	base, attr := splitAttribute(v.tree, n)
	if attr == "" {
		return
	}
	var owner string
	if base == "self" {
		if v.class == "" {
			return
		}
		owner = v.class
	} else {
		t := v.vars.Lookup(base)
		if t == "" {
			t = v.cvars.Lookup(base)
		}
		if t == "" {
			return
		}
		owner = t
	}
	dataUname := owner + "." + attr
	entry, ok := v.a.Symbols.Get(dataUname)
	if !ok || entry.Kind != symtab.KindData {
		return
	}
	v.a.Model.AddAccess(v.code, dataUname, true, false)
}

// visitBareName handles a bare name in read context: a reference to a
// module-level global.
func (v *visitor) visitBareName(n *sitter.Node) {
	if v.code == "" {
		return
	}
	if n.Parent() != nil && n.Parent().Type() == pyparse.KindAttribute {
		return
	}
	name := v.tree.Text(n)
	dataUname := v.module + "." + name
	entry, ok := v.a.Symbols.Get(dataUname)
	if !ok || entry.Kind != symtab.KindData {
		return
	}
	v.a.Model.AddAccess(v.code, dataUname, true, false)
}

// --- shared tree-shape helpers (mirroring internal/collector) ---------

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

func assignmentRHS(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == "=" && i+1 < int(n.ChildCount()) {
			return n.Child(i + 1)
		}
	}
	return nil
}

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

// calleeText returns the dotted text of a call expression's callee, e.g.
// "self.g" or "K" or "a.b.c".
func calleeText(t *pyparse.Tree, call *sitter.Node) string {
	if call.ChildCount() == 0 {
		return ""
	}
	fn := call.Child(0)
	if fn == nil {
		return ""
	}
	return t.Text(fn)
}

// argumentNodes returns the positional argument expression nodes of a call.
func argumentNodes(call *sitter.Node) []*sitter.Node {
	var args *sitter.Node
	for i := 0; i < int(call.ChildCount()); i++ {
		child := call.Child(i)
		if child != nil && child.Type() == pyparse.KindArgumentList {
			args = child
			break
		}
	}
	if args == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "(", ")", ",", "keyword_argument", "dictionary_splat", "comment":
			continue
		}
		out = append(out, child)
	}
	return out
}
