// Package resolver turns a dotted identifier chain encountered by the usage
// analyzer into a uniqueName bound in the symbol table,
// following import aliases, local variable bindings, and the self-receiver
// convention.
package resolver

import (
	"strings"

	"github.com/viant/somix-extract/internal/symtab"
	"github.com/viant/somix-extract/internal/typeenv"
)

// Namespace is a module's import namespace: alias -> fully qualified name,
// populated by the definition collector from import / import-from
// statements.
type Namespace map[string]string

// NewNamespace returns an empty Namespace.
func NewNamespace() Namespace { return make(Namespace) }

// Context bundles everything the resolver needs to resolve one dotted chain:
// which module/class/function we are inside, the module's import aliases,
// and the live type environment for the current function and class.
type Context struct {
	Module       string
	CurrentClass string // "" if not inside a class
	Namespace    Namespace
	Vars         *typeenv.Scope
	ClassVars    *typeenv.ClassScope
}

// Resolver resolves dotted chains against the shared symbol table, which is
// read-only once the definition pass completes.
type Resolver struct {
	Symbols *symtab.Table
}

// New returns a Resolver over table.
func New(table *symtab.Table) *Resolver {
	return &Resolver{Symbols: table}
}

// ResolveCall resolves a dotted call target "a.b.c..." with base a and rest
// [b, c, ...]. Returns the callee's uniqueName and true on success, or
// ("", false) if the chain cannot be bound to a Code entity.
// viaInstance reports whether base named a receiver (self, or a variable
// bound to a class instance) rather than a module/namespace qualifier — the
// callee's implicit "self" parameter is not among the call's own arguments.
func (r *Resolver) ResolveCall(ctx Context, parts []string) (calleeUniqueName string, viaInstance, ok bool) {
	if len(parts) == 0 {
		return "", false, false
	}
	base := parts[0]
	rest := parts[1:]

	candidate, viaInstance, resolved := r.baseCandidate(ctx, base, rest)
	if !resolved {
		return "", false, false
	}

	entry, found := r.Symbols.Get(candidate)
	if !found {
		return "", false, false
	}
	switch entry.Kind {
	case symtab.KindCode:
		return candidate, viaInstance, true
	case symtab.KindGrouping:
		if len(rest) == 0 {
			return "", false, false
		}
		retry := candidate + "." + rest[len(rest)-1]
		if e2, ok2 := r.Symbols.Get(retry); ok2 && e2.Kind == symtab.KindCode {
			return retry, viaInstance, true
		}
		return "", false, false
	default:
		return "", false, false
	}
}

// baseCandidate builds the first uniqueName guess for a dotted chain: self
// receiver, then bound local/instance variable, then import alias, then
// current-module qualification.
func (r *Resolver) baseCandidate(ctx Context, base string, rest []string) (candidate string, viaInstance, ok bool) {
	suffix := ""
	if len(rest) > 0 {
		suffix = "." + strings.Join(rest, ".")
	}

	if base == "self" {
		if ctx.CurrentClass == "" || len(rest) == 0 {
			return "", false, false
		}
		attr := rest[0]
		if classUname := ctx.ClassVars.Lookup("self." + attr); classUname != "" {
			tail := rest[1:]
			if len(tail) > 0 {
				return classUname + "." + strings.Join(tail, "."), true, true
			}
			return classUname, true, true
		}
		// self is always of the current class's own type: "self.g(...)"
		// calling a sibling method resolves directly against the current
		// class, not through the instance-attribute type map.
		return ctx.CurrentClass + "." + strings.Join(rest, "."), true, true
	}

	if bound := ctx.Vars.Lookup(base); bound != "" {
		return bound + suffix, true, true
	}
	if bound := ctx.ClassVars.Lookup(base); bound != "" {
		return bound + suffix, true, true
	}
	if qualified, ok := ctx.Namespace[base]; ok {
		return qualified + suffix, false, true
	}
	return ctx.Module + "." + base + suffix, false, true
}

// ResolveClass resolves a class name for instantiation: exact match, then
// namespace alias, then current-module qualification. Returns the class
// uniqueName and true if it names a Grouping.
func (r *Resolver) ResolveClass(ctx Context, name string) (string, bool) {
	if entry, ok := r.Symbols.Get(name); ok && entry.Kind == symtab.KindGrouping {
		return name, true
	}
	if qualified, ok := ctx.Namespace[name]; ok {
		if entry, ok2 := r.Symbols.Get(qualified); ok2 && entry.Kind == symtab.KindGrouping {
			return qualified, true
		}
	}
	candidate := ctx.Module + "." + name
	if entry, ok := r.Symbols.Get(candidate); ok && entry.Kind == symtab.KindGrouping {
		return candidate, true
	}
	return "", false
}

// InferExpressionType infers the class uniqueName of a simple expression: a
// call "C(...)" resolves C as a class and yields C's uniqueName; a bare
// name yields its bound type, if any; anything else is unknown.
//
// isCall/callExpr describe a call expression when the expression being
// inferred is a call: isCall is true and callExpr is the callee text (e.g.
// "K"). When the expression is not a call, pass isCall == false and
// callExpr == "" and use simpleName instead.
func (r *Resolver) InferExpressionType(ctx Context, simpleName string, isCall bool, callExpr string) (classUniqueName string, initCall string, ok bool) {
	if isCall {
		classUname, found := r.ResolveClass(ctx, callExpr)
		if !found {
			return "", "", false
		}
		initUname := classUname + ".__init__"
		if entry, ok2 := r.Symbols.Get(initUname); ok2 && entry.Kind == symtab.KindCode {
			return classUname, initUname, true
		}
		return classUname, "", true
	}
	if t := ctx.Vars.Lookup(simpleName); t != "" {
		return t, "", true
	}
	if t := ctx.ClassVars.Lookup(simpleName); t != "" {
		return t, "", true
	}
	return "", "", false
}

// InferArgumentType infers the class uniqueName of a call argument: same as
// expression inference, plus self.x attributes consult the class
// attribute-type map.
func (r *Resolver) InferArgumentType(ctx Context, argText string, isCall bool, callExpr string) (string, bool) {
	if strings.HasPrefix(argText, "self.") {
		if t := ctx.ClassVars.Lookup(argText); t != "" {
			return t, true
		}
		return "", false
	}
	classUname, _, ok := r.InferExpressionType(ctx, argText, isCall, callExpr)
	return classUname, ok
}
