// Package typeenv holds the type environment: the per-function and
// per-class variable-to-class maps the usage analyzer consults and updates
// while resolving expressions, plus the process-wide table of inferred
// parameter types that the fixpoint driver folds back into each Code entity
// at the end of a pass.
package typeenv

// Scope maps names in a single function body — local variables, including
// "self.x" attribute spellings — to inferred class uniqueNames. Built fresh
// for every function.
type Scope struct {
	vars map[string]string
}

// NewScope returns an empty Scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]string)}
}

// Bind records name's inferred class. An empty classUniqueName is a no-op:
// the environment only ever grows more specific within a single pass.
func (s *Scope) Bind(name, classUniqueName string) {
	if classUniqueName == "" {
		return
	}
	s.vars[name] = classUniqueName
}

// Lookup returns the class uniqueName bound to name, or "" if unbound. A nil
// Scope has no bindings.
func (s *Scope) Lookup(name string) string {
	if s == nil {
		return ""
	}
	return s.vars[name]
}

// Export returns a copy of every binding currently held, keyed by name.
// Used at function exit to fold "self.x" bindings into the enclosing
// class's ClassScope.
func (s *Scope) Export() map[string]string {
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// ClassScope is the class_variable_types map for one class body: class
// attribute name to inferred class uniqueName, shared by every method of
// that class within a single pass and reset when the usage analyzer moves
// to the next class.
type ClassScope struct {
	vars map[string]string
}

// NewClassScope returns an empty ClassScope.
func NewClassScope() *ClassScope {
	return &ClassScope{vars: make(map[string]string)}
}

// Bind records attrName's inferred class for the class.
func (c *ClassScope) Bind(attrName, classUniqueName string) {
	if classUniqueName == "" {
		return
	}
	c.vars[attrName] = classUniqueName
}

// Lookup returns the class uniqueName bound to attrName, or "" if unbound.
// A nil ClassScope (no enclosing class) has no bindings.
func (c *ClassScope) Lookup(attrName string) string {
	if c == nil {
		return ""
	}
	return c.vars[attrName]
}

// ParamAssignments is the process-wide parameter-type table: for every Code
// uniqueName, the class uniqueName inferred for each of its parameters from
// call-site arguments observed anywhere in the corpus during the current
// pass. The usage analyzer writes into it as it resolves calls; the fixpoint
// driver reads it at the end of a pass to update each Code's ParameterTypes
// and decide whether another pass is needed.
type ParamAssignments struct {
	byCode map[string]map[string]string
}

// NewParamAssignments returns an empty table.
func NewParamAssignments() *ParamAssignments {
	return &ParamAssignments{byCode: make(map[string]map[string]string)}
}

// Assign records that codeUniqueName's parameter paramName was observed
// bound to classUniqueName at some call site. Returns true if this changes
// what was previously recorded for that (code, param) pair this pass.
func (p *ParamAssignments) Assign(codeUniqueName, paramName, classUniqueName string) bool {
	if classUniqueName == "" {
		return false
	}
	params, ok := p.byCode[codeUniqueName]
	if !ok {
		params = make(map[string]string)
		p.byCode[codeUniqueName] = params
	}
	if params[paramName] == classUniqueName {
		return false
	}
	params[paramName] = classUniqueName
	return true
}

// For returns the parameter->class map recorded for codeUniqueName during
// the current pass, or nil if nothing was recorded.
func (p *ParamAssignments) For(codeUniqueName string) map[string]string {
	return p.byCode[codeUniqueName]
}

// Reset clears all recorded assignments ahead of a new pass. Unlike
// somix.Model.ResetUsageRelations, this table holds only pass-local
// observations; it carries no cross-pass state of its own; the persisted
// state lives in each Code's ParameterTypes map in the somix package.
func (p *ParamAssignments) Reset() {
	p.byCode = make(map[string]map[string]string)
}
