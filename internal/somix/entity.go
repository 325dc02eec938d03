// Package somix defines the SOMIX meta-model entities and relations that the
// extractor populates: Grouping / Code / Data entities and the ParentChild /
// Call / Access relations between them.
package somix

// TechnicalType tags the concrete flavor of an entity.
type TechnicalType string

const (
	TechPythonFile     TechnicalType = "PythonFile"
	TechClass          TechnicalType = "class"
	TechFunction       TechnicalType = "function"
	TechMethod         TechnicalType = "method"
	TechPythonVariable TechnicalType = "PythonVariable"
)

// Entity is the envelope shared by Grouping, Code and Data. ID is
// late-bound: it stays zero until the serializer assigns one.
type Entity struct {
	ID            int
	Name          string
	UniqueName    string
	TechnicalType TechnicalType
	LinkToEditor  string
}

// Grouping is a module (source file) or a class.
type Grouping struct {
	Entity
	IsMain   bool
	Children []string // unique names of direct children, insertion order
}

// Code is a function or method.
type Code struct {
	Entity
	// Parameters lists parameter names in declaration order; ParameterTypes
	// maps each name to its inferred class uniqueName, or "" for unknown.
	Parameters     []string
	ParameterTypes map[string]string
}

// NewCode builds a Code entity with parameters seeded to unknown, preserving order.
func NewCode(params []string) *Code {
	types := make(map[string]string, len(params))
	for _, p := range params {
		types[p] = ""
	}
	return &Code{Parameters: params, ParameterTypes: types}
}

// SetParameterType assigns a class uniqueName to a parameter. A bound
// parameter may be reassigned to a different class but never erased back
// to unknown.
func (c *Code) SetParameterType(name, classUniqueName string) (changed bool) {
	if classUniqueName == "" {
		return false
	}
	if c.ParameterTypes[name] == classUniqueName {
		return false
	}
	c.ParameterTypes[name] = classUniqueName
	return true
}

// Data is a variable: global, class attribute, or instance attribute.
type Data struct {
	Entity
}
