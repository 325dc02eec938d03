package somix

// ParentChild records structural containment. IsMain is true when the child
// "lives in" the parent (module->class, class->data); false for
// function/method membership.
type ParentChild struct {
	ParentUniqueName string
	ChildUniqueName  string
	IsMain           bool
}

// Call records a resolved call from one Code entity to another.
type Call struct {
	CallerUniqueName string
	CalledUniqueName string
}

// Access records a Code entity reading and/or writing a Data entity.
// IsDependent is always true in the current design.
type Access struct {
	AccessorUniqueName string
	AccessedUniqueName string
	IsRead             bool
	IsWrite            bool
	IsDependent        bool
}
