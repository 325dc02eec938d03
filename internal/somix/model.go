package somix

// Model is the accumulated structural model for one extraction run: every
// entity created by the definition collector plus every relation recorded
// by the usage analyzer.
type Model struct {
	Groupings []*Grouping
	Codes     []*Code
	Datas     []*Data

	ParentChildren []ParentChild
	Calls          []Call
	Accesses       []Access
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{}
}

// AddGrouping appends a Grouping entity in insertion order.
func (m *Model) AddGrouping(g *Grouping) { m.Groupings = append(m.Groupings, g) }

// AddCode appends a Code entity in insertion order.
func (m *Model) AddCode(c *Code) { m.Codes = append(m.Codes, c) }

// AddData appends a Data entity in insertion order.
func (m *Model) AddData(d *Data) { m.Datas = append(m.Datas, d) }

// AddParentChild records a structural containment relation.
func (m *Model) AddParentChild(parent, child string, isMain bool) {
	m.ParentChildren = append(m.ParentChildren, ParentChild{ParentUniqueName: parent, ChildUniqueName: child, IsMain: isMain})
}

// AddCall records a resolved call relation.
func (m *Model) AddCall(caller, called string) {
	m.Calls = append(m.Calls, Call{CallerUniqueName: caller, CalledUniqueName: called})
}

// AddAccess records a resolved data access relation.
func (m *Model) AddAccess(accessor, accessed string, isRead, isWrite bool) {
	m.Accesses = append(m.Accesses, Access{
		AccessorUniqueName: accessor,
		AccessedUniqueName: accessed,
		IsRead:             isRead,
		IsWrite:            isWrite,
		IsDependent:        true,
	})
}

// ResetUsageRelations clears the pass-local Calls and Accesses lists ahead
// of a new usage analyzer pass. ParentChild relations are recorded once by
// the definition collector and are never reset; entities are never cleared
// either. Only Calls and Accesses are last-pass-wins.
func (m *Model) ResetUsageRelations() {
	m.Calls = m.Calls[:0]
	m.Accesses = m.Accesses[:0]
}
