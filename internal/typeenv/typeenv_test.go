package typeenv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/somix-extract/internal/typeenv"
)

func TestScope_BindLookup(t *testing.T) {
	s := typeenv.NewScope()
	assert.Equal(t, "", s.Lookup("x"))

	s.Bind("x", "p.C")
	assert.Equal(t, "p.C", s.Lookup("x"))

	s.Bind("y", "") // empty class is a no-op
	assert.Equal(t, "", s.Lookup("y"))
}

func TestScope_Export(t *testing.T) {
	s := typeenv.NewScope()
	s.Bind("self.x", "p.D")
	s.Bind("y", "p.E")

	out := s.Export()
	assert.Equal(t, map[string]string{"self.x": "p.D", "y": "p.E"}, out)

	// Export returns a copy; mutating it must not affect the scope.
	out["self.x"] = "mutated"
	assert.Equal(t, "p.D", s.Lookup("self.x"))
}

func TestClassScope_BindLookup(t *testing.T) {
	c := typeenv.NewClassScope()
	c.Bind("self.x", "p.D")
	assert.Equal(t, "p.D", c.Lookup("self.x"))
	assert.Equal(t, "", c.Lookup("self.y"))
}

func TestParamAssignments_AssignFor(t *testing.T) {
	p := typeenv.NewParamAssignments()
	assert.Nil(t, p.For("p.f"))

	changed := p.Assign("p.f", "x", "p.C")
	assert.True(t, changed)
	assert.Equal(t, map[string]string{"x": "p.C"}, p.For("p.f"))

	changed = p.Assign("p.f", "x", "p.C")
	assert.False(t, changed, "re-assigning the same class this pass is not a change")

	changed = p.Assign("p.f", "x", "")
	assert.False(t, changed)
}

func TestParamAssignments_Reset(t *testing.T) {
	p := typeenv.NewParamAssignments()
	p.Assign("p.f", "x", "p.C")
	p.Reset()
	assert.Nil(t, p.For("p.f"))
}
