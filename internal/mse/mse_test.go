package mse_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/somix-extract/internal/mse"
	"github.com/viant/somix-extract/internal/somix"
)

func buildModel() *somix.Model {
	m := somix.NewModel()
	mod := &somix.Grouping{Entity: somix.Entity{Name: "m", UniqueName: "m", TechnicalType: somix.TechPythonFile}, IsMain: true}
	cls := &somix.Grouping{Entity: somix.Entity{Name: "C", UniqueName: "m.C", TechnicalType: somix.TechClass}}
	f := somix.NewCode([]string{"self"})
	f.Entity = somix.Entity{Name: "f", UniqueName: "m.C.f", TechnicalType: somix.TechMethod}
	g := somix.NewCode([]string{"self"})
	g.Entity = somix.Entity{Name: "g", UniqueName: "m.C.g", TechnicalType: somix.TechMethod}

	m.AddGrouping(mod)
	m.AddGrouping(cls)
	m.AddCode(f)
	m.AddCode(g)
	m.AddParentChild("", "m", true)
	m.AddParentChild("m", "m.C", false)
	m.AddParentChild("m.C", "m.C.f", false)
	m.AddParentChild("m.C", "m.C.g", false)
	m.AddCall("m.C.f", "m.C.g")
	return m
}

func TestSerialize_EmitsEntitiesAndRelations(t *testing.T) {
	m := buildModel()
	s := mse.New()

	out, err := s.Serialize(m)
	assert.NoError(t, err)

	doc := string(out)
	assert.True(t, strings.HasPrefix(doc, "(\n"))
	assert.Contains(t, doc, "(SOMIX.Grouping")
	assert.Contains(t, doc, "(uniqueName 'm.C')")
	assert.Contains(t, doc, "(SOMIX.Code")
	assert.Contains(t, doc, "(SOMIX.Call")
	assert.Contains(t, doc, "(SOMIX.ParentChild")

	fID, ok := s.IDFor("m.C.f")
	assert.True(t, ok)
	gID, ok := s.IDFor("m.C.g")
	assert.True(t, ok)
	assert.Contains(t, doc, "(caller (ref: "+strconv.Itoa(fID)+"))")
	assert.Contains(t, doc, "(called (ref: "+strconv.Itoa(gID)+"))")
}

func TestSerialize_Deterministic(t *testing.T) {
	first, err := mse.New().Serialize(buildModel())
	assert.NoError(t, err)
	second, err := mse.New().Serialize(buildModel())
	assert.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSerialize_DropsDanglingRelations(t *testing.T) {
	m := somix.NewModel()
	m.AddCall("m.missing.a", "m.missing.b")
	m.AddAccess("m.missing.a", "m.missing.x", true, false)

	s := mse.New()
	out, err := s.Serialize(m)
	assert.NoError(t, err)

	doc := string(out)
	assert.NotContains(t, doc, "SOMIX.Call")
	assert.NotContains(t, doc, "SOMIX.Access")
}

func TestSerialize_DeduplicatesRepeatedRelations(t *testing.T) {
	m := somix.NewModel()
	f := somix.NewCode(nil)
	f.Entity = somix.Entity{UniqueName: "m.f"}
	gCode := somix.NewCode(nil)
	gCode.Entity = somix.Entity{UniqueName: "m.g"}
	m.AddCode(f)
	m.AddCode(gCode)
	m.AddCall("m.f", "m.g")
	m.AddCall("m.f", "m.g") // same call recorded twice within one pass

	s := mse.New()
	out, _ := s.Serialize(m)

	assert.Equal(t, 1, strings.Count(string(out), "(SOMIX.Call"))
}
