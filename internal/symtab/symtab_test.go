package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/somix-extract/internal/symtab"
)

func TestTable_PutGet(t *testing.T) {
	table := symtab.New()

	assert.False(t, table.Has("p.C"))

	entry := table.Put("p.C", symtab.KindGrouping, "first")
	assert.Equal(t, "first", entry.Value)

	got, ok := table.Get("p.C")
	assert.True(t, ok)
	assert.Equal(t, symtab.KindGrouping, got.Kind)
	assert.True(t, table.Has("p.C"))
}

func TestTable_Put_DedupesRedeclaration(t *testing.T) {
	// re-declaring "self.x" in two methods yields one Data entity
	table := symtab.New()

	first := table.Put("p.C.x", symtab.KindData, "from __init__")
	second := table.Put("p.C.x", symtab.KindData, "from another method")

	assert.Same(t, first, second)
	assert.Equal(t, "from __init__", second.Value)
}

func TestTable_Get_Missing(t *testing.T) {
	table := symtab.New()
	_, ok := table.Get("does.not.exist")
	assert.False(t, ok)
}
