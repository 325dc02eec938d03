package fixpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/somix-extract/internal/collector"
	"github.com/viant/somix-extract/internal/fixpoint"
	"github.com/viant/somix-extract/internal/pyparse"
	"github.com/viant/somix-extract/internal/resolver"
	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/symtab"
	"github.com/viant/somix-extract/internal/usage"
)

// collect parses src as module, running the definition pass over it,
// and returns the usage.File the fixpoint driver needs.
func collect(t *testing.T, model *somix.Model, table *symtab.Table, module, src string) usage.File {
	t.Helper()
	parser := pyparse.New()
	tree, err := parser.Parse([]byte(src))
	assert.NoError(t, err)

	col := collector.New(model, table)
	result := col.CollectFile(tree, module, module+".py")
	return usage.File{Tree: tree, Module: result.Module, Namespace: result.Namespace}
}

// TestFixpoint_ParameterTypeInference: a parameter's class is only
// discoverable by observing a call site that passes a K-typed argument, so
// it takes more than one pass before obj.m() inside f resolves to K.m.
func TestFixpoint_ParameterTypeInference(t *testing.T) {
	model := somix.NewModel()
	table := symtab.New()

	qSrc := `
class K:
    def m(self): pass

def f(obj): obj.m()

def main():
    k = K()
    f(k)
`
	files := []usage.File{collect(t, model, table, "q", qSrc)}

	res := resolver.New(table)
	driver := fixpoint.New(model, table, res)
	passes := driver.Run(files)

	assert.GreaterOrEqual(t, passes, 2, "the parameter type is only known after observing f(k)")
	assert.LessOrEqual(t, passes, fixpoint.MaxIterations)

	found := false
	for _, call := range model.Calls {
		if call.CallerUniqueName == "q.f" && call.CalledUniqueName == "q.K.m" {
			found = true
		}
	}
	assert.True(t, found, "obj.m() inside f must resolve to q.K.m once obj's type is known")
}

func TestFixpoint_ConvergesWithinCeiling(t *testing.T) {
	model := somix.NewModel()
	table := symtab.New()

	src := `
class C:
    def f(self): self.g()
    def g(self): pass
`
	files := []usage.File{collect(t, model, table, "m", src)}

	res := resolver.New(table)
	driver := fixpoint.New(model, table, res)
	passes := driver.Run(files)

	assert.Equal(t, 1, passes, "no parameter types to infer, so the first pass is already a fixpoint")

	found := false
	for _, call := range model.Calls {
		if call.CallerUniqueName == "m.C.f" && call.CalledUniqueName == "m.C.g" {
			found = true
		}
	}
	assert.True(t, found)
}
