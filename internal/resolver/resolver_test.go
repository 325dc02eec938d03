package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/somix-extract/internal/resolver"
	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/symtab"
	"github.com/viant/somix-extract/internal/typeenv"
)

func newCtx(table *symtab.Table, module, class string, ns resolver.Namespace) resolver.Context {
	return resolver.Context{
		Module:       module,
		CurrentClass: class,
		Namespace:    ns,
		Vars:         typeenv.NewScope(),
		ClassVars:    typeenv.NewClassScope(),
	}
}

func TestResolveCall_ModuleQualified(t *testing.T) {
	table := symtab.New()
	fn := &somix.Code{Entity: somix.Entity{UniqueName: "p.helper"}}
	table.Put("p.helper", symtab.KindCode, fn)

	r := resolver.New(table)
	ctx := newCtx(table, "p", "", resolver.NewNamespace())

	uname, viaInstance, ok := r.ResolveCall(ctx, []string{"helper"})
	assert.True(t, ok)
	assert.False(t, viaInstance, "a plain module-level call has no implicit receiver")
	assert.Equal(t, "p.helper", uname)
}

func TestResolveCall_NamespaceAlias(t *testing.T) {
	table := symtab.New()
	fn := &somix.Code{Entity: somix.Entity{UniqueName: "lib.util.go"}}
	table.Put("lib.util.go", symtab.KindCode, fn)

	r := resolver.New(table)
	ns := resolver.NewNamespace()
	ns["util"] = "lib.util"
	ctx := newCtx(table, "p", "", ns)

	uname, viaInstance, ok := r.ResolveCall(ctx, []string{"util", "go"})
	assert.True(t, ok)
	assert.False(t, viaInstance)
	assert.Equal(t, "lib.util.go", uname)
}

func TestResolveCall_SelfSiblingMethod(t *testing.T) {
	// "def f(self): self.g()" / "def g(self): pass": self.g() must resolve
	// directly against the current class, since g is a sibling method, not
	// an instance attribute bound in ClassVars.
	table := symtab.New()
	method := &somix.Code{Entity: somix.Entity{UniqueName: "m.C.g"}, Parameters: []string{"self"}}
	table.Put("m.C.g", symtab.KindCode, method)

	r := resolver.New(table)
	ctx := resolver.Context{
		Module:       "m",
		CurrentClass: "m.C",
		Namespace:    resolver.NewNamespace(),
		Vars:         typeenv.NewScope(),
		ClassVars:    typeenv.NewClassScope(),
	}

	uname, viaInstance, ok := r.ResolveCall(ctx, []string{"self", "g"})
	assert.True(t, ok)
	assert.True(t, viaInstance)
	assert.Equal(t, "m.C.g", uname)
}

func TestResolveCall_SelfAttributeMethod(t *testing.T) {
	// "self.child.foo()" — self.child is a bound instance attribute; its
	// class's foo method is the call target.
	table := symtab.New()
	method := &somix.Code{Entity: somix.Entity{UniqueName: "p.D.foo"}, Parameters: []string{"self"}}
	table.Put("p.D.foo", symtab.KindCode, method)

	r := resolver.New(table)
	cvars := typeenv.NewClassScope()
	cvars.Bind("self.child", "p.D")

	ctx := resolver.Context{
		Module:       "p",
		CurrentClass: "p.C",
		Namespace:    resolver.NewNamespace(),
		Vars:         typeenv.NewScope(),
		ClassVars:    cvars,
	}

	uname, viaInstance, ok := r.ResolveCall(ctx, []string{"self", "child", "foo"})
	assert.True(t, ok)
	assert.True(t, viaInstance)
	assert.Equal(t, "p.D.foo", uname)
}

func TestResolveCall_BoundVariableReceiver(t *testing.T) {
	table := symtab.New()
	method := &somix.Code{Entity: somix.Entity{UniqueName: "p.D.run"}, Parameters: []string{"self", "n"}}
	table.Put("p.D.run", symtab.KindCode, method)

	r := resolver.New(table)
	vars := typeenv.NewScope()
	vars.Bind("obj", "p.D")

	ctx := resolver.Context{
		Module:       "p",
		CurrentClass: "p.C",
		Namespace:    resolver.NewNamespace(),
		Vars:         vars,
		ClassVars:    typeenv.NewClassScope(),
	}

	uname, viaInstance, ok := r.ResolveCall(ctx, []string{"obj", "run"})
	assert.True(t, ok)
	assert.True(t, viaInstance, "a call through a bound instance variable has an implicit receiver")
	assert.Equal(t, "p.D.run", uname)
}

func TestResolveClass(t *testing.T) {
	table := symtab.New()
	cls := &somix.Grouping{Entity: somix.Entity{UniqueName: "p.C"}}
	table.Put("p.C", symtab.KindGrouping, cls)

	r := resolver.New(table)
	ctx := newCtx(table, "p", "", resolver.NewNamespace())

	uname, ok := r.ResolveClass(ctx, "C")
	assert.True(t, ok)
	assert.Equal(t, "p.C", uname)

	_, ok = r.ResolveClass(ctx, "Missing")
	assert.False(t, ok)
}

func TestInferExpressionType_Call(t *testing.T) {
	table := symtab.New()
	table.Put("p.C", symtab.KindGrouping, &somix.Grouping{Entity: somix.Entity{UniqueName: "p.C"}})
	table.Put("p.C.__init__", symtab.KindCode, &somix.Code{Entity: somix.Entity{UniqueName: "p.C.__init__"}})

	r := resolver.New(table)
	ctx := newCtx(table, "p", "", resolver.NewNamespace())

	classUname, initUname, ok := r.InferExpressionType(ctx, "", true, "C")
	assert.True(t, ok)
	assert.Equal(t, "p.C", classUname)
	assert.Equal(t, "p.C.__init__", initUname)
}

func TestInferExpressionType_NoInit(t *testing.T) {
	table := symtab.New()
	table.Put("p.C", symtab.KindGrouping, &somix.Grouping{Entity: somix.Entity{UniqueName: "p.C"}})

	r := resolver.New(table)
	ctx := newCtx(table, "p", "", resolver.NewNamespace())

	classUname, initUname, ok := r.InferExpressionType(ctx, "", true, "C")
	assert.True(t, ok)
	assert.Equal(t, "p.C", classUname)
	assert.Equal(t, "", initUname)
}
