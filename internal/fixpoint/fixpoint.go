// Package fixpoint repeats the usage analyzer over every file until no
// parameter type changes, with a hard iteration ceiling, keeping only the
// final pass's Call/Access relations.
package fixpoint

import (
	"github.com/viant/somix-extract/internal/resolver"
	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/symtab"
	"github.com/viant/somix-extract/internal/typeenv"
	"github.com/viant/somix-extract/internal/usage"
)

// MaxIterations is the hard ceiling on usage analyzer passes.
const MaxIterations = 5

// Driver owns the shared state across passes: the model being enriched, the
// symbol table, the resolver, and the process-wide parameter-assignment
// table.
type Driver struct {
	Model    *somix.Model
	Symbols  *symtab.Table
	Resolver *resolver.Resolver
	Params   *typeenv.ParamAssignments

	MaxIterations int
}

// New returns a Driver with the default iteration ceiling.
func New(model *somix.Model, table *symtab.Table, res *resolver.Resolver) *Driver {
	return &Driver{
		Model:         model,
		Symbols:       table,
		Resolver:      res,
		Params:        typeenv.NewParamAssignments(),
		MaxIterations: MaxIterations,
	}
}

// Run drives the usage analyzer over files to a fixpoint:
//  1. reset pass-local calls/accesses
//  2. run the usage analyzer over every file
//  3. fold the observed parameter types into each Code's ParameterTypes,
//     tracking whether anything changed
//  4. stop when nothing changed, or after MaxIterations passes
//
// Only the final pass's Calls/Accesses survive in the model; each
// iteration's ResetUsageRelations discards the prior pass's relations,
// which may contain calls that later passes resolve differently.
func (d *Driver) Run(files []usage.File) (passes int) {
	ceiling := d.MaxIterations
	if ceiling <= 0 {
		ceiling = MaxIterations
	}

	analyzer := usage.New(d.Model, d.Symbols, d.Resolver, d.Params)

	for iteration := 0; iteration < ceiling; iteration++ {
		passes = iteration + 1
		d.Model.ResetUsageRelations()
		d.Params.Reset()

		for _, f := range files {
			analyzer.Analyze(f)
		}

		changed := d.applyParamUpdates()
		if !changed {
			break
		}
	}
	return passes
}

// applyParamUpdates folds this pass's observed parameter types into every
// Code's ParameterTypes. SetParameterType never reverts a bound parameter
// back to unknown, so the fold is monotone.
func (d *Driver) applyParamUpdates() bool {
	changed := false
	for _, code := range d.Model.Codes {
		proposed := d.Params.For(code.UniqueName)
		if proposed == nil {
			continue
		}
		for param, classUname := range proposed {
			if code.SetParameterType(param, classUname) {
				changed = true
			}
		}
	}
	return changed
}
