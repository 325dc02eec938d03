// Package pipeline wires the extractor's components together end to end:
// walk, parse, collect definitions, drive the usage analyzer to a fixpoint,
// then serialize.
package pipeline

import (
	"context"

	"github.com/viant/somix-extract/internal/collector"
	"github.com/viant/somix-extract/internal/fixpoint"
	"github.com/viant/somix-extract/internal/mse"
	"github.com/viant/somix-extract/internal/pyparse"
	"github.com/viant/somix-extract/internal/resolver"
	"github.com/viant/somix-extract/internal/somix"
	"github.com/viant/somix-extract/internal/symtab"
	"github.com/viant/somix-extract/internal/usage"
	"github.com/viant/somix-extract/internal/walker"
	"github.com/viant/somix-extract/internal/xerrors"
	"github.com/viant/somix-extract/internal/xlog"
)

// Run executes one full extraction pass over the directory tree rooted at
// basePath and returns the serialized MSE document.
func Run(ctx context.Context, basePath string, maxIterations int, log *xlog.Logger) ([]byte, error) {
	if log == nil {
		log = xlog.Default()
	}

	w := walker.New()
	files, err := w.Walk(ctx, basePath)
	if err != nil {
		return nil, err
	}

	model := somix.NewModel()
	table := symtab.New()
	parser := pyparse.New()
	col := collector.New(model, table)

	type parsedFile struct {
		result *collector.FileResult
		tree   *pyparse.Tree
		path   string
	}
	var parsed []parsedFile

	for _, f := range files {
		src, err := w.Download(ctx, f.AbsPath)
		if err != nil {
			log.Warn("skipping unreadable file", "error", xerrors.IO(f.AbsPath, err))
			continue
		}
		tree, err := parser.Parse(src)
		if err != nil {
			log.Warn("skipping unparseable file", "error", xerrors.Parse(f.AbsPath, err))
			continue
		}
		result := col.CollectFile(tree, f.Module, f.AbsPath)
		parsed = append(parsed, parsedFile{result: result, tree: tree, path: f.AbsPath})
	}

	res := resolver.New(table)
	usageFiles := make([]usage.File, 0, len(parsed))
	for _, p := range parsed {
		usageFiles = append(usageFiles, usage.File{
			Tree:      p.tree,
			Module:    p.result.Module,
			Namespace: p.result.Namespace,
		})
	}

	driver := fixpoint.New(model, table, res)
	if maxIterations > 0 {
		driver.MaxIterations = maxIterations
	}
	passes := driver.Run(usageFiles)
	log.Info("fixpoint converged", "passes", passes, "files", len(parsed))

	serializer := mse.New()
	return serializer.Serialize(model)
}
