// Package walker enumerates Python source files under a base directory and
// derives each file's dotted module name.
package walker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// skipDirs holds directories a Python project would never want analyzed.
var skipDirs = map[string]bool{
	".git": true, "venv": true, ".venv": true, "__pycache__": true,
	"node_modules": true, ".tox": true, ".mypy_cache": true,
}

// File is one discovered source file: its absolute path and the module
// name the definition pass should use for it.
type File struct {
	AbsPath string
	Module  string
}

// Walker enumerates `.py` files under a base directory using afs.
type Walker struct {
	fs afs.Service
}

// New returns a Walker backed by afs.New().
func New() *Walker {
	return &Walker{fs: afs.New()}
}

// Walk enumerates every `.py` file under root, skipping excluded
// directories, and returns them with their derived module names in sorted
// path order so pass order stays deterministic run to run.
func (w *Walker) Walk(ctx context.Context, root string) ([]File, error) {
	var paths []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			if skipDirs[info.Name()] {
				return false, nil
			}
			return true, nil
		}
		if !strings.HasSuffix(info.Name(), ".py") {
			return true, nil
		}
		paths = append(paths, url.Join(baseURL, parent, info.Name()))
		return true, nil
	}
	if err := w.fs.Walk(ctx, root, visitor); err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]File, 0, len(paths))
	for _, p := range paths {
		out = append(out, File{AbsPath: p, Module: ModuleName(root, p)})
	}
	return out, nil
}

// Download reads one discovered file's content through the same afs service
// that enumerated it.
func (w *Walker) Download(ctx context.Context, path string) ([]byte, error) {
	return w.fs.DownloadWithURL(ctx, path)
}

// ModuleName derives a module's dotted uniqueName from its path relative to
// base: slash-to-dot, extension stripped.
func ModuleName(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(rel, "/", ".")
}
