// Package pyparse produces a navigable tree-sitter syntax tree per Python
// source file, wrapping github.com/smacker/go-tree-sitter with the Python
// grammar.
package pyparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Tree wraps a parsed syntax tree together with the source bytes it was
// parsed from, since every node position is a byte offset into that slice.
type Tree struct {
	Root *sitter.Node
	Src  []byte
}

// Text returns the source slice spanned by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(t.Src[n.StartByte():n.EndByte()])
}

// Parser wraps a tree-sitter parser configured for Python. A *sitter.Parser
// is not safe for concurrent use; callers parsing files in parallel must
// use one Parser per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// New returns a Parser configured with the Python grammar.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses src and returns its root node. A nil tree from the
// underlying parser (malformed input the grammar cannot recover from at
// all) is reported as an error; the per-file loop is responsible for
// logging and skipping.
func (p *Parser) Parse(src []byte) (*Tree, error) {
	tree := p.parser.Parse(nil, src)
	if tree == nil {
		return nil, fmt.Errorf("pyparse: failed to parse source")
	}
	return &Tree{Root: tree.RootNode(), Src: src}, nil
}

// ParseContext is Parse with a context parameter for signature symmetry
// with the rest of the pipeline; tree-sitter's Parse call is not
// cancellable mid-call.
func (p *Parser) ParseContext(_ context.Context, src []byte) (*Tree, error) {
	return p.Parse(src)
}

// Node-kind constants from the tree-sitter-python grammar, used by the
// visitors instead of bare string literals.
const (
	KindModule             = "module"
	KindFunctionDefinition = "function_definition"
	KindClassDefinition    = "class_definition"
	KindBlock              = "block"
	KindIdentifier         = "identifier"
	KindAttribute          = "attribute"
	KindCall               = "call"
	KindAssignment         = "assignment"
	KindImportStatement    = "import_statement"
	KindImportFrom         = "import_from_statement"
	KindParameters         = "parameters"
	KindArgumentList       = "argument_list"
	KindDottedName         = "dotted_name"
	KindAliasedImport      = "aliased_import"
	KindReturnStatement    = "return_statement"
	KindExpressionStmt     = "expression_statement"
	KindIfStatement        = "if_statement"
	KindComparisonOp       = "comparison_operator"
	KindString             = "string"
)
