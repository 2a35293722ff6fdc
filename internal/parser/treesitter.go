package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// errSyntax is returned when the tree-sitter tree contains error nodes.
var errSyntax = errors.New("syntax error")

// TreeSitter parses in-process with the tree-sitter JavaScript grammar.
//
// The grammar is error-tolerant and has no notion of early errors, strict
// mode or module goal, so this backend only detects plain syntax errors.
// SourceType and Features are ignored.
type TreeSitter struct{}

// NewTreeSitter returns a tree-sitter backend.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{}
}

// Parse reports errSyntax if the parse tree contains ERROR or MISSING nodes.
// A fresh sitter.Parser is used per call; they are not safe to share.
func (t *TreeSitter) Parse(ctx context.Context, source string, _ Options) error {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(javascript.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return fmt.Errorf("tree-sitter: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		pos := firstError(root)
		return fmt.Errorf("tree-sitter: %w at %d:%d", errSyntax, pos.Row+1, pos.Column+1)
	}
	return nil
}

func (t *TreeSitter) String() string {
	return "tree-sitter/javascript"
}

// firstError returns the start of the first ERROR or MISSING node in
// document order, or the root's start if none is found.
func firstError(n *sitter.Node) sitter.Point {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n.StartPoint()
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstError(child)
	}
	return n.StartPoint()
}
