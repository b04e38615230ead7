package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/flowgen/internal/flow"
)

// text returns the raw source slice for a node.
func text(src []byte, n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if start >= end || end > uint(len(src)) {
		return ""
	}
	return string(src[start:end])
}

// label renders a node's source text as a diagram label: whitespace
// collapsed, quotes softened, truncated to the build's limit.
func label(c *flow.Context, n *tree_sitter.Node) string {
	return clean(text(c.Source, n), c.LabelLimit)
}

// clean normalizes arbitrary source text into a single-line label.
func clean(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, "`", "'")
	if limit <= 0 {
		limit = flow.DefaultLabelLimit
	}
	runes := []rune(s)
	if len(runes) > limit {
		s = string(runes[:limit]) + "..."
	}
	return s
}

// trimSemicolon drops a trailing statement terminator from a label.
func trimSemicolon(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ";")
}

// unparen strips one layer of surrounding parentheses from condition text.
func unparen(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
