package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/flowgen/internal/flow"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// rustFrontend builds flowcharts from the tree-sitter-rust grammar.
type rustFrontend struct{}

func (rustFrontend) Language() parser.Language {
	return parser.LanguageRust
}

func (f rustFrontend) Callables(root *tree_sitter.Node, src []byte) []Callable {
	var out []Callable

	var walk func(n *tree_sitter.Node, inImpl bool)
	walk = func(n *tree_sitter.Node, inImpl bool) {
		switch n.Kind() {
		case "function_item":
			kind := CallableFunction
			if inImpl {
				kind = CallableMethod
			}
			out = append(out, Callable{
				Name: text(src, n.ChildByFieldName("name")),
				Kind: kind,
				Node: n,
				Body: n.ChildByFieldName("body"),
			})
			for _, child := range namedChildren(n) {
				walk(child, false)
			}
			return

		case "impl_item", "trait_item":
			for _, child := range namedChildren(n) {
				walk(child, true)
			}
			return

		case "let_declaration":
			pattern := n.ChildByFieldName("pattern")
			value := n.ChildByFieldName("value")
			if pattern != nil && pattern.Kind() == "identifier" &&
				value != nil && value.Kind() == "closure_expression" {
				out = append(out, Callable{
					Name: text(src, pattern),
					Kind: CallableLambda,
					Node: value,
					Body: value.ChildByFieldName("body"),
				})
			}
		}
		for _, child := range namedChildren(n) {
			walk(child, inImpl)
		}
	}
	walk(root, false)
	return out
}

// Body builds the callable's region. A block whose last child is a bare
// expression has an implicit return: the tail flow is wired to the function
// exit under a "return" label.
func (f rustFrontend) Body(c *flow.Context, fn Callable, sc flow.Scope) flow.Region {
	if fn.Body == nil {
		return flow.Empty()
	}
	if fn.Body.Kind() != "block" {
		// Expression-bodied closure.
		region := f.expression(c, fn.Body, sc)
		return implicitReturnTo(region, sc.ExitID)
	}

	children := namedChildren(fn.Body)
	acc := flow.Empty()
	for i, child := range children {
		if i == len(children)-1 && isTailExpression(child) {
			tail := f.expression(c, child, sc)
			return acc.Then(implicitReturnTo(tail, sc.ExitID))
		}
		acc = acc.Then(f.statement(c, child, sc))
	}
	return acc
}

// isTailExpression reports whether a block child is a value-producing
// expression rather than a statement. Statements carry their own node kinds
// (expression_statement, let_declaration, items); anything else in final
// position is the block's value.
func isTailExpression(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "expression_statement", "let_declaration", "empty_statement",
		"function_item", "struct_item", "enum_item", "impl_item",
		"use_declaration", "type_item", "const_item", "static_item",
		"macro_definition", "attribute_item", "line_comment", "block_comment":
		return false
	}
	return true
}

func (f rustFrontend) block(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	acc := flow.Empty()
	for _, child := range namedChildren(n) {
		acc = acc.Then(f.statement(c, child, sc))
	}
	return acc
}

func (f rustFrontend) statement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	switch n.Kind() {
	case "expression_statement":
		children := namedChildren(n)
		if len(children) == 0 {
			return flow.Empty()
		}
		return f.expression(c, children[0], sc)

	case "let_declaration":
		return f.letDeclaration(c, n, sc)

	case "empty_statement", "line_comment", "block_comment",
		"attribute_item", "use_declaration":
		return flow.Empty()

	case "function_item", "struct_item", "enum_item", "impl_item",
		"type_item", "const_item", "static_item", "macro_definition":
		// Nested items declare, they do not execute.
		return flow.Empty()

	default:
		return f.expression(c, n, sc)
	}
}

// letDeclaration renders `let p = v;` as an assignment. A let-else becomes a
// refutable binding: match flows on, no match runs the diverging else block.
func (f rustFrontend) letDeclaration(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		pattern := text(c.Source, n.ChildByFieldName("pattern"))
		value := text(c.Source, n.ChildByFieldName("value"))
		decision := c.NewNode(types.NodeDecision, clean("let "+pattern+" = "+value, c.LabelLimit))
		record(c, n, decision.ID)

		elseBody := flow.Empty()
		if alt.Kind() == "block" {
			elseBody = f.block(c, alt, sc)
		} else {
			for _, part := range namedChildren(alt) {
				if part.Kind() == "block" {
					elseBody = f.block(c, part, sc)
				}
			}
		}
		return flow.Branch(flow.BranchSpec{
			Decision:    decision,
			TrueLabel:   "match",
			FalseLabel:  "no match",
			Consequence: flow.Empty(),
			Alternative: elseBody,
		})
	}
	if value := n.ChildByFieldName("value"); value != nil && value.Kind() == "try_expression" {
		node := c.NewNode(types.NodeEarlyReturnError, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))
		record(c, n, node.ID)
		return flow.Region{
			Nodes: []types.FlowchartNode{node},
			Edges: []types.FlowchartEdge{{From: node.ID, To: sc.TerminalTarget(), Label: "Err"}},
			Entry: node.ID,
			Exits: []types.ExitPoint{{ID: node.ID, Label: "Ok"}},
		}
	}
	return leaf(c, n, types.NodeAssignment, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))
}

func (f rustFrontend) expression(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	switch n.Kind() {
	case "if_expression":
		return f.ifExpression(c, n, sc)

	case "match_expression":
		return f.matchExpression(c, n, sc)

	case "while_expression":
		return f.whileLoop(c, n, sc)

	case "loop_expression":
		return f.bareLoop(c, n, sc)

	case "for_expression":
		return f.forLoop(c, n, sc)

	case "return_expression":
		return terminal(c, n, types.NodeReturn, clean(text(c.Source, n), c.LabelLimit), sc)

	case "break_expression":
		target, ok := 0, false
		if sc.Loop != nil {
			target, ok = sc.Loop.BreakTarget, true
		}
		return breakContinue(c, n, "break", target, ok)

	case "continue_expression":
		target, ok := 0, false
		if sc.Loop != nil {
			target, ok = sc.Loop.ContinueTarget, true
		}
		return breakContinue(c, n, "continue", target, ok)

	case "try_expression":
		return f.tryOperator(c, n, sc)

	case "await_expression":
		return leaf(c, n, types.NodeAwait, label(c, n))

	case "call_expression":
		return f.call(c, n, sc)

	case "macro_invocation":
		return f.macro(c, n, sc)

	case "assignment_expression", "compound_assignment_expr":
		return leaf(c, n, types.NodeAssignment, label(c, n))

	case "unsafe_block":
		for _, child := range namedChildren(n) {
			if child.Kind() == "block" {
				return f.block(c, child, sc)
			}
		}
		return flow.Empty()

	case "block":
		return f.block(c, n, sc)

	case "closure_expression":
		// Bare closure in expression position stays opaque; it unfolds
		// when passed as a call argument or selected as its own callable.
		return leaf(c, n, types.NodeProcess, label(c, n))

	default:
		return leaf(c, n, types.NodeProcess, label(c, n))
	}
}

// conditionLabels picks the branch labels: a pattern condition (if let /
// while let) reads as match / no match, a boolean reads as true / false.
func conditionLabels(cond *tree_sitter.Node) (string, string) {
	if cond != nil && cond.Kind() == "let_condition" {
		return "match", "no match"
	}
	return "true", "false"
}

func (f rustFrontend) ifExpression(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	decision := c.NewNode(types.NodeDecision, clean(text(c.Source, cond), c.LabelLimit))
	record(c, n, decision.ID)
	if cond != nil {
		record(c, cond, decision.ID)
	}
	trueLabel, falseLabel := conditionLabels(cond)

	consequence := flow.Empty()
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		consequence = f.block(c, cons, sc)
	}
	alternative := flow.Empty()
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		for _, part := range namedChildren(alt) {
			switch part.Kind() {
			case "block":
				alternative = f.block(c, part, sc)
			case "if_expression":
				alternative = f.ifExpression(c, part, sc)
			}
		}
	}

	return flow.Branch(flow.BranchSpec{
		Decision:    decision,
		TrueLabel:   trueLabel,
		FalseLabel:  falseLabel,
		Consequence: consequence,
		Alternative: alternative,
	})
}

// matchExpression renders a match as a case chain; arms are disjoint and
// never fall through.
func (f rustFrontend) matchExpression(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	head := c.NewNode(types.NodeDecision, clean("match "+text(c.Source, n.ChildByFieldName("value")), c.LabelLimit))
	record(c, n, head.ID)

	var cases []flow.SwitchCase
	if body := n.ChildByFieldName("body"); body != nil {
		for _, arm := range namedChildren(body) {
			if arm.Kind() != "match_arm" {
				continue
			}
			pattern := arm.ChildByFieldName("pattern")
			node := c.NewNode(types.NodeDecision, clean(text(c.Source, pattern), c.LabelLimit))
			record(c, arm, node.ID)

			armBody := flow.Empty()
			if value := arm.ChildByFieldName("value"); value != nil {
				armBody = f.expression(c, value, sc)
			}
			cases = append(cases, flow.SwitchCase{Node: node, Body: armBody})
		}
	}

	return flow.Switch(flow.SwitchSpec{
		Head:         head,
		Cases:        cases,
		MatchLabel:   "match",
		NoMatchLabel: "no match",
	})
}

func (f rustFrontend) whileLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	header := c.NewNode(types.NodeLoopStart, clean(text(c.Source, cond), c.LabelLimit))
	record(c, n, header.ID)
	bodyLabel, exitLabel := conditionLabels(cond)

	body := n.ChildByFieldName("body")
	return flow.Loop(c, sc, flow.LoopSpec{
		Shape:     flow.PreTest,
		Header:    header,
		BodyLabel: bodyLabel,
		ExitLabel: exitLabel,
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.block(c, body, inner)
		},
	})
}

func (f rustFrontend) bareLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	header := c.NewNode(types.NodeLoopStart, "loop")
	record(c, n, header.ID)

	body := n.ChildByFieldName("body")
	return flow.Loop(c, sc, flow.LoopSpec{
		Shape:  flow.Unconditional,
		Header: header,
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.block(c, body, inner)
		},
	})
}

func (f rustFrontend) forLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	pattern := text(c.Source, n.ChildByFieldName("pattern"))
	value := text(c.Source, n.ChildByFieldName("value"))
	header := c.NewNode(types.NodeLoopStart, clean(pattern+" in "+value, c.LabelLimit))
	record(c, n, header.ID)

	body := n.ChildByFieldName("body")
	return flow.Loop(c, sc, flow.LoopSpec{
		Shape:     flow.PreTest,
		Header:    header,
		BodyLabel: "next item",
		ExitLabel: "no more items",
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.block(c, body, inner)
		},
	})
}

// tryOperator renders `expr?`: the Err path is pre-wired to the function
// exit (or the enclosing cleanup), the Ok path continues as the region's
// sole exit point.
func (f rustFrontend) tryOperator(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	inner := flow.Empty()
	children := namedChildren(n)
	if len(children) > 0 {
		switch children[0].Kind() {
		case "call_expression", "await_expression", "macro_invocation":
			inner = f.expression(c, children[0], sc)
		}
	}

	node := c.NewNode(types.NodeEarlyReturnError, clean(text(c.Source, n), c.LabelLimit))
	record(c, n, node.ID)
	check := flow.Region{
		Nodes: []types.FlowchartNode{node},
		Edges: []types.FlowchartEdge{{From: node.ID, To: sc.TerminalTarget(), Label: "Err"}},
		Entry: node.ID,
		Exits: []types.ExitPoint{{ID: node.ID, Label: "Ok"}},
	}
	if inner.IsEmpty() {
		return check
	}
	return inner.Then(check)
}

var panicMacros = map[string]bool{
	"panic":         true,
	"unreachable":   true,
	"todo":          true,
	"unimplemented": true,
}

func (f rustFrontend) macro(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	name := text(c.Source, n.ChildByFieldName("macro"))
	if panicMacros[strings.TrimSuffix(name, "!")] {
		return terminal(c, n, types.NodePanic, clean(text(c.Source, n), c.LabelLimit), sc)
	}
	return leaf(c, n, types.NodeMacroCall, label(c, n))
}

// call flattens fluent chains like r.m1().m2() into sequential method
// nodes; a bare-name receiver folds into the first call's label.
func (f rustFrontend) call(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil || fnNode.Kind() != "field_expression" {
		region := leaf(c, n, types.NodeFunctionCall, label(c, n))
		return f.withClosureArgs(c, region, n, sc)
	}

	var chain []*tree_sitter.Node
	cur := n
	var base *tree_sitter.Node
	for {
		chain = append(chain, cur)
		field := cur.ChildByFieldName("function")
		if field == nil || field.Kind() != "field_expression" {
			base = field
			break
		}
		recv := field.ChildByFieldName("value")
		if recv != nil && recv.Kind() == "call_expression" {
			cur = recv
			continue
		}
		base = recv
		break
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	acc := flow.Empty()
	baseFolded := ""
	if base != nil {
		switch base.Kind() {
		case "identifier", "self", "field_expression", "scoped_identifier":
			baseFolded = text(c.Source, base)
		default:
			acc = acc.Then(f.expression(c, base, sc))
		}
	}

	for i, link := range chain {
		fe := link.ChildByFieldName("function")
		callLabel := text(c.Source, link)
		kind := types.NodeFunctionCall
		if fe != nil && fe.Kind() == "field_expression" {
			kind = types.NodeMethodCall
			name := text(c.Source, fe.ChildByFieldName("field"))
			args := text(c.Source, link.ChildByFieldName("arguments"))
			callLabel = name + args
			if i == 0 && baseFolded != "" {
				callLabel = baseFolded + "." + callLabel
			}
		}
		region := leaf(c, link, kind, clean(callLabel, c.LabelLimit))
		region = f.withClosureArgs(c, region, link, sc)
		acc = acc.Then(region)
	}
	return acc
}

// withClosureArgs expands closure arguments into labeled sub-regions.
func (f rustFrontend) withClosureArgs(c *flow.Context, region flow.Region, call *tree_sitter.Node, sc flow.Scope) flow.Region {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return region
	}
	var closures []closureArg
	for i, arg := range namedChildren(args) {
		if arg.Kind() == "closure_expression" {
			if body := arg.ChildByFieldName("body"); body != nil {
				closures = append(closures, closureArg{index: i + 1, body: body})
			}
		}
	}
	if len(closures) == 0 {
		return region
	}
	return attachClosures(c, region, closures, func(c *flow.Context, body *tree_sitter.Node, inner flow.Scope) flow.Region {
		if body.Kind() == "block" {
			return f.block(c, body, inner)
		}
		return f.expression(c, body, inner)
	})
}
