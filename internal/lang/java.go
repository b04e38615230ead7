package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/flowgen/internal/flow"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// javaFrontend builds flowcharts from the tree-sitter-java grammar.
type javaFrontend struct{}

func (javaFrontend) Language() parser.Language {
	return parser.LanguageJava
}

func (f javaFrontend) Callables(root *tree_sitter.Node, src []byte) []Callable {
	var out []Callable

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "method_declaration":
			out = append(out, Callable{
				Name: text(src, n.ChildByFieldName("name")),
				Kind: CallableMethod,
				Node: n,
				Body: n.ChildByFieldName("body"),
			})

		case "constructor_declaration":
			out = append(out, Callable{
				Name: text(src, n.ChildByFieldName("name")),
				Kind: CallableConstructor,
				Node: n,
				Body: n.ChildByFieldName("body"),
			})

		case "variable_declarator":
			if value := n.ChildByFieldName("value"); value != nil && value.Kind() == "lambda_expression" {
				out = append(out, Callable{
					Name: text(src, n.ChildByFieldName("name")),
					Kind: CallableLambda,
					Node: value,
					Body: value.ChildByFieldName("body"),
				})
			}
		}
		for _, child := range namedChildren(n) {
			walk(child)
		}
	}
	walk(root)
	return out
}

// Body builds the callable's region. Expression-bodied lambdas are implicit
// returns: the expression's dangling flow is wired straight to the function
// exit under a "return" label.
func (f javaFrontend) Body(c *flow.Context, fn Callable, sc flow.Scope) flow.Region {
	if fn.Body == nil {
		return flow.Empty()
	}
	if fn.Body.Kind() != "block" && fn.Body.Kind() != "constructor_body" {
		region := f.expression(c, fn.Body, sc)
		return implicitReturnTo(region, sc.ExitID)
	}
	return f.statement(c, fn.Body, sc)
}

func (f javaFrontend) statement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	switch n.Kind() {
	case "block", "constructor_body":
		acc := flow.Empty()
		for _, child := range namedChildren(n) {
			acc = acc.Then(f.statement(c, child, sc))
		}
		return acc

	case "if_statement":
		return f.ifStatement(c, n, sc)

	case "while_statement":
		return f.whileLoop(c, n, sc)

	case "do_statement":
		return f.doLoop(c, n, sc)

	case "for_statement":
		return f.forLoop(c, n, sc)

	case "enhanced_for_statement":
		return f.enhancedForLoop(c, n, sc)

	case "switch_expression", "switch_statement":
		return f.switchStatement(c, n, sc)

	case "try_statement", "try_with_resources_statement":
		return f.tryStatement(c, n, sc)

	case "return_statement":
		return terminal(c, n, types.NodeReturn, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit), sc)

	case "throw_statement":
		return terminal(c, n, types.NodeException, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit), sc)

	case "break_statement":
		target, ok := 0, false
		if sc.Loop != nil {
			target, ok = sc.Loop.BreakTarget, true
		}
		return breakContinue(c, n, "break", target, ok)

	case "continue_statement":
		target, ok := 0, false
		if sc.Loop != nil {
			target, ok = sc.Loop.ContinueTarget, true
		}
		return breakContinue(c, n, "continue", target, ok)

	case "local_variable_declaration":
		return f.localVariable(c, n)

	case "expression_statement":
		children := namedChildren(n)
		if len(children) == 0 {
			return flow.Empty()
		}
		return f.expression(c, children[0], sc)

	case "synchronized_statement":
		monitor := "synchronized"
		for _, child := range namedChildren(n) {
			if child.Kind() == "parenthesized_expression" {
				monitor = "synchronized " + unparen(text(c.Source, child))
			}
		}
		lock := leaf(c, n, types.NodeProcess, clean(monitor, c.LabelLimit))
		body := flow.Empty()
		if b := n.ChildByFieldName("body"); b != nil {
			body = f.statement(c, b, sc)
		}
		return lock.Then(body)

	case "labeled_statement":
		children := namedChildren(n)
		if len(children) == 0 {
			return flow.Empty()
		}
		return f.statement(c, children[len(children)-1], sc)

	case "yield_statement":
		return leaf(c, n, types.NodeProcess, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))

	case "assert_statement":
		return leaf(c, n, types.NodeProcess, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))

	case "line_comment", "block_comment", ";":
		return flow.Empty()

	default:
		return leaf(c, n, types.NodeProcess, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))
	}
}

func (f javaFrontend) condition(c *flow.Context, n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return clean(unparen(text(c.Source, n)), c.LabelLimit)
}

func (f javaFrontend) ifStatement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	decision := c.NewNode(types.NodeDecision, f.condition(c, cond))
	record(c, n, decision.ID)
	if cond != nil {
		record(c, cond, decision.ID)
	}

	consequence := flow.Empty()
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		consequence = f.statement(c, cons, sc)
	}
	alternative := flow.Empty()
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		alternative = f.statement(c, alt, sc)
	}

	return flow.Branch(flow.BranchSpec{
		Decision:    decision,
		TrueLabel:   "true",
		FalseLabel:  "false",
		Consequence: consequence,
		Alternative: alternative,
	})
}

func (f javaFrontend) whileLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	header := c.NewNode(types.NodeLoopStart, f.condition(c, n.ChildByFieldName("condition")))
	record(c, n, header.ID)
	body := n.ChildByFieldName("body")
	return flow.Loop(c, sc, flow.LoopSpec{
		Shape:     flow.PreTest,
		Header:    header,
		BodyLabel: "true",
		ExitLabel: "false",
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.statement(c, body, inner)
		},
	})
}

func (f javaFrontend) doLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	header := c.NewNode(types.NodeLoopStart, f.condition(c, n.ChildByFieldName("condition")))
	record(c, n, header.ID)
	body := n.ChildByFieldName("body")
	return flow.Loop(c, sc, flow.LoopSpec{
		Shape:     flow.PostTest,
		Header:    header,
		BodyLabel: "true",
		ExitLabel: "false",
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.statement(c, body, inner)
		},
	})
}

func (f javaFrontend) forLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	prefix := flow.Empty()
	if init := n.ChildByFieldName("init"); init != nil {
		prefix = leaf(c, init, types.NodeAssignment, clean(trimSemicolon(text(c.Source, init)), c.LabelLimit))
	}

	cond := n.ChildByFieldName("condition")
	headerLabel := "loop"
	shape := flow.PreTest
	if cond != nil {
		headerLabel = f.condition(c, cond)
	} else {
		shape = flow.Unconditional
	}
	header := c.NewNode(types.NodeLoopStart, headerLabel)
	record(c, n, header.ID)

	body := n.ChildByFieldName("body")
	update := n.ChildByFieldName("update")

	loop := flow.Loop(c, sc, flow.LoopSpec{
		Shape:     shape,
		Header:    header,
		BodyLabel: "true",
		ExitLabel: "false",
		Body: func(inner flow.Scope) flow.Region {
			acc := flow.Empty()
			if body != nil {
				acc = f.statement(c, body, inner)
			}
			if update != nil {
				acc = acc.Then(leaf(c, update, types.NodeAssignment, label(c, update)))
			}
			return acc
		},
	})
	return prefix.Then(loop)
}

func (f javaFrontend) enhancedForLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	name := text(c.Source, n.ChildByFieldName("name"))
	value := text(c.Source, n.ChildByFieldName("value"))
	header := c.NewNode(types.NodeLoopStart, clean(name+" : "+value, c.LabelLimit))
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
			return f.statement(c, body, inner)
		},
	})
}

func (f javaFrontend) switchStatement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	head := c.NewNode(types.NodeDecision, "switch "+f.condition(c, n.ChildByFieldName("condition")))
	record(c, n, head.ID)

	var cases []flow.SwitchCase
	var pending []*tree_sitter.Node
	if body := n.ChildByFieldName("body"); body != nil {
		for _, child := range namedChildren(body) {
			switch child.Kind() {
			case "switch_block_statement_group":
				// The grammar emits one group per label, so stacked
				// labels arrive as statement-less groups; fold them
				// into the next group that carries statements.
				if groupIsLabelsOnly(child) {
					pending = append(pending, child)
					continue
				}
				cases = append(cases, f.switchGroup(c, child, pending, sc))
				pending = nil
			case "switch_rule":
				cases = append(cases, f.switchRule(c, child, sc))
			}
		}
	}
	if len(pending) > 0 {
		last := pending[len(pending)-1]
		cases = append(cases, f.switchGroup(c, last, pending[:len(pending)-1], sc))
	}

	return flow.Switch(flow.SwitchSpec{
		Head:         head,
		Cases:        cases,
		MatchLabel:   "match",
		NoMatchLabel: "no match",
	})
}

// groupIsLabelsOnly reports whether a statement group carries nothing but
// its switch labels.
func groupIsLabelsOnly(n *tree_sitter.Node) bool {
	for _, child := range namedChildren(n) {
		if child.Kind() != "switch_label" {
			return false
		}
	}
	return true
}

// switchGroup builds a colon-style label group. Labels from preceding
// statement-less groups collapse into this case's node; a trailing break is
// consumed and turns fallthrough off, otherwise the group's dangling flow
// runs into the next group's body.
func (f javaFrontend) switchGroup(c *flow.Context, n *tree_sitter.Node, merged []*tree_sitter.Node, sc flow.Scope) flow.SwitchCase {
	var labels []string
	var stmts []*tree_sitter.Node
	for _, group := range append(append([]*tree_sitter.Node{}, merged...), n) {
		for _, child := range namedChildren(group) {
			if child.Kind() == "switch_label" {
				labels = append(labels, clean(text(c.Source, child), c.LabelLimit))
				continue
			}
			stmts = append(stmts, child)
		}
	}

	caseLabel := "case"
	if len(labels) > 0 {
		caseLabel = labels[0]
		for _, extra := range labels[1:] {
			caseLabel += ", " + extra
		}
	}
	node := c.NewNode(types.NodeDecision, clean(caseLabel, c.LabelLimit))
	record(c, n, node.ID)
	for _, group := range merged {
		record(c, group, node.ID)
	}

	fallthru := true
	if len(stmts) > 0 {
		switch stmts[len(stmts)-1].Kind() {
		case "break_statement":
			stmts = stmts[:len(stmts)-1]
			fallthru = false
		case "return_statement", "throw_statement", "continue_statement", "yield_statement":
			fallthru = false
		}
	}

	body := flow.Empty()
	for _, stmt := range stmts {
		body = body.Then(f.statement(c, stmt, sc))
	}
	return flow.SwitchCase{Node: node, Body: body, Fallthrough: fallthru}
}

// switchRule builds an arrow-style case; rules are disjoint and never fall
// through.
func (f javaFrontend) switchRule(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.SwitchCase {
	var caseLabel string
	body := flow.Empty()
	for _, child := range namedChildren(n) {
		if child.Kind() == "switch_label" {
			caseLabel = clean(text(c.Source, child), c.LabelLimit)
			continue
		}
		body = body.Then(f.statement(c, child, sc))
	}
	node := c.NewNode(types.NodeDecision, caseLabel)
	record(c, n, node.ID)
	return flow.SwitchCase{Node: node, Body: body}
}

func (f javaFrontend) tryStatement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	prefix := flow.Empty()
	if resources := n.ChildByFieldName("resources"); resources != nil {
		for _, res := range namedChildren(resources) {
			prefix = prefix.Then(leaf(c, res, types.NodeAssignment, clean(text(c.Source, res), c.LabelLimit)))
		}
	}

	tryNode := c.NewNode(types.NodeProcess, "try")
	record(c, n, tryNode.ID)

	body := n.ChildByFieldName("body")
	var handlers []flow.TryHandler
	var finallyBlock *tree_sitter.Node
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "catch_clause":
			clause := child
			handlerLabel := "catch"
			for _, part := range namedChildren(clause) {
				if part.Kind() == "catch_formal_parameter" {
					handlerLabel = "catch " + clean(text(c.Source, part), c.LabelLimit)
				}
			}
			handlers = append(handlers, flow.TryHandler{
				Label: handlerLabel,
				Body: func(inner flow.Scope) flow.Region {
					if hb := clause.ChildByFieldName("body"); hb != nil {
						return f.statement(c, hb, inner)
					}
					return flow.Empty()
				},
			})
		case "finally_clause":
			for _, part := range namedChildren(child) {
				if part.Kind() == "block" {
					finallyBlock = part
				}
			}
		}
	}

	spec := flow.TrySpec{
		TryNode: tryNode,
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.statement(c, body, inner)
		},
		Handlers: handlers,
	}
	if finallyBlock != nil {
		spec.Cleanup = func(outer flow.Scope) flow.Region {
			return f.statement(c, finallyBlock, outer)
		}
	}
	return prefix.Then(flow.Try(c, sc, spec))
}

func (f javaFrontend) localVariable(c *flow.Context, n *tree_sitter.Node) flow.Region {
	kind := types.NodeProcess
	for _, child := range namedChildren(n) {
		if child.Kind() == "variable_declarator" && child.ChildByFieldName("value") != nil {
			kind = types.NodeAssignment
			break
		}
	}
	return leaf(c, n, kind, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))
}

func (f javaFrontend) expression(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	switch n.Kind() {
	case "method_invocation":
		return f.invocation(c, n, sc)

	case "assignment_expression":
		return leaf(c, n, types.NodeAssignment, label(c, n))

	case "update_expression":
		return leaf(c, n, types.NodeAssignment, label(c, n))

	case "ternary_expression":
		return f.ternary(c, n, sc)

	case "object_creation_expression":
		return f.withClosureArgs(c, leaf(c, n, types.NodeFunctionCall, label(c, n)), n, sc)

	case "lambda_expression":
		// A bare lambda in statement position renders as one opaque node;
		// it only unfolds when passed as a call argument or selected as its
		// own callable.
		return leaf(c, n, types.NodeProcess, label(c, n))

	default:
		return leaf(c, n, types.NodeProcess, label(c, n))
	}
}

func (f javaFrontend) ternary(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	decision := c.NewNode(types.NodeDecision, label(c, n.ChildByFieldName("condition")))
	record(c, n, decision.ID)

	consequence := flow.Empty()
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		consequence = f.expression(c, cons, sc)
	}
	alternative := flow.Empty()
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		alternative = f.expression(c, alt, sc)
	}
	return flow.Branch(flow.BranchSpec{
		Decision:    decision,
		TrueLabel:   "true",
		FalseLabel:  "false",
		Consequence: consequence,
		Alternative: alternative,
	})
}

// invocation flattens fluent chains like r.m1().m2() into sequential method
// nodes; a bare-name receiver folds into the first call's label.
func (f javaFrontend) invocation(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	var chain []*tree_sitter.Node
	cur := n
	var base *tree_sitter.Node
	for {
		chain = append(chain, cur)
		recv := cur.ChildByFieldName("object")
		if recv != nil && recv.Kind() == "method_invocation" {
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
		case "identifier", "field_access", "this", "super":
			baseFolded = text(c.Source, base)
		default:
			acc = acc.Then(f.expression(c, base, sc))
		}
	}

	for i, link := range chain {
		name := text(c.Source, link.ChildByFieldName("name"))
		args := text(c.Source, link.ChildByFieldName("arguments"))
		callLabel := name + args
		if i == 0 && baseFolded != "" {
			callLabel = baseFolded + "." + callLabel
		}
		kind := types.NodeMethodCall
		if i == 0 && base == nil {
			kind = types.NodeFunctionCall
		}
		region := leaf(c, link, kind, clean(callLabel, c.LabelLimit))
		region = f.withClosureArgs(c, region, link, sc)
		acc = acc.Then(region)
	}
	return acc
}

// withClosureArgs expands lambda arguments into labeled sub-regions.
func (f javaFrontend) withClosureArgs(c *flow.Context, region flow.Region, call *tree_sitter.Node, sc flow.Scope) flow.Region {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return region
	}
	var closures []closureArg
	for i, arg := range namedChildren(args) {
		if arg.Kind() == "lambda_expression" {
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
			return f.statement(c, body, inner)
		}
		return f.expression(c, body, inner)
	})
}
