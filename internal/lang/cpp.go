package lang

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/flowgen/internal/flow"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// cppFrontend builds flowcharts from the tree-sitter-cpp grammar. The same
// grammar also carries plain C sources.
type cppFrontend struct{}

func (cppFrontend) Language() parser.Language {
	return parser.LanguageCpp
}

// namedChildren collects a node's named children.
func namedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	count := n.NamedChildCount()
	out := make([]*tree_sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

func (f cppFrontend) Callables(root *tree_sitter.Node, src []byte) []Callable {
	var out []Callable
	var classStack []string

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		switch n.Kind() {
		case "class_specifier", "struct_specifier":
			name := text(src, n.ChildByFieldName("name"))
			classStack = append(classStack, name)
			for _, child := range namedChildren(n) {
				walk(child)
			}
			classStack = classStack[:len(classStack)-1]
			return

		case "function_definition":
			if fn, ok := f.functionCallable(n, src, classStack); ok {
				out = append(out, fn)
			}

		case "init_declarator":
			if value := n.ChildByFieldName("value"); value != nil && value.Kind() == "lambda_expression" {
				name := text(src, n.ChildByFieldName("declarator"))
				out = append(out, Callable{
					Name: name,
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

// functionCallable names a function_definition by descending its declarator
// chain past pointer/reference wrappers to the function_declarator.
func (f cppFrontend) functionCallable(n *tree_sitter.Node, src []byte, classStack []string) (Callable, bool) {
	decl := n.ChildByFieldName("declarator")
	for decl != nil && decl.Kind() != "function_declarator" {
		decl = decl.ChildByFieldName("declarator")
	}
	if decl == nil {
		return Callable{}, false
	}
	nameNode := decl.ChildByFieldName("declarator")
	if nameNode == nil {
		return Callable{}, false
	}
	name := text(src, nameNode)
	if name == "" {
		return Callable{}, false
	}

	kind := CallableFunction
	enclosingClass := ""
	if len(classStack) > 0 {
		enclosingClass = classStack[len(classStack)-1]
		kind = CallableMethod
	}
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		scope := name[:idx]
		kind = CallableMethod
		if short := name[idx+2:]; short == scope || strings.HasSuffix(scope, "::"+short) {
			kind = CallableConstructor
		}
	} else if name == enclosingClass {
		kind = CallableConstructor
	}

	return Callable{
		Name: name,
		Kind: kind,
		Node: n,
		Body: n.ChildByFieldName("body"),
	}, true
}

func (f cppFrontend) Body(c *flow.Context, fn Callable, sc flow.Scope) flow.Region {
	if fn.Body == nil {
		return flow.Empty()
	}
	return f.statement(c, fn.Body, sc)
}

// statement dispatches one statement node to its region builder. Unknown
// kinds degrade to a plain process node; nothing here fails.
func (f cppFrontend) statement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	switch n.Kind() {
	case "compound_statement":
		return f.block(c, n, sc)

	case "if_statement":
		return f.ifStatement(c, n, sc)

	case "while_statement":
		return f.whileLoop(c, n, sc)

	case "do_statement":
		return f.doLoop(c, n, sc)

	case "for_statement":
		return f.forLoop(c, n, sc)

	case "for_range_loop":
		return f.forRangeLoop(c, n, sc)

	case "switch_statement":
		return f.switchStatement(c, n, sc)

	case "try_statement":
		return f.tryStatement(c, n, sc)

	case "return_statement", "co_return_statement":
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

	case "goto_statement":
		// The jump target is not resolved into an edge; the node flows to
		// its lexical successor and the label says so.
		return leaf(c, n, types.NodeProcess, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit)+" (unsupported)")

	case "labeled_statement":
		children := namedChildren(n)
		if len(children) == 0 {
			return flow.Empty()
		}
		return f.statement(c, children[len(children)-1], sc)

	case "declaration":
		return f.declaration(c, n, sc)

	case "expression_statement":
		children := namedChildren(n)
		if len(children) == 0 {
			return flow.Empty()
		}
		return f.expression(c, children[0], sc)

	case "comment", "preproc_call", "preproc_def", "preproc_include", "using_declaration", ";":
		return flow.Empty()

	default:
		return leaf(c, n, types.NodeProcess, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))
	}
}

// block sequences the statements of a compound statement.
func (f cppFrontend) block(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	acc := flow.Empty()
	for _, child := range namedChildren(n) {
		acc = acc.Then(f.statement(c, child, sc))
	}
	return acc
}

// conditionText unwraps a condition_clause or parenthesized_expression down
// to the expression itself.
func (f cppFrontend) conditionText(c *flow.Context, n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "condition_clause":
		if value := n.ChildByFieldName("value"); value != nil {
			return label(c, value)
		}
		return clean(unparen(text(c.Source, n)), c.LabelLimit)
	case "parenthesized_expression":
		return clean(unparen(text(c.Source, n)), c.LabelLimit)
	}
	return label(c, n)
}

func (f cppFrontend) ifStatement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	decision := c.NewNode(types.NodeDecision, f.conditionText(c, cond))
	if cond != nil {
		record(c, cond, decision.ID)
	}
	record(c, n, decision.ID)

	consequence := flow.Empty()
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		consequence = f.statement(c, cons, sc)
	}
	alternative := flow.Empty()
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		alternative = f.statement(c, elseBody(alt), sc)
	}

	return flow.Branch(flow.BranchSpec{
		Decision:    decision,
		TrueLabel:   "true",
		FalseLabel:  "false",
		Consequence: consequence,
		Alternative: alternative,
	})
}

// elseBody unwraps an else_clause to the statement it carries; grammars that
// attach the statement directly pass through unchanged.
func elseBody(n *tree_sitter.Node) *tree_sitter.Node {
	if n.Kind() != "else_clause" {
		return n
	}
	children := namedChildren(n)
	if len(children) == 0 {
		return n
	}
	return children[len(children)-1]
}

func (f cppFrontend) whileLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	header := c.NewNode(types.NodeLoopStart, f.conditionText(c, cond))
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

func (f cppFrontend) doLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	header := c.NewNode(types.NodeLoopStart, f.conditionText(c, cond))
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

// forLoop models for(init; cond; update) as init, then a pre-test loop on
// cond with the update appended after the body. A continue jumps to the
// test, skipping the update — a known simplification.
func (f cppFrontend) forLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	prefix := flow.Empty()
	if init := n.ChildByFieldName("initializer"); init != nil {
		prefix = leaf(c, init, types.NodeAssignment, clean(trimSemicolon(text(c.Source, init)), c.LabelLimit))
	}

	cond := n.ChildByFieldName("condition")
	headerLabel := "loop"
	if cond != nil {
		headerLabel = f.conditionText(c, cond)
	}
	header := c.NewNode(types.NodeLoopStart, headerLabel)
	record(c, n, header.ID)

	body := n.ChildByFieldName("body")
	update := n.ChildByFieldName("update")

	shape := flow.PreTest
	if cond == nil {
		// for(;;) never tests; it exits only via break.
		shape = flow.Unconditional
	}

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

func (f cppFrontend) forRangeLoop(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	declText := clean(text(c.Source, n.ChildByFieldName("declarator")), c.LabelLimit)
	rightText := clean(text(c.Source, n.ChildByFieldName("right")), c.LabelLimit)
	header := c.NewNode(types.NodeLoopStart, clean(declText+" : "+rightText, c.LabelLimit))
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

func (f cppFrontend) switchStatement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	cond := n.ChildByFieldName("condition")
	head := c.NewNode(types.NodeDecision, "switch "+f.conditionText(c, cond))
	record(c, n, head.ID)

	var cases []flow.SwitchCase
	if body := n.ChildByFieldName("body"); body != nil {
		for _, child := range namedChildren(body) {
			if child.Kind() != "case_statement" {
				continue
			}
			cases = append(cases, f.switchCase(c, child, sc))
		}
	}

	return flow.Switch(flow.SwitchSpec{
		Head:         head,
		Cases:        cases,
		MatchLabel:   "match",
		NoMatchLabel: "no match",
	})
}

// switchCase builds one case label and its statement region. A trailing
// break is consumed (the case simply exits the switch); without one the
// dangling body falls into the next case, C semantics.
func (f cppFrontend) switchCase(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.SwitchCase {
	value := n.ChildByFieldName("value")
	caseLabel := "default"
	if value != nil {
		caseLabel = "case " + label(c, value)
	}
	node := c.NewNode(types.NodeDecision, caseLabel)
	record(c, n, node.ID)

	var stmts []*tree_sitter.Node
	for _, child := range namedChildren(n) {
		if value != nil && child.Id() == value.Id() {
			continue
		}
		stmts = append(stmts, child)
	}

	fallthru := true
	if len(stmts) > 0 {
		last := stmts[len(stmts)-1]
		switch last.Kind() {
		case "break_statement":
			stmts = stmts[:len(stmts)-1]
			fallthru = false
		case "return_statement", "co_return_statement", "throw_statement", "continue_statement", "goto_statement":
			fallthru = false
		}
	}

	body := flow.Empty()
	for _, stmt := range stmts {
		body = body.Then(f.statement(c, stmt, sc))
	}
	return flow.SwitchCase{Node: node, Body: body, Fallthrough: fallthru}
}

func (f cppFrontend) tryStatement(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	tryNode := c.NewNode(types.NodeProcess, "try")
	record(c, n, tryNode.ID)

	body := n.ChildByFieldName("body")
	var handlers []flow.TryHandler
	for _, child := range namedChildren(n) {
		if child.Kind() != "catch_clause" {
			continue
		}
		clause := child
		handlerLabel := "catch"
		if params := clause.ChildByFieldName("parameters"); params != nil {
			handlerLabel = "catch " + clean(unparen(text(c.Source, params)), c.LabelLimit)
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
	}

	return flow.Try(c, sc, flow.TrySpec{
		TryNode: tryNode,
		Body: func(inner flow.Scope) flow.Region {
			if body == nil {
				return flow.Empty()
			}
			return f.statement(c, body, inner)
		},
		Handlers: handlers,
	})
}

// declaration renders a local declaration; initialized declarators read as
// assignments.
func (f cppFrontend) declaration(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	kind := types.NodeProcess
	for _, child := range namedChildren(n) {
		if child.Kind() == "init_declarator" {
			kind = types.NodeAssignment
			break
		}
	}
	return leaf(c, n, kind, clean(trimSemicolon(text(c.Source, n)), c.LabelLimit))
}

// expression dispatches statement-position expressions.
func (f cppFrontend) expression(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	switch n.Kind() {
	case "call_expression":
		return f.call(c, n, sc)

	case "assignment_expression":
		return leaf(c, n, types.NodeAssignment, label(c, n))

	case "update_expression":
		return leaf(c, n, types.NodeAssignment, label(c, n))

	case "conditional_expression":
		return f.ternary(c, n, sc)

	case "co_await_expression":
		return leaf(c, n, types.NodeAwait, label(c, n))

	default:
		return leaf(c, n, types.NodeProcess, label(c, n))
	}
}

// ternary renders cond ? a : b as a decision with two leaf branches.
func (f cppFrontend) ternary(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
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

// call flattens fluent method chains into one node per call and expands
// lambda arguments into labeled sub-regions.
func (f cppFrontend) call(c *flow.Context, n *tree_sitter.Node, sc flow.Scope) flow.Region {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "field_expression" {
		kind := types.NodeFunctionCall
		region := leaf(c, n, kind, label(c, n))
		return f.withClosureArgs(c, region, n, sc)
	}

	// Collect the chain outermost-first: r.m1().m2() nests the m1 call
	// inside m2's receiver. Only calls through a field stay in the chain; a
	// plain-call receiver like make().m() becomes the base.
	var chain []*tree_sitter.Node
	cur := n
	var base *tree_sitter.Node
	for {
		chain = append(chain, cur)
		recv := cur.ChildByFieldName("function").ChildByFieldName("argument")
		if recv != nil && recv.Kind() == "call_expression" {
			if inner := recv.ChildByFieldName("function"); inner != nil && inner.Kind() == "field_expression" {
				cur = recv
				continue
			}
		}
		base = recv
		break
	}
	// Reverse into evaluation order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	acc := flow.Empty()
	baseFolded := ""
	if base != nil {
		switch {
		case base.Kind() == "call_expression":
			acc = acc.Then(f.call(c, base, sc))
		case isSimpleReceiver(base.Kind()):
			baseFolded = text(c.Source, base)
		default:
			acc = acc.Then(f.expression(c, base, sc))
		}
	}

	for i, link := range chain {
		callLabel := f.chainCallLabel(c, link)
		if i == 0 && baseFolded != "" {
			callLabel = clean(baseFolded+"."+callLabel, c.LabelLimit)
		}
		region := leaf(c, link, types.NodeMethodCall, callLabel)
		region = f.withClosureArgs(c, region, link, sc)
		acc = acc.Then(region)
	}
	return acc
}

// isSimpleReceiver reports whether a chain root is trivial enough to fold
// into the first call's label instead of becoming its own node.
func isSimpleReceiver(kind string) bool {
	switch kind {
	case "identifier", "field_identifier", "this", "qualified_identifier", "field_expression":
		return true
	}
	return false
}

// chainCallLabel renders one link of a chain as "method(args)".
func (f cppFrontend) chainCallLabel(c *flow.Context, call *tree_sitter.Node) string {
	fn := call.ChildByFieldName("function")
	name := ""
	if fn != nil && fn.Kind() == "field_expression" {
		name = text(c.Source, fn.ChildByFieldName("field"))
	} else {
		name = text(c.Source, fn)
	}
	args := text(c.Source, call.ChildByFieldName("arguments"))
	return clean(name+args, c.LabelLimit)
}

// withClosureArgs expands lambda literals in the call's argument list.
func (f cppFrontend) withClosureArgs(c *flow.Context, region flow.Region, call *tree_sitter.Node, sc flow.Scope) flow.Region {
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
		return f.statement(c, body, inner)
	})
}
