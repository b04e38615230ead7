package lang

import (
	"fmt"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/flow"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// Options narrows which callable to chart. Position wins over Function when
// both are set; with neither the first top-level callable is used.
type Options struct {
	Function   string
	Position   *uint
	LabelLimit int
}

// Result carries the generated flowchart. Found is false when no callable
// matched the selector; the IR is then a one-node placeholder and
// Suggestions lists near-miss names.
type Result struct {
	IR          types.FlowchartIR
	Found       bool
	Suggestions []string
}

// Generate parses src and builds the flowchart for the selected callable.
func Generate(language parser.Language, src []byte, opts Options) (Result, error) {
	frontend, err := ForLanguage(language)
	if err != nil {
		return Result{}, err
	}
	tree, err := parser.Parse(language, src)
	if err != nil {
		return Result{}, err
	}
	defer tree.Close()

	callables := frontend.Callables(tree.RootNode(), src)
	debug.LogSelect("%s: %d callables, function=%q position=%v",
		language, len(callables), opts.Function, opts.Position)

	target, ok := selectCallable(callables, opts)
	if !ok {
		message := "No function found"
		if opts.Function != "" {
			message = fmt.Sprintf("Function '%s' not found", opts.Function)
		}
		result := Result{IR: flow.Placeholder(message)}
		if opts.Function != "" {
			result.Suggestions = Suggest(opts.Function, callableNames(callables))
		}
		return result, nil
	}

	c := flow.NewContext(src)
	if opts.LabelLimit > 0 {
		c.LabelLimit = opts.LabelLimit
	}
	ir := flow.Assemble(c, target.DisplayName(), target.Range(), func(sc flow.Scope) flow.Region {
		return frontend.Body(c, target, sc)
	})
	return Result{IR: ir, Found: true}, nil
}

// ListFunctions returns the display names of every callable in src, in
// source order.
func ListFunctions(language parser.Language, src []byte) ([]string, error) {
	frontend, err := ForLanguage(language)
	if err != nil {
		return nil, err
	}
	tree, err := parser.Parse(language, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	callables := frontend.Callables(tree.RootNode(), src)
	names := make([]string, 0, len(callables))
	for _, callable := range callables {
		names = append(names, callable.DisplayName())
	}
	return names, nil
}

// FindEnclosingCallableName resolves a byte position to the name of the
// innermost callable containing it, with the same two-pass order as
// position selection: full definitions first, variable-bound lambdas only
// when nothing else contains the position.
func FindEnclosingCallableName(language parser.Language, src []byte, pos uint) (string, bool, error) {
	frontend, err := ForLanguage(language)
	if err != nil {
		return "", false, err
	}
	tree, err := parser.Parse(language, src)
	if err != nil {
		return "", false, err
	}
	defer tree.Close()

	callables := frontend.Callables(tree.RootNode(), src)
	target, ok := innermostAt(callables, pos, false)
	if !ok {
		target, ok = innermostAt(callables, pos, true)
	}
	if !ok {
		return "", false, nil
	}
	return target.Name, true, nil
}

// Suggest returns names close to the missed selector, best match first.
func Suggest(missed string, names []string) []string {
	if missed == "" || len(names) == 0 {
		return nil
	}
	matches, err := edlib.FuzzySearchSetThreshold(missed, names, 3, 0.5, edlib.Levenshtein)
	if err != nil {
		return nil
	}
	out := matches[:0]
	for _, m := range matches {
		if m != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func callableNames(callables []Callable) []string {
	names := make([]string, 0, len(callables))
	for _, callable := range callables {
		names = append(names, callable.Name)
	}
	return names
}

// selectCallable applies the selection rules: position first, then exact
// name, then first in source order.
func selectCallable(callables []Callable, opts Options) (Callable, bool) {
	if len(callables) == 0 {
		return Callable{}, false
	}
	if opts.Position != nil {
		if target, ok := innermostAt(callables, *opts.Position, false); ok {
			return target, true
		}
		return innermostAt(callables, *opts.Position, true)
	}
	if opts.Function != "" {
		for _, callable := range callables {
			if callable.Name == opts.Function {
				return callable, true
			}
		}
		return Callable{}, false
	}
	return callables[0], true
}

// innermostAt finds the narrowest callable whose range contains pos. The
// first pass considers full definitions only; lambdas bound to variables
// join in the second pass so a position inside a closure inside a function
// still prefers the closure only when nothing else matches more tightly.
func innermostAt(callables []Callable, pos uint, includeLambdas bool) (Callable, bool) {
	var best Callable
	bestLen := ^uint(0)
	found := false
	for _, callable := range callables {
		if callable.Kind == CallableLambda && !includeLambdas {
			continue
		}
		r := callable.Range()
		if !r.Contains(pos) {
			continue
		}
		if r.Len() < bestLen {
			best, bestLen, found = callable, r.Len(), true
		}
	}
	return best, found
}
