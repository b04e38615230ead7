package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// findNode returns the node of the given kind whose label equals substr,
// falling back to the first whose label contains it; substr "" matches any
// label. The exact pass keeps a short label from matching a longer call
// that quotes it.
func findNode(t *testing.T, ir types.FlowchartIR, kind types.NodeKind, substr string) types.FlowchartNode {
	t.Helper()
	for _, n := range ir.Nodes {
		if n.Kind == kind && n.Label == substr {
			return n
		}
	}
	for _, n := range ir.Nodes {
		if n.Kind == kind && strings.Contains(n.Label, substr) {
			return n
		}
	}
	t.Fatalf("no %s node with label containing %q in %v", kind, substr, ir.Nodes)
	return types.FlowchartNode{}
}

func hasEdge(ir types.FlowchartIR, from, to int, label string) bool {
	for _, e := range ir.Edges {
		if e.From == from && e.To == to && e.Label == label {
			return true
		}
	}
	return false
}

func edgeLabel(t *testing.T, ir types.FlowchartIR, from, to int) string {
	t.Helper()
	for _, e := range ir.Edges {
		if e.From == from && e.To == to {
			return e.Label
		}
	}
	t.Fatalf("no edge %d -> %d in %v", from, to, ir.Edges)
	return ""
}

func mustGenerate(t *testing.T, language parser.Language, src string, opts Options) types.FlowchartIR {
	t.Helper()
	result, err := Generate(language, []byte(src), opts)
	require.NoError(t, err)
	require.True(t, result.Found, "selector did not match any callable")
	require.NoError(t, result.IR.Validate())
	return result.IR
}

func TestForLanguage_Unknown(t *testing.T) {
	_, err := ForLanguage(parser.Language("cobol"))
	assert.Error(t, err)
}

func TestGenerate_NoCallablesYieldsPlaceholder(t *testing.T) {
	result, err := Generate(parser.LanguageCpp, []byte("int x = 1;\n"), Options{})
	require.NoError(t, err)
	assert.False(t, result.Found)
	require.Len(t, result.IR.Nodes, 1)
	assert.Contains(t, result.IR.Nodes[0].Label, "No function found")
}

func TestGenerate_MissedNameSuggests(t *testing.T) {
	src := `
int classify(int x) { return x; }
int main() { return classify(1); }
`
	result, err := Generate(parser.LanguageCpp, []byte(src), Options{Function: "clasify"})
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Contains(t, result.IR.Nodes[0].Label, "'clasify' not found")
	assert.Contains(t, result.Suggestions, "classify")
}

func TestSelect_PositionPrefersInnermostDefinition(t *testing.T) {
	src := `
int outer() {
    return inner();
}
int inner() {
    return 2;
}
`
	pos := uint(strings.Index(src, "return 2"))
	ir := mustGenerate(t, parser.LanguageCpp, src, Options{Position: &pos})
	assert.Equal(t, "inner", ir.Title)
}

func TestSelect_PositionPrefersFullDefinitionOverLambda(t *testing.T) {
	src := `
int main() {
    auto doubler = [](int v) { return v * 2; };
    return doubler(21);
}
`
	pos := uint(strings.Index(src, "v * 2"))
	ir := mustGenerate(t, parser.LanguageCpp, src, Options{Position: &pos})
	// Both main and the lambda contain the position; the lambda body is the
	// narrower definition once lambdas are considered, but the first pass
	// over full definitions already resolves to main.
	assert.Equal(t, "main", ir.Title)
}

func TestSelect_DefaultIsFirstCallable(t *testing.T) {
	src := `
int first() { return 1; }
int second() { return 2; }
`
	ir := mustGenerate(t, parser.LanguageCpp, src, Options{})
	assert.Equal(t, "first", ir.Title)
}

func TestFindEnclosingCallableName(t *testing.T) {
	src := `
int alpha() {
    return 1;
}
int beta() {
    return 2;
}
`
	pos := uint(strings.Index(src, "return 2"))
	name, ok, err := FindEnclosingCallableName(parser.LanguageCpp, []byte(src), pos)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "beta", name)

	_, ok, err = FindEnclosingCallableName(parser.LanguageCpp, []byte(src), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindEnclosingCallableName_PrefersFullDefinitionOverLambda(t *testing.T) {
	src := `
int main() {
    auto doubler = [](int v) { return v * 2; };
    return doubler(21);
}
`
	pos := uint(strings.Index(src, "v * 2"))
	name, ok, err := FindEnclosingCallableName(parser.LanguageCpp, []byte(src), pos)
	require.NoError(t, err)
	require.True(t, ok)

	// Same two-pass order as position selection: main wins even though the
	// lambda's range is narrower.
	assert.Equal(t, "main", name)
	ir := mustGenerate(t, parser.LanguageCpp, src, Options{Position: &pos})
	assert.Equal(t, ir.Title, name)
}

func TestListFunctions_AnnotatesKinds(t *testing.T) {
	src := `
class Counter {
public:
    Counter() {}
    void bump() { n++; }
private:
    int n;
};
int main() { return 0; }
`
	names, err := ListFunctions(parser.LanguageCpp, []byte(src))
	require.NoError(t, err)
	assert.Contains(t, names, "Counter (constructor)")
	assert.Contains(t, names, "bump (method)")
	assert.Contains(t, names, "main")
}

func TestSuggest_EmptyInputs(t *testing.T) {
	assert.Nil(t, Suggest("", []string{"a"}))
	assert.Nil(t, Suggest("x", nil))
}

func TestGenerate_LabelLimitTruncates(t *testing.T) {
	src := `
void log() {
    record("an extremely long message that certainly exceeds the limit");
}
`
	ir := mustGenerate(t, parser.LanguageCpp, src, Options{LabelLimit: 12})
	node := findNode(t, ir, types.NodeFunctionCall, "")
	assert.LessOrEqual(t, len([]rune(node.Label)), 15) // 12 runes plus "..."
}

func TestGenerate_LocationMapResolvesPositions(t *testing.T) {
	src := `
int classify(int x) {
    if (x > 0) {
        return 1;
    }
    return 0;
}
`
	ir := mustGenerate(t, parser.LanguageCpp, src, Options{})
	pos := uint(strings.Index(src, "return 1"))
	id, ok := ir.NodeAt(pos)
	require.True(t, ok)
	node := ir.Node(id)
	require.NotNil(t, node)
	assert.Equal(t, types.NodeReturn, node.Kind)
}
