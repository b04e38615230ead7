package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flowgen/internal/config"
)

func callRequest(t *testing.T, params any) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{
		Arguments: raw,
	}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	return decoded
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestHandleGenerateFlowchart(t *testing.T) {
	path := writeSource(t, "sample.cpp", `
int classify(int x) {
    if (x > 0) {
        return 1;
    }
    return 0;
}
`)
	s := NewServer(config.Default())
	result, err := s.handleGenerateFlowchart(context.Background(),
		callRequest(t, generateParams{File: path, Function: "classify"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	decoded := resultText(t, result)
	assert.Equal(t, true, decoded["found"])
	chart, ok := decoded["flowchart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "classify", chart["title"])
}

func TestHandleGenerateFlowchart_CacheHit(t *testing.T) {
	path := writeSource(t, "sample.rs", "fn main() {\n    work();\n}\n")
	s := NewServer(config.Default())
	req := callRequest(t, generateParams{File: path, Function: "main"})

	_, err := s.handleGenerateFlowchart(context.Background(), req)
	require.NoError(t, err)
	_, err = s.handleGenerateFlowchart(context.Background(), req)
	require.NoError(t, err)

	hits, _ := s.cache.Stats()
	assert.Equal(t, uint64(1), hits)
}

func TestHandleGenerateFlowchart_LabelLimitBypassesCachedTruncation(t *testing.T) {
	path := writeSource(t, "sample.rs", `
fn log() {
    record("an extremely long message that certainly exceeds the limit");
}
`)
	s := NewServer(config.Default())

	_, err := s.handleGenerateFlowchart(context.Background(),
		callRequest(t, generateParams{File: path, Function: "log"}))
	require.NoError(t, err)

	result, err := s.handleGenerateFlowchart(context.Background(),
		callRequest(t, generateParams{File: path, Function: "log", LabelLimit: 12}))
	require.NoError(t, err)

	decoded := resultText(t, result)
	chart, ok := decoded["flowchart"].(map[string]any)
	require.True(t, ok)
	nodes, ok := chart["nodes"].([]any)
	require.True(t, ok)
	for _, n := range nodes {
		node := n.(map[string]any)
		assert.LessOrEqual(t, len([]rune(node["label"].(string))), 15)
	}

	hits, _ := s.cache.Stats()
	assert.Equal(t, uint64(0), hits)
}

func TestHandleGenerateFlowchart_MissingFile(t *testing.T) {
	s := NewServer(config.Default())
	result, err := s.handleGenerateFlowchart(context.Background(),
		callRequest(t, generateParams{File: "/nonexistent/x.cpp"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGenerateFlowchart_UnsupportedExtension(t *testing.T) {
	path := writeSource(t, "notes.txt", "hello")
	s := NewServer(config.Default())
	result, err := s.handleGenerateFlowchart(context.Background(),
		callRequest(t, generateParams{File: path}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleListFunctions(t *testing.T) {
	path := writeSource(t, "Sample.java", `
class Sample {
    void alpha() {}
    void beta() {}
}
`)
	s := NewServer(config.Default())
	result, err := s.handleListFunctions(context.Background(),
		callRequest(t, listParams{File: path}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	decoded := resultText(t, result)
	functions, ok := decoded["functions"].([]any)
	require.True(t, ok)
	assert.Contains(t, functions, "alpha (method)")
	assert.Contains(t, functions, "beta (method)")
}

func TestHandleFindEnclosingFunction(t *testing.T) {
	content := `
fn alpha() {
    work();
}
`
	path := writeSource(t, "lib.rs", content)
	pos := uint(20) // inside alpha's body
	s := NewServer(config.Default())
	result, err := s.handleFindEnclosingFunction(context.Background(),
		callRequest(t, enclosingParams{File: path, Position: &pos}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	decoded := resultText(t, result)
	assert.Equal(t, true, decoded["found"])
	assert.Equal(t, "alpha", decoded["function"])
}

func TestHandleFindEnclosingFunction_RequiresPosition(t *testing.T) {
	s := NewServer(config.Default())
	result, err := s.handleFindEnclosingFunction(context.Background(),
		callRequest(t, map[string]any{"file": "x.rs"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
