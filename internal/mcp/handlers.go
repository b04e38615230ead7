package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/flowgen/internal/cache"
	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/lang"
	"github.com/standardbeagle/flowgen/internal/parser"
)

type generateParams struct {
	File       string `json:"file"`
	Function   string `json:"function"`
	Position   *uint  `json:"position"`
	LabelLimit int    `json:"label_limit"`
}

type listParams struct {
	File string `json:"file"`
}

type enclosingParams struct {
	File     string `json:"file"`
	Position *uint  `json:"position"`
}

func (s *Server) handleGenerateFlowchart(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params generateParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("generate_flowchart", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.File == "" {
		return createErrorResponse("generate_flowchart", fmt.Errorf("file is required"))
	}

	language, src, result := s.loadSource(params.File)
	if result != nil {
		return result, nil
	}

	opts := lang.Options{
		Function:   params.Function,
		Position:   params.Position,
		LabelLimit: params.LabelLimit,
	}
	if s.cfg.Output.LabelLimit > 0 && opts.LabelLimit == 0 {
		opts.LabelLimit = s.cfg.Output.LabelLimit
	}

	key, cached := s.lookup(language, src, params, opts.LabelLimit)
	if cached != nil {
		return cached, nil
	}

	generated, err := lang.Generate(language, src, opts)
	if err != nil {
		return createErrorResponse("generate_flowchart", err)
	}
	if generated.Found && s.cache != nil {
		s.cache.Put(key, generated.IR)
	}

	debug.LogBuild("mcp generate %s: found=%v nodes=%d", params.File, generated.Found, len(generated.IR.Nodes))
	return createJSONResponse(map[string]any{
		"found":       generated.Found,
		"flowchart":   generated.IR,
		"suggestions": generated.Suggestions,
	})
}

func (s *Server) handleListFunctions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params listParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("list_functions", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.File == "" {
		return createErrorResponse("list_functions", fmt.Errorf("file is required"))
	}

	language, src, result := s.loadSource(params.File)
	if result != nil {
		return result, nil
	}

	names, err := lang.ListFunctions(language, src)
	if err != nil {
		return createErrorResponse("list_functions", err)
	}
	return createJSONResponse(map[string]any{
		"file":      params.File,
		"language":  language,
		"functions": names,
	})
}

func (s *Server) handleFindEnclosingFunction(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params enclosingParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("find_enclosing_function", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.File == "" || params.Position == nil {
		return createErrorResponse("find_enclosing_function", fmt.Errorf("file and position are required"))
	}

	language, src, result := s.loadSource(params.File)
	if result != nil {
		return result, nil
	}

	name, found, err := lang.FindEnclosingCallableName(language, src, *params.Position)
	if err != nil {
		return createErrorResponse("find_enclosing_function", err)
	}
	return createJSONResponse(map[string]any{
		"found":    found,
		"function": name,
	})
}

// loadSource reads the file and resolves its language. A non-nil result is
// the error response to return to the client.
func (s *Server) loadSource(path string) (parser.Language, []byte, *mcp.CallToolResult) {
	language, ok := parser.LanguageForPath(path)
	if !ok {
		result, _ := createErrorResponse("load", fmt.Errorf("unsupported file type: %s", path))
		return "", nil, result
	}
	src, err := os.ReadFile(path)
	if err != nil {
		result, _ := createErrorResponse("load", err)
		return "", nil, result
	}
	return language, src, nil
}

// lookup consults the cache for the request; a hit is rendered directly.
// labelLimit is the resolved limit, so the same selector charted under a
// different limit never returns another request's truncation.
func (s *Server) lookup(language parser.Language, src []byte, params generateParams, labelLimit int) (cache.Key, *mcp.CallToolResult) {
	var key cache.Key
	if s.cache == nil {
		return key, nil
	}
	selector := cache.SelectorForName(params.Function)
	if params.Position != nil {
		selector = cache.SelectorForPosition(*params.Position)
	}
	key = cache.NewKey(string(language), src, selector, labelLimit)
	if ir, ok := s.cache.Get(key); ok {
		debug.LogBuild("mcp cache hit for %s", selector)
		result, _ := createJSONResponse(map[string]any{
			"found":     true,
			"flowchart": ir,
		})
		return key, result
	}
	return key, nil
}
