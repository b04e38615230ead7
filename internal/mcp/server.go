// Package mcp exposes flowchart generation over the Model Context Protocol
// so editor agents can request diagrams without shelling out to the CLI.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/flowgen/internal/cache"
	"github.com/standardbeagle/flowgen/internal/config"
	"github.com/standardbeagle/flowgen/internal/debug"
	"github.com/standardbeagle/flowgen/internal/version"
)

// Server wires the generation pipeline to an MCP stdio transport.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
	cache  *cache.Cache
}

// NewServer builds the MCP server and registers its tools.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg: cfg,
	}
	if cfg.Cache.Enabled {
		s.cache = cache.New(cfg.Cache.MaxEntries)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "flowgen-mcp-server",
		Version: version.Version,
	}, nil)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "generate_flowchart",
		Description: "Generate a flowchart for one function in a C++, Java, or Rust source file. Select the function by name or by byte position; with neither, the first function in the file is used.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the source file",
				},
				"function": {
					Type:        "string",
					Description: "Function name to chart (exact match)",
				},
				"position": {
					Type:        "integer",
					Description: "Byte offset inside the function to chart",
				},
				"label_limit": {
					Type:        "integer",
					Description: "Maximum node label length in characters",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleGenerateFlowchart)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_functions",
		Description: "List every function, method, constructor, and named lambda in a source file, in source order.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the source file",
				},
			},
			Required: []string{"file"},
		},
	}, s.handleListFunctions)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_enclosing_function",
		Description: "Resolve a byte position in a source file to the name of the function containing it.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the source file",
				},
				"position": {
					Type:        "integer",
					Description: "Byte offset to resolve",
				},
			},
			Required: []string{"file", "position"},
		},
	}, s.handleFindEnclosingFunction)
}

// Run serves MCP over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	debug.SetMCPMode(true)
	debug.LogBuild("mcp server starting, version %s", version.Version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
