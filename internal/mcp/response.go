package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// createJSONResponse renders data as one JSON text block.
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse reports a tool failure to the client without failing
// the protocol call itself.
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	content, merr := json.Marshal(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if merr != nil {
		return nil, merr
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}
