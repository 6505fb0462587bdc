package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/replaylab/demobridge/internal/parser"
	"github.com/replaylab/demobridge/internal/wrapper"
)

// Caller dispatches a named callable with positional arguments. The
// wrapper module satisfies it.
type Caller interface {
	Call(ctx context.Context, name string, args []any) (*parser.Result, error)
}

type ParseHandler struct {
	Module Caller
}

// ToolAdapter extracts the positional args array and hands it to the
// module. Argument conversion failures become tool errors and never
// reach the parser; parser errors propagate to the transport as-is.
func (h *ParseHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["args"]
	if !ok {
		return mcp.NewToolResultError("parse: missing args array"), nil
	}
	args, ok := raw.([]any)
	if !ok {
		return mcp.NewToolResultError("parse: args must be an array"), nil
	}

	result, err := h.Module.Call(ctx, "parse", args)
	if err != nil {
		var argErr *wrapper.ArgumentError
		if errors.As(err, &argErr) {
			return mcp.NewToolResultError(argErr.Error()), nil
		}
		return nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultJSON(payload)
}
