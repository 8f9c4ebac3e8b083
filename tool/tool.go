// Package tool implements the function calling subsystem of the build loop:
// the closed set of workspace capabilities the model may request, their
// JSON-schema descriptors, and the registry that validates and dispatches
// calls by name.
package tool

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by the registry when the model requests a tool
// name outside the registered set.
var ErrUnknownTool = errors.New("tool not available")

// Error codes attached to ToolError for uniform downstream handling.
const (
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeExecutionError   = "EXECUTION_ERROR"
)

// Tool is a named, schema-described capability the model may request.
//
// Implementations must be total: every domain failure mode returns a value
// (status text) so the engine can always append a tool message. Call only
// returns an error for failures the model itself should not see as ordinary
// output, such as a panic recovered by the registry.
type Tool interface {
	// Name returns the unique identifier used in function call declarations.
	Name() string

	// Description is the natural language description exposed to the model.
	Description() string

	// Parameters returns a JSON schema describing the accepted arguments.
	Parameters() map[string]any

	// Call executes the tool with already-validated arguments.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// ToolError wraps dispatch and execution failures with the tool name and a
// code for categorization.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}
