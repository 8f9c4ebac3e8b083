package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/appwright/appwright/model"
)

// Registry holds the closed, explicitly enumerated tool set registered at
// startup. It is immutable after construction and safe for concurrent use.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. A later tool with a
// duplicate name replaces the earlier one.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	sort.Strings(r.order)
	return r
}

// Lookup resolves a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Definitions returns the descriptor list advertised to the model.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Dispatch resolves and invokes the named tool with raw JSON arguments.
//
// Failure modes are kept distinct for the engine's error taxonomy:
//   - unknown name            -> error wrapping ErrUnknownTool
//   - undecodable / invalid   -> *ToolError{Code: INVALID_ARGUMENTS}
//   - execution error / panic -> *ToolError{Code: EXECUTION_ERROR}
//
// A successful dispatch always yields the tool's status text.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) (result string, err error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	args := map[string]any{}
	if len(rawArgs) > 0 {
		if uerr := json.Unmarshal(rawArgs, &args); uerr != nil {
			return "", &ToolError{Tool: name, Code: CodeInvalidArguments, Message: fmt.Sprintf("arguments are not a JSON object: %v", uerr)}
		}
	}
	if verr := ValidateArguments(args, t.Parameters()); verr != nil {
		return "", &ToolError{Tool: name, Code: CodeInvalidArguments, Message: verr.Error()}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = ""
			err = &ToolError{Tool: name, Code: CodeExecutionError, Message: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	result, err = t.Call(ctx, args)
	if err != nil {
		if terr, ok := err.(*ToolError); ok {
			return "", terr
		}
		return "", &ToolError{Tool: name, Code: CodeExecutionError, Message: err.Error()}
	}
	return result, nil
}
