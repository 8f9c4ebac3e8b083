package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/appwright/appwright/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(Builtins(workspace.NewLocal(t.TempDir()))...)
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(fileArgs{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "path")
	assert.Contains(t, props, "content")

	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"path", "content"}, req)
}

func TestValidateArguments(t *testing.T) {
	schema := SchemaFor(fileArgs{})

	assert.NoError(t, ValidateArguments(map[string]any{"path": "a.txt", "content": "x"}, schema))

	err := ValidateArguments(map[string]any{"path": "a.txt"}, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"content"`)

	err = ValidateArguments(map[string]any{"path": 7, "content": "x"}, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected string")
}

func TestRegistryDefinitions(t *testing.T) {
	r := newTestRegistry(t)

	defs := r.Definitions()
	require.Len(t, defs, 5)

	names := make([]string, len(defs))
	for i, d := range defs {
		assert.Equal(t, "function", d.Type)
		assert.NotEmpty(t, d.Function.Description)
		assert.NotNil(t, d.Function.Parameters)
		names[i] = d.Function.Name
	}
	assert.ElementsMatch(t, []string{
		NameCreateDirectory, NameCreateFile, NameUpdateFile, NameFetchCode, NameTaskCompleted,
	}, names)
}

func TestDispatchUnknownTool(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), "delete_everything", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestDispatchInvalidArguments(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), NameCreateFile, json.RawMessage(`not json`))
	var terr *ToolError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, CodeInvalidArguments, terr.Code)

	_, err = r.Dispatch(context.Background(), NameCreateFile, json.RawMessage(`{"path":"a.txt"}`))
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, CodeInvalidArguments, terr.Code)
}

func TestDispatchOverwriteLaw(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	res, err := r.Dispatch(ctx, NameCreateFile, json.RawMessage(`{"path":"p.txt","content":"A"}`))
	require.NoError(t, err)
	assert.Equal(t, "Created file: p.txt", res)

	res, err = r.Dispatch(ctx, NameCreateFile, json.RawMessage(`{"path":"p.txt","content":"B"}`))
	require.NoError(t, err)
	assert.Equal(t, "Updated file: p.txt", res)

	res, err = r.Dispatch(ctx, NameFetchCode, json.RawMessage(`{"path":"p.txt"}`))
	require.NoError(t, err)
	assert.Equal(t, "B", res)
}

func TestDispatchCreateDirectoryIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	first, err := r.Dispatch(ctx, NameCreateDirectory, json.RawMessage(`{"path":"static"}`))
	require.NoError(t, err)
	second, err := r.Dispatch(ctx, NameCreateDirectory, json.RawMessage(`{"path":"static"}`))
	require.NoError(t, err)

	assert.Equal(t, "Created directory: static", first)
	assert.Equal(t, "Directory already exists: static", second)
}

func TestDispatchFetchCodeMissingIsOrdinaryOutput(t *testing.T) {
	r := newTestRegistry(t)

	res, err := r.Dispatch(context.Background(), NameFetchCode, json.RawMessage(`{"path":"nope.txt"}`))
	require.NoError(t, err)
	assert.Contains(t, res, "Error fetching code")
}

func TestDispatchTaskCompleted(t *testing.T) {
	r := newTestRegistry(t)

	res, err := r.Dispatch(context.Background(), NameTaskCompleted, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "Task marked as completed.", res)
}

type panicTool struct{}

func (panicTool) Name() string        { return "panic_tool" }
func (panicTool) Description() string { return "always panics" }
func (panicTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (panicTool) Call(context.Context, map[string]any) (string, error) {
	panic("boom")
}

func TestDispatchRecoversPanics(t *testing.T) {
	r := NewRegistry(panicTool{})

	_, err := r.Dispatch(context.Background(), "panic_tool", json.RawMessage(`{}`))
	var terr *ToolError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, CodeExecutionError, terr.Code)
	assert.Contains(t, terr.Message, "boom")
}
