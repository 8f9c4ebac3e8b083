package tool

import (
	"context"

	"github.com/appwright/appwright/core"
)

// Builtin tool names. NameTaskCompleted is the completion signal the engine
// short-circuits on.
const (
	NameCreateDirectory = "create_directory"
	NameCreateFile      = "create_file"
	NameUpdateFile      = "update_file"
	NameFetchCode       = "fetch_code"
	NameTaskCompleted   = "task_completed"
)

// Builtins returns the fixed tool set for driving a workspace build.
func Builtins(ws core.Workspace) []Tool {
	return []Tool{
		&createDirectory{ws: ws},
		&createFile{ws: ws},
		&updateFile{ws: ws},
		&fetchCode{ws: ws},
		&taskCompleted{},
	}
}

type pathArgs struct {
	Path string `json:"path" description:"The directory path to create."`
}

type fileArgs struct {
	Path    string `json:"path" description:"The file path to create or update."`
	Content string `json:"content" description:"The content to write into the file."`
}

type fetchArgs struct {
	Path string `json:"path" description:"The file path to fetch the code from."`
}

type createDirectory struct{ ws core.Workspace }

func (t *createDirectory) Name() string { return NameCreateDirectory }
func (t *createDirectory) Description() string {
	return "Creates a new directory at the specified path."
}
func (t *createDirectory) Parameters() map[string]any { return SchemaFor(pathArgs{}) }
func (t *createDirectory) Call(_ context.Context, args map[string]any) (string, error) {
	path, _ := args["path"].(string)
	return t.ws.CreateDirectory(path), nil
}

type createFile struct{ ws core.Workspace }

func (t *createFile) Name() string { return NameCreateFile }
func (t *createFile) Description() string {
	return "Creates or overwrites a file at the specified path with the given content."
}
func (t *createFile) Parameters() map[string]any { return SchemaFor(fileArgs{}) }
func (t *createFile) Call(_ context.Context, args map[string]any) (string, error) {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	return t.ws.WriteFile(path, content), nil
}

// updateFile shares the overwrite semantics of createFile; the distinct name
// exists so the model can express intent.
type updateFile struct{ ws core.Workspace }

func (t *updateFile) Name() string { return NameUpdateFile }
func (t *updateFile) Description() string {
	return "Updates an existing file at the specified path with the new content."
}
func (t *updateFile) Parameters() map[string]any { return SchemaFor(fileArgs{}) }
func (t *updateFile) Call(_ context.Context, args map[string]any) (string, error) {
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)
	return t.ws.WriteFile(path, content), nil
}

type fetchCode struct{ ws core.Workspace }

func (t *fetchCode) Name() string { return NameFetchCode }
func (t *fetchCode) Description() string {
	return "Retrieves the code from the specified file path for review."
}
func (t *fetchCode) Parameters() map[string]any { return SchemaFor(fetchArgs{}) }
func (t *fetchCode) Call(_ context.Context, args map[string]any) (string, error) {
	path, _ := args["path"].(string)
	return t.ws.ReadFile(path), nil
}

// taskCompleted is a pure signal with no side effect; the engine detects it
// by name and finalizes the session.
type taskCompleted struct{}

func (t *taskCompleted) Name() string { return NameTaskCompleted }
func (t *taskCompleted) Description() string {
	return "Indicates that the assistant has completed the task."
}
func (t *taskCompleted) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (t *taskCompleted) Call(context.Context, map[string]any) (string, error) {
	return "Task marked as completed.", nil
}
