// Package workspace provides the filesystem capability the builtin tools
// operate on. Local roots all paths under a base directory so a generated
// artifact can never escape the project tree.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local is a core.Workspace backed by the host filesystem. All paths are
// resolved relative to the base directory; absolute paths and ".." escapes
// are rejected with status text rather than an error.
type Local struct {
	base string
}

// NewLocal creates a workspace rooted at base. The base directory itself is
// created on first use by the tool layer, not here.
func NewLocal(base string) *Local {
	return &Local{base: filepath.Clean(base)}
}

// Base returns the root directory of the workspace.
func (w *Local) Base() string { return w.base }

// resolve maps a model-supplied path into the workspace, refusing escapes.
func (w *Local) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.Join(w.base, filepath.FromSlash(path)))
	if cleaned != w.base && !strings.HasPrefix(cleaned, w.base+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace", path)
	}
	return cleaned, nil
}

// CreateDirectory creates the directory (and any parents) if absent. It is
// idempotent: a second call on the same path reports the existing directory.
func (w *Local) CreateDirectory(path string) string {
	full, err := w.resolve(path)
	if err != nil {
		return fmt.Sprintf("Error creating directory %s: %v", path, err)
	}
	if info, err := os.Stat(full); err == nil && info.IsDir() {
		return fmt.Sprintf("Directory already exists: %s", path)
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Sprintf("Error creating directory %s: %v", path, err)
	}
	return fmt.Sprintf("Created directory: %s", path)
}

// WriteFile creates the file if absent or overwrites it completely if
// present. Parent directories are created as needed; content is never merged.
func (w *Local) WriteFile(path, content string) string {
	full, err := w.resolve(path)
	if err != nil {
		return fmt.Sprintf("Error creating/updating file %s: %v", path, err)
	}
	_, statErr := os.Stat(full)
	existed := statErr == nil

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Sprintf("Error creating/updating file %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error creating/updating file %s: %v", path, err)
	}
	if existed {
		return fmt.Sprintf("Updated file: %s", path)
	}
	return fmt.Sprintf("Created file: %s", path)
}

// ReadFile returns the file contents, or a descriptive error string if the
// file is unreadable. The error text is ordinary tool output, not a failure.
func (w *Local) ReadFile(path string) string {
	full, err := w.resolve(path)
	if err != nil {
		return fmt.Sprintf("Error fetching code from %s: %v", path, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Sprintf("Error fetching code from %s: %v", path, err)
	}
	return string(data)
}
