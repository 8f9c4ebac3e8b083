package core

// Workspace is the injected filesystem capability tool implementations build
// on. Every method is total: failures come back as descriptive status text,
// never as an error the registry boundary would have to unwind.
type Workspace interface {
	// CreateDirectory creates the directory (and parents) if absent and
	// reports whether it already existed. It never fails on "already exists".
	CreateDirectory(path string) string

	// WriteFile creates the file if absent or overwrites it completely if
	// present. Content is never merged.
	WriteFile(path, content string) string

	// ReadFile returns the file contents, or a descriptive error string if
	// the file is unreadable. Callers consume the error text as ordinary
	// tool output.
	ReadFile(path string) string
}
