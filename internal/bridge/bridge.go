// Package bridge defines the boundary to the TypeScript compiler. The
// evaluation engine treats the compiler as an opaque service: it submits
// the full accumulated buffer and gets back compiled text or a structured
// failure. A goja-hosted language service (typescript.go) provides a real
// implementation; tests use scripted fakes.
package bridge

import (
	"fmt"
	"strings"
)

// EvalFilename is the virtual filename under which the live session buffer
// is visible to the compiler. It never exists on disk.
const EvalFilename = "[eval].ts"

// Compiler is the opaque compile/introspection service.
type Compiler interface {
	// Compile transpiles source addressed as path and returns the compiled
	// text. lineOffset is negative and equal to minus the number of lines
	// of prior, already-accounted-for context, so diagnostic positions map
	// back to what the user actually typed. Compile failures are returned
	// as *CompileError; any other error is an internal bridge failure.
	Compile(source, path string, lineOffset int) (string, error)

	// GetTypeInfo returns quick info for the node at position. Pure query,
	// side-effect-free by contract.
	GetTypeInfo(source, path string, position int) (TypeInfo, error)
}

// TypeInfo is the result of an identifier inspection.
type TypeInfo struct {
	// Name is the type signature display text.
	Name string

	// Comment is the attached documentation, empty when absent.
	Comment string
}

// CompileError is a structured compile failure.
type CompileError struct {
	// Codes are the diagnostic codes reported by the compiler, in order.
	Codes []int

	// Text is the formatted diagnostic message text.
	Text string
}

// Error returns the diagnostic text.
func (e *CompileError) Error() string {
	return strings.TrimRight(e.Text, "\n")
}

// FileProvider resolves file content for the compiler. One distinguished
// virtual path resolves to the engine's live input buffer rather than any
// on-disk file.
type FileProvider interface {
	// ReadFile returns the content of path and whether it exists.
	ReadFile(path string) (string, bool)

	// FileExists reports whether path resolves to content.
	FileExists(path string) bool
}

// BufferProvider serves the live session buffer at a single virtual path
// and delegates everything else to a fallback provider.
type BufferProvider struct {
	// Path is the virtual path at which the buffer is visible.
	Path string

	// Contents returns the current buffer text.
	Contents func() string

	// Fallback resolves all other paths; may be nil.
	Fallback FileProvider
}

// ReadFile returns the live buffer for the virtual path, otherwise defers
// to the fallback.
func (p *BufferProvider) ReadFile(path string) (string, bool) {
	if path == p.Path {
		return p.Contents(), true
	}
	if p.Fallback == nil {
		return "", false
	}
	return p.Fallback.ReadFile(path)
}

// FileExists reports true for the virtual path, otherwise defers to the
// fallback.
func (p *BufferProvider) FileExists(path string) bool {
	if path == p.Path {
		return true
	}
	if p.Fallback == nil {
		return false
	}
	return p.Fallback.FileExists(path)
}

// FormatDiagnostic renders a single diagnostic line in the conventional
// "TS<code>: <message>" shape.
func FormatDiagnostic(code int, message string) string {
	return fmt.Sprintf("TS%d: %s", code, message)
}
