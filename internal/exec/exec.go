// Package exec runs compiled JavaScript blocks against one persistent goja
// runtime. The runtime's global scope is the REPL's defining behavior:
// state persists across submissions for the lifetime of the session, so the
// executor is created once at session start and torn down with it.
package exec

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// DisplayFilename is the stable name compiled blocks are addressed to. It
// appears in stack traces and error messages; no file I/O happens under it.
const DisplayFilename = "[eval].js"

// Executor compiles and runs code blocks in a single shared global scope.
type Executor struct {
	vm *goja.Runtime
}

// New creates an executor with a fresh runtime and a console.log that
// writes through the given print function (nil discards output).
func New(print func(string)) (*Executor, error) {
	vm := goja.New()

	logFunc := func(call goja.FunctionCall) goja.Value {
		if print != nil {
			args := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.String()
			}
			print(strings.Join(args, " "))
		}
		return goja.Undefined()
	}

	console := vm.NewObject()
	if err := console.Set("log", logFunc); err != nil {
		return nil, fmt.Errorf("failed to set console.log: %w", err)
	}
	if err := console.Set("error", logFunc); err != nil {
		return nil, fmt.Errorf("failed to set console.error: %w", err)
	}
	if err := vm.Set("console", console); err != nil {
		return nil, fmt.Errorf("failed to set console: %w", err)
	}

	return &Executor{vm: vm}, nil
}

// Runtime exposes the underlying runtime for value conversion.
func (e *Executor) Runtime() *goja.Runtime {
	return e.vm
}

// RunBlocks compiles and runs each block in order against the shared scope
// and returns the value of the last one. Earlier blocks' values are
// discarded; a REPL reports one value per submission even when a single
// input line expands into several executable statements. An empty block
// list yields nil ("no value").
//
// Errors thrown by executed code propagate unmodified. Side effects of
// blocks that ran before the failure are not undone.
func (e *Executor) RunBlocks(blocks []string) (goja.Value, error) {
	var last goja.Value
	for _, block := range blocks {
		program, err := goja.Compile(DisplayFilename, block, false)
		if err != nil {
			return nil, fmt.Errorf("failed to compile block: %w", err)
		}
		value, err := e.vm.RunProgram(program)
		if err != nil {
			return nil, err
		}
		last = value
	}
	return last, nil
}
