// Package repl implements the incremental evaluation engine behind the
// interactive loop: it accumulates typed fragments into a growing program,
// recompiles the whole buffer on every submission, executes only the newly
// produced output, and classifies failed compiles as "statement not
// finished" versus genuine error.
package repl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/masad-frost/ts-node/internal/bridge"
	"github.com/masad-frost/ts-node/internal/diff"
	"github.com/masad-frost/ts-node/internal/exec"
	"github.com/masad-frost/ts-node/internal/session"
)

// ErrIncomplete signals that a compile failure is attributable solely to
// the user not having finished typing a statement. The buffer has been
// rolled back; the front end should reprompt for a continuation line.
var ErrIncomplete = errors.New("input is incomplete, more lines expected")

// Service is the evaluation engine. It owns the session buffer and the
// persistent execution context for the lifetime of one REPL session, and
// processes one submission at a time to completion: compile, diff, execute,
// commit or roll back.
type Service struct {
	state       *session.State
	compiler    bridge.Compiler
	executor    *exec.Executor
	recoverable *bridge.RecoverableSet
	evalPath    string
}

// NewService wires the engine. evalPath is the virtual path under which the
// compiler sees the live buffer.
func NewService(state *session.State, compiler bridge.Compiler, executor *exec.Executor, recoverable *bridge.RecoverableSet, evalPath string) *Service {
	return &Service{
		state:       state,
		compiler:    compiler,
		executor:    executor,
		recoverable: recoverable,
		evalPath:    evalPath,
	}
}

// State exposes the session buffer, e.g. for wiring a file provider that
// serves the live input.
func (s *Service) State() *session.State {
	return s.state
}

// Eval submits one input fragment. On success it returns the value of the
// last newly executed block, or nil when compilation produced no new lines.
//
// An input without a trailing newline is speculative: it is evaluated but
// rolled back afterwards, leaving no trace in the buffer.
//
// Failure modes: ErrIncomplete (recoverable, buffer rolled back),
// *bridge.CompileError (fatal diagnostic, buffer rolled back), a runtime
// error thrown by executed code (propagated as-is; the submission stays
// committed and side effects that already happened are not undone), or an
// internal bridge failure (buffer rolled back, session stays alive).
func (s *Service) Eval(input string) (goja.Value, error) {
	speculative := !strings.HasSuffix(input, "\n")
	lineOffset := -s.state.LineCount

	undo := s.state.Append(input)

	output, err := s.compiler.Compile(s.state.Input, s.evalPath, lineOffset)
	if err != nil {
		undo()
		var cerr *bridge.CompileError
		if errors.As(err, &cerr) {
			if s.recoverable.Classify(cerr) {
				return nil, ErrIncomplete
			}
			return nil, cerr
		}
		return nil, fmt.Errorf("compiler bridge failed: %w", err)
	}

	blocks := diff.AddedBlocks(diff.Lines(s.state.Output, output))
	value, runErr := s.executor.RunBlocks(blocks)

	if speculative {
		undo()
	} else {
		s.state.Commit(output)
	}

	if runErr != nil {
		return nil, runErr
	}
	return value, nil
}

// TypeInfo speculatively appends expr to the buffer, queries the compiler
// for quick info at the end-of-buffer offset, and unconditionally rolls
// back. The session state is bit-for-bit identical before and after.
func (s *Service) TypeInfo(expr string) (bridge.TypeInfo, error) {
	undo := s.state.Append(expr)
	defer undo()

	return s.compiler.GetTypeInfo(s.state.Input, s.evalPath, len(s.state.Input))
}
