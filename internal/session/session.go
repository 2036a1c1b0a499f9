// Package session holds the cumulative REPL source buffer and wraps every
// mutation in a reversible, stack-discipline transaction. The buffer pairs
// the source text with the compiled output of its last committed state;
// the pairing is only ever changed by committing or rolling back both
// fields together.
package session

import (
	"fmt"
	"strings"
)

// State is the session buffer. It is owned exclusively by the evaluation
// engine for the lifetime of the REPL process.
type State struct {
	// Input is the full cumulative source submitted so far.
	Input string

	// Output is the compiled text corresponding to the last committed Input.
	Output string

	// Version increases monotonically on every mutation. It is a cheap
	// staleness signal, never compared for correctness.
	Version int

	// LineCount is the number of newline characters in Input. It tells the
	// compiler bridge how many lines of context precede newly typed text.
	LineCount int

	// depth tracks outstanding undo handles to enforce LIFO unwind order.
	depth int
}

// Undo restores the buffer to the snapshot taken when the handle was
// acquired. Handles are single-use and must resolve (via invocation or
// Commit) in strict reverse order of acquisition.
type Undo func()

// New returns an empty session buffer.
func New() *State {
	return &State{}
}

// Append concatenates fragment onto the buffer and returns a handle that
// restores the pre-call snapshot of all four fields. Every Append opens a
// transaction that must end in exactly one of: invoking the handle, or
// Commit.
//
// Before concatenating it guards against an automatic-semicolon-insertion
// hazard: if the buffer ends in a newline without a terminating semicolon
// and the fragment begins with `[`, `(` or a backtick, the two top-level
// statements would fuse into one expression in the compiled output, so a
// semicolon is inserted at the boundary.
func (s *State) Append(fragment string) Undo {
	saved := *s
	s.depth++
	acquired := s.depth

	if needsSemicolonGuard(s.Input, fragment) {
		s.Input = s.Input[:len(s.Input)-1] + ";\n"
	}

	s.Input += fragment
	s.LineCount += strings.Count(fragment, "\n")
	s.Version++

	used := false
	return func() {
		if used {
			panic("session: undo handle invoked twice")
		}
		if s.depth != acquired {
			panic(fmt.Sprintf("session: undo out of order (depth %d, handle %d)", s.depth, acquired))
		}
		used = true
		*s = saved
	}
}

// Commit pairs output with the current Input as the new committed state and
// closes the innermost open transaction.
func (s *State) Commit(output string) {
	if s.depth == 0 {
		panic("session: commit without open transaction")
	}
	s.depth--
	s.Output = output
	s.Version++
}

// Pending reports how many transactions are currently open. Zero between
// submissions is an engine invariant.
func (s *State) Pending() int {
	return s.depth
}

// needsSemicolonGuard reports whether appending fragment to input risks
// statement fusion through automatic semicolon insertion.
func needsSemicolonGuard(input, fragment string) bool {
	if !strings.HasSuffix(input, "\n") {
		return false
	}
	trimmed := strings.TrimRight(input, "\n")
	if strings.HasSuffix(trimmed, ";") {
		return false
	}
	lead := strings.TrimLeft(fragment, " \t")
	if lead == "" {
		return false
	}
	switch lead[0] {
	case '[', '(', '`':
		return true
	}
	return false
}
