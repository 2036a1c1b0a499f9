package repl

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/masad-frost/ts-node/internal/bridge"
	"github.com/masad-frost/ts-node/internal/exec"
	"github.com/masad-frost/ts-node/internal/session"
)

// scriptedCompiler lets each test decide what the opaque bridge does. The
// zero value is an identity transpiler: the "compiled" output is the source
// itself, which is convenient because the test inputs are plain JavaScript.
type scriptedCompiler struct {
	compileFn func(source, path string, lineOffset int) (string, error)
	typeFn    func(source, path string, position int) (bridge.TypeInfo, error)
}

func (c *scriptedCompiler) Compile(source, path string, lineOffset int) (string, error) {
	if c.compileFn == nil {
		return source, nil
	}
	return c.compileFn(source, path, lineOffset)
}

func (c *scriptedCompiler) GetTypeInfo(source, path string, position int) (bridge.TypeInfo, error) {
	if c.typeFn == nil {
		return bridge.TypeInfo{}, nil
	}
	return c.typeFn(source, path, position)
}

func newTestService(t *testing.T, compiler bridge.Compiler) *Service {
	t.Helper()
	executor, err := exec.New(nil)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	return NewService(session.New(), compiler, executor, bridge.DefaultRecoverableSet(), bridge.EvalFilename)
}

func TestEval_CommitsAndReturnsValue(t *testing.T) {
	svc := newTestService(t, &scriptedCompiler{})

	value, err := svc.Eval("1 + 1;\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToInteger() != 2 {
		t.Errorf("expected 2, got %v", value)
	}

	state := svc.State()
	if state.Input != "1 + 1;\n" {
		t.Errorf("input not committed: %q", state.Input)
	}
	if state.Output != "1 + 1;\n" {
		t.Errorf("output not paired with input: %q", state.Output)
	}
	if state.Pending() != 0 {
		t.Errorf("transaction left open: %d", state.Pending())
	}
}

func TestEval_NoReplay(t *testing.T) {
	svc := newTestService(t, &scriptedCompiler{})

	// Each submission recompiles the whole buffer; only the added lines may
	// run, so the increment must execute exactly once per submission.
	for _, input := range []string{"var n = 0;\n", "n = n + 1;\n", "n = n + 1;\n"} {
		if _, err := svc.Eval(input); err != nil {
			t.Fatalf("unexpected error on %q: %v", input, err)
		}
	}

	value, err := svc.Eval("n;\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToInteger() != 2 {
		t.Errorf("statements replayed: n = %v, want 2", value)
	}
}

func TestEval_RecoverableRollsBackThenCompletionCommits(t *testing.T) {
	compiler := &scriptedCompiler{
		compileFn: func(source, path string, lineOffset int) (string, error) {
			if strings.Contains(source, "functio\n") {
				return "", &bridge.CompileError{
					Codes: []int{bridge.CodeIdentifierExpected},
					Text:  "TS1003: Identifier expected.\n",
				}
			}
			return source, nil
		},
	}
	svc := newTestService(t, compiler)

	_, err := svc.Eval("functio\n")
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if svc.State().Input != "" {
		t.Errorf("buffer not rolled back: %q", svc.State().Input)
	}

	if _, err := svc.Eval("function f(){}\n"); err != nil {
		t.Fatalf("completion should compile cleanly: %v", err)
	}
	if svc.State().Input != "function f(){}\n" {
		t.Errorf("completion not committed: %q", svc.State().Input)
	}
}

func TestEval_FatalClassification(t *testing.T) {
	compiler := &scriptedCompiler{
		compileFn: func(source, path string, lineOffset int) (string, error) {
			if strings.Contains(source, "boom") {
				return "", &bridge.CompileError{
					Codes: []int{2304},
					Text:  "TS2304: Cannot find name 'boom'.\n",
				}
			}
			return source, nil
		},
	}
	svc := newTestService(t, compiler)

	_, err := svc.Eval("boom;\n")
	var cerr *bridge.CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a compile error, got %v", err)
	}
	if !strings.Contains(cerr.Error(), "Cannot find name") {
		t.Errorf("diagnostic text not surfaced: %v", cerr)
	}
	if svc.State().Input != "" {
		t.Errorf("buffer not rolled back: %q", svc.State().Input)
	}

	// Session stays alive for the next input.
	if _, err := svc.Eval("var ok = 1;\n"); err != nil {
		t.Fatalf("session should survive a fatal error: %v", err)
	}
}

func TestEval_SpeculativeLeavesNoTrace(t *testing.T) {
	var typeQuerySource string
	compiler := &scriptedCompiler{
		typeFn: func(source, path string, position int) (bridge.TypeInfo, error) {
			typeQuerySource = source
			return bridge.TypeInfo{}, nil
		},
	}
	svc := newTestService(t, compiler)

	before := *svc.State()

	value, err := svc.Eval("1+1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToInteger() != 2 {
		t.Errorf("expected 2, got %v", value)
	}
	if after := *svc.State(); !reflect.DeepEqual(before, after) {
		t.Errorf("speculative input left a trace: %+v", after)
	}

	// A later type query must behave as if the expression was never
	// submitted.
	if _, err := svc.TypeInfo("x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typeQuerySource != "x" {
		t.Errorf("query saw stale buffer: %q", typeQuerySource)
	}
}

func TestEval_NoOpDiffExecutesNothing(t *testing.T) {
	// A transpiler that drops comment lines: comment-only input compiles to
	// the same output as before, producing an empty diff.
	compiler := &scriptedCompiler{
		compileFn: func(source, path string, lineOffset int) (string, error) {
			var kept []string
			for _, line := range strings.Split(source, "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), "//") {
					continue
				}
				kept = append(kept, line)
			}
			return strings.Join(kept, "\n"), nil
		},
	}
	svc := newTestService(t, compiler)

	if _, err := svc.Eval("var hits = 1;\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err := svc.Eval("// just a comment\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != nil {
		t.Errorf("expected no value for empty diff, got %v", value)
	}

	value, err = svc.Eval("hits;\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToInteger() != 1 {
		t.Errorf("comment submission executed something: hits = %v", value)
	}
}

func TestEval_RuntimeErrorKeepsCommitAndEffects(t *testing.T) {
	svc := newTestService(t, &scriptedCompiler{})

	_, err := svc.Eval("var x = 1; missing();\n")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if errors.Is(err, ErrIncomplete) {
		t.Fatal("runtime errors are not recoverable input")
	}

	// The code compiled: the buffer stays committed and the side effects
	// that ran before the throw are kept.
	if !strings.Contains(svc.State().Input, "var x = 1") {
		t.Errorf("buffer lost the committed input: %q", svc.State().Input)
	}
	value, err := svc.Eval("x;\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.ToInteger() != 1 {
		t.Errorf("side effect before the throw was lost: %v", value)
	}
}

func TestEval_BridgeFailureRollsBack(t *testing.T) {
	broken := errors.New("bridge down")
	compiler := &scriptedCompiler{
		compileFn: func(source, path string, lineOffset int) (string, error) {
			if strings.Contains(source, "flaky") {
				return "", broken
			}
			return source, nil
		},
	}
	svc := newTestService(t, compiler)

	_, err := svc.Eval("flaky;\n")
	if !errors.Is(err, broken) {
		t.Fatalf("expected wrapped bridge error, got %v", err)
	}
	if svc.State().Input != "" {
		t.Errorf("buffer not rolled back: %q", svc.State().Input)
	}

	if _, err := svc.Eval("var ok = 1;\n"); err != nil {
		t.Fatalf("session should survive a bridge failure: %v", err)
	}
}

func TestEval_LineOffsetIsNegativeLineCount(t *testing.T) {
	var offsets []int
	compiler := &scriptedCompiler{
		compileFn: func(source, path string, lineOffset int) (string, error) {
			offsets = append(offsets, lineOffset)
			return source, nil
		},
	}
	svc := newTestService(t, compiler)

	if _, err := svc.Eval("var a = 1;\nvar b = 2;\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Eval("a + b;\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{0, -2}
	if !reflect.DeepEqual(offsets, want) {
		t.Errorf("expected offsets %v, got %v", want, offsets)
	}
}

func TestEval_SemicolonGuardKeepsStatementsSeparate(t *testing.T) {
	svc := newTestService(t, &scriptedCompiler{})

	if _, err := svc.Eval("var arr = [1, 2]\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Without the guard this would compile as arr[0] and index the array.
	value, err := svc.Eval("[0]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exported, ok := value.Export().([]any)
	if !ok || len(exported) != 1 {
		t.Fatalf("expected a fresh array literal, got %v", value)
	}
}

func TestEval_IncrementalMatchesBatch(t *testing.T) {
	statements := []string{
		"var a = 1;\n",
		"var b = a + 1;\n",
		"var c = b * 2;\n",
	}

	incremental := newTestService(t, &scriptedCompiler{})
	for _, stmt := range statements {
		if _, err := incremental.Eval(stmt); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	batch := newTestService(t, &scriptedCompiler{})
	if _, err := batch.Eval(strings.Join(statements, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const probe = "a + b + c;\n"
	left, err := incremental.Eval(probe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	right, err := batch.Eval(probe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.ToInteger() != right.ToInteger() {
		t.Errorf("incremental (%v) and batch (%v) evaluation diverged", left, right)
	}
}

func TestTypeInfo_RollbackExactness(t *testing.T) {
	var seenSource string
	var seenPosition int
	compiler := &scriptedCompiler{
		typeFn: func(source, path string, position int) (bridge.TypeInfo, error) {
			seenSource = source
			seenPosition = position
			return bridge.TypeInfo{Name: "var a: number", Comment: "doc"}, nil
		},
	}
	svc := newTestService(t, compiler)

	if _, err := svc.Eval("var a = 1;\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := *svc.State()

	info, err := svc.TypeInfo("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "var a: number" || info.Comment != "doc" {
		t.Errorf("unexpected type info %+v", info)
	}
	if seenSource != "var a = 1;\na" {
		t.Errorf("query saw %q", seenSource)
	}
	if seenPosition != len(seenSource) {
		t.Errorf("expected end-of-buffer position %d, got %d", len(seenSource), seenPosition)
	}
	if after := *svc.State(); !reflect.DeepEqual(before, after) {
		t.Errorf("type query mutated the session: %+v != %+v", after, before)
	}
}

func TestTypeInfo_RollsBackOnQueryFailure(t *testing.T) {
	compiler := &scriptedCompiler{
		typeFn: func(source, path string, position int) (bridge.TypeInfo, error) {
			return bridge.TypeInfo{}, errors.New("service unavailable")
		},
	}
	svc := newTestService(t, compiler)

	before := *svc.State()
	if _, err := svc.TypeInfo("a"); err == nil {
		t.Fatal("expected query failure")
	}
	if after := *svc.State(); !reflect.DeepEqual(before, after) {
		t.Errorf("failed query mutated the session: %+v", after)
	}
}
