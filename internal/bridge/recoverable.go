package bridge

// TypeScript diagnostic codes that mean the user has not finished typing a
// statement, as opposed to a genuine mistake. The set is closed: a failure
// is recoverable only when every one of its codes appears here.
//
// The exact set is compiler-version-specific; callers may substitute their
// own set (e.g. from configuration) via NewRecoverableSet.
const (
	// CodeIdentifierExpected — "Identifier expected." (e.g. a dangling dot).
	CodeIdentifierExpected = 1003
	// CodeTokenExpected — "'{token}' expected." (unclosed brace, paren, ...).
	CodeTokenExpected = 1005
	// CodeExpressionExpected — "Expression expected."
	CodeExpressionExpected = 1109
	// CodeUnexpectedEndOfText — "Unexpected end of text."
	CodeUnexpectedEndOfText = 1126
	// CodeUnterminatedTemplate — "Unterminated template literal."
	CodeUnterminatedTemplate = 1160
	// CodeUnterminatedRegExp — "Unterminated regular expression literal."
	CodeUnterminatedRegExp = 1161
	// CodeMissingReturn — "A function whose declared type is neither 'void'
	// nor 'any' must return a value." (body not typed yet).
	CodeMissingReturn = 2355
)

// RecoverableSet decides whether a compile failure is mere syntactic
// incompleteness. It holds no state across attempts.
type RecoverableSet struct {
	codes map[int]bool
}

// NewRecoverableSet builds a classifier over the given allow-listed codes.
func NewRecoverableSet(codes []int) *RecoverableSet {
	s := &RecoverableSet{codes: make(map[int]bool, len(codes))}
	for _, c := range codes {
		s.codes[c] = true
	}
	return s
}

// DefaultRecoverableCodes returns the packaged allow-list, ordered.
func DefaultRecoverableCodes() []int {
	return []int{
		CodeIdentifierExpected,
		CodeTokenExpected,
		CodeExpressionExpected,
		CodeUnexpectedEndOfText,
		CodeUnterminatedTemplate,
		CodeUnterminatedRegExp,
		CodeMissingReturn,
	}
}

// DefaultRecoverableSet returns a classifier over the packaged allow-list.
func DefaultRecoverableSet() *RecoverableSet {
	return NewRecoverableSet(DefaultRecoverableCodes())
}

// Contains reports whether code is in the allow-list.
func (s *RecoverableSet) Contains(code int) bool {
	return s.codes[code]
}

// Classify reports whether err represents incomplete input: every
// diagnostic code must be allow-listed, and there must be at least one.
// Any other code anywhere in the failure forces a fatal classification.
func (s *RecoverableSet) Classify(err *CompileError) bool {
	if err == nil || len(err.Codes) == 0 {
		return false
	}
	for _, code := range err.Codes {
		if !s.codes[code] {
			return false
		}
	}
	return true
}
