// Package diff computes ordered line-level diffs between two compiled
// texts. The evaluation engine executes only the Added hunks, which is
// what guarantees at-most-once execution of any statement across a REPL
// session even as line positions shift in later recompiles.
package diff

import "strings"

// Kind classifies a contiguous run of lines in a diff.
type Kind int

const (
	// Unchanged lines appear in both texts.
	Unchanged Kind = iota
	// Added lines appear only in the new text.
	Added
	// Removed lines appear only in the previous text.
	Removed
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Hunk is a contiguous run of lines sharing one classification. The hunks
// of a diff are ordered and cover the entirety of both inputs with no gaps.
type Hunk struct {
	Lines []string
	Kind  Kind
}

// Text joins the hunk's lines back into a newline-terminated block.
func (h Hunk) Text() string {
	if len(h.Lines) == 0 {
		return ""
	}
	return strings.Join(h.Lines, "\n") + "\n"
}

// Lines diffs previous against next line by line and returns the ordered
// hunks. Identical inputs yield a single Unchanged hunk (or none when both
// are empty).
func Lines(previous, next string) []Hunk {
	a := splitLines(previous)
	b := splitLines(next)

	// Longest-common-subsequence table over lines. REPL outputs are small;
	// the quadratic table is fine here.
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var hunks []Hunk
	push := func(kind Kind, line string) {
		n := len(hunks)
		if n > 0 && hunks[n-1].Kind == kind {
			hunks[n-1].Lines = append(hunks[n-1].Lines, line)
			return
		}
		hunks = append(hunks, Hunk{Lines: []string{line}, Kind: kind})
	}

	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			push(Unchanged, a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			push(Removed, a[i])
			i++
		default:
			push(Added, b[j])
			j++
		}
	}
	for ; i < len(a); i++ {
		push(Removed, a[i])
	}
	for ; j < len(b); j++ {
		push(Added, b[j])
	}

	return hunks
}

// AddedBlocks returns the text of each Added hunk, in hunk order. Each
// block is one executable unit.
func AddedBlocks(hunks []Hunk) []string {
	var blocks []string
	for _, h := range hunks {
		if h.Kind == Added {
			blocks = append(blocks, h.Text())
		}
	}
	return blocks
}

// splitLines splits text on newlines, dropping a sole trailing empty
// element produced by a terminating newline so that "a\n" is one line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
