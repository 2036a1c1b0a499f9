package repl

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dop251/goja"
)

var (
	// promptStyle for the primary input prompt
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	// continuationStyle for the multi-line continuation prompt
	continuationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	// valueStyle for echoed result values
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for compile and runtime errors
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// typeNameStyle for .type signatures
	typeNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)
)

// Prompt is the primary input prompt.
const Prompt = "> "

// ContinuationPrompt is shown while a statement is incomplete.
const ContinuationPrompt = "... "

// FormatValue renders a result value for display. The empty string means
// nothing should be echoed.
func FormatValue(value goja.Value) string {
	if value == nil {
		return ""
	}
	if goja.IsUndefined(value) {
		return "undefined"
	}
	if goja.IsNull(value) {
		return "null"
	}

	exported := value.Export()
	switch v := exported.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []any:
		if len(v) == 0 {
			return "[]"
		}
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprintf("%v", item)
		}
		return "[ " + strings.Join(items, ", ") + " ]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
