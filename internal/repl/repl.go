package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/masad-frost/ts-node/internal/history"
)

// Options configures the interactive loop.
type Options struct {
	// In is the input stream (stdin in production).
	In io.Reader

	// Out receives prompts, values, and errors.
	Out io.Writer

	// Service is the evaluation engine.
	Service *Service

	// History records committed submissions; nil disables the transcript.
	History *history.Manager
}

// Run drives the interactive loop: read a line, hand it to the engine,
// print the value or the error, and reprompt. A recoverable failure keeps
// the pending fragment and switches to the continuation prompt; the next
// line is joined onto the fragment and the whole statement resubmitted.
//
// Returns when the input stream ends or the user types .exit.
func Run(opts Options) error {
	scanner := bufio.NewScanner(opts.In)
	out := opts.Out

	fmt.Fprintln(out, dimStyle.Render("TypeScript REPL (.help for commands, .exit to quit)"))

	pending := ""
	for {
		if pending == "" {
			fmt.Fprint(out, promptStyle.Render(Prompt))
		} else {
			fmt.Fprint(out, continuationStyle.Render(ContinuationPrompt))
		}

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()

		if pending == "" && strings.HasPrefix(line, ".") {
			if quit := runCommand(opts, line); quit {
				return nil
			}
			continue
		}

		input := pending + line + "\n"
		value, err := opts.Service.Eval(input)

		switch {
		case errors.Is(err, ErrIncomplete):
			pending = input
			continue
		case err != nil:
			pending = ""
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			continue
		}
		pending = ""

		rendered := FormatValue(value)
		if rendered != "" {
			fmt.Fprintln(out, valueStyle.Render(rendered))
		}
		if opts.History != nil {
			if err := opts.History.Append(input, rendered); err != nil {
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("history: %v", err)))
			}
		}
	}
}

// runCommand handles dot-commands. It reports whether the loop should end.
func runCommand(opts Options, line string) bool {
	out := opts.Out
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ".exit":
		return true

	case ".help":
		fmt.Fprintln(out, dimStyle.Render(".type <expr>  show the type of an expression"))
		fmt.Fprintln(out, dimStyle.Render(".help         show this help"))
		fmt.Fprintln(out, dimStyle.Render(".exit         leave the repl"))

	case ".type":
		if arg == "" {
			fmt.Fprintln(out, errorStyle.Render("usage: .type <expr>"))
			break
		}
		info, err := opts.Service.TypeInfo(arg)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			break
		}
		if info.Name == "" {
			fmt.Fprintln(out, dimStyle.Render("no type information"))
			break
		}
		fmt.Fprintln(out, typeNameStyle.Render(info.Name))
		if info.Comment != "" {
			fmt.Fprintln(out, dimStyle.Render(info.Comment))
		}

	default:
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("unknown command %s", name)))
	}
	return false
}
