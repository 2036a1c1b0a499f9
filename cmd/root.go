package cmd

import (
	"fmt"
	"os"

	"github.com/masad-frost/ts-node/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ts-node",
	Short: "TypeScript REPL with incremental whole-program recompilation",
	Long: `ts-node runs TypeScript interactively: statements are typed one line at
a time, the whole accumulated program is recompiled on every submission,
and only the newly produced output is executed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation starts the REPL.
		return startREPL(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("ts-node %s\n", version.String()))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
