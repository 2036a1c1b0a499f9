package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/masad-frost/ts-node/internal/bridge"
	"github.com/masad-frost/ts-node/internal/config"
	"github.com/masad-frost/ts-node/internal/exec"
	"github.com/masad-frost/ts-node/internal/history"
	"github.com/masad-frost/ts-node/internal/repl"
	"github.com/masad-frost/ts-node/internal/session"
	"github.com/spf13/cobra"
)

var configPath string
var compilerPath string
var noHistory bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive TypeScript REPL",
	Long:  `Start the interactive REPL, compiling against typescript.js and executing in the embedded JavaScript runtime.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startREPL(cmd)
	},
}

func init() {
	// Compiler flag with env var fallback
	defaultCompiler := ""
	if envCompiler := os.Getenv("TSNODE_COMPILER"); envCompiler != "" {
		defaultCompiler = envCompiler
	}

	rootCmd.PersistentFlags().StringVar(&compilerPath, "compiler", defaultCompiler, "Path to typescript.js (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "Disable the session transcript")

	rootCmd.AddCommand(replCmd)
}

// startREPL wires the engine and runs the interactive loop until EOF or
// .exit.
func startREPL(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if compilerPath != "" {
		cfg.CompilerPath = compilerPath
	}
	if noHistory {
		cfg.NoHistory = true
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	evalPath := filepath.Join(wd, bridge.EvalFilename)

	state := session.New()
	files := &bridge.BufferProvider{
		Path:     evalPath,
		Contents: func() string { return state.Input },
		Fallback: bridge.DiskProvider{},
	}

	compiler, err := bridge.NewLanguageService(cfg.CompilerPath, files)
	if err != nil {
		return fmt.Errorf("failed to start compiler bridge: %w", err)
	}

	out := cmd.OutOrStdout()
	executor, err := exec.New(func(line string) { fmt.Fprintln(out, line) })
	if err != nil {
		return fmt.Errorf("failed to start executor: %w", err)
	}

	service := repl.NewService(state, compiler, executor,
		bridge.NewRecoverableSet(cfg.RecoverableCodes()), evalPath)

	var transcript *history.Manager
	if !cfg.NoHistory {
		transcript, err = history.NewManager(cfg.HistoryDir)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
	}

	return repl.Run(repl.Options{
		In:      cmd.InOrStdin(),
		Out:     out,
		Service: service,
		History: transcript,
	})
}
