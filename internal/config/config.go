// Package config loads REPL configuration from a TOML file. Everything has
// a working default; a missing config file is not an error.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/masad-frost/ts-node/internal/bridge"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".tsnode.toml"

// Config holds REPL configuration.
type Config struct {
	// CompilerPath locates typescript.js for the language-service bridge.
	CompilerPath string `toml:"compiler"`

	// HistoryDir is where session transcripts are written.
	HistoryDir string `toml:"history_dir"`

	// NoHistory disables transcript persistence.
	NoHistory bool `toml:"no_history"`

	// Recoverable optionally overrides the incomplete-input diagnostic
	// allow-list. The set is compiler-version-specific, so it is data, not
	// code: an empty list means "use the packaged default".
	Recoverable RecoverableConfig `toml:"recoverable"`
}

// RecoverableConfig is the allow-list override section.
type RecoverableConfig struct {
	Codes []int `toml:"codes"`
}

// Default returns the packaged configuration.
func Default() Config {
	return Config{
		CompilerPath: "node_modules/typescript/lib/typescript.js",
		HistoryDir:   ".tsnode",
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// RecoverableCodes returns the configured allow-list, falling back to the
// packaged default set.
func (c Config) RecoverableCodes() []int {
	if len(c.Recoverable.Codes) > 0 {
		return c.Recoverable.Codes
	}
	return bridge.DefaultRecoverableCodes()
}
