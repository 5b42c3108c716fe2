// Package config handles stackcalc.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "stackcalc.toml"

// Config represents a stackcalc.toml file.
type Config struct {
	REPL   REPL   `toml:"repl"`
	Output Output `toml:"output"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`

	// Dir is the directory containing the file (set at load time). Empty
	// for Default.
	Dir string `toml:"-"`
}

// REPL configures the interactive loop.
type REPL struct {
	Prompt      string `toml:"prompt"`
	Banner      string `toml:"banner"`
	HistoryFile string `toml:"history-file"` // line editor history
}

// Output selects what is printed after each result.
type Output struct {
	Disasm bool `toml:"disasm"`
	Trace  bool `toml:"trace"`
}

// Store configures the evaluation history database.
type Store struct {
	Path string `toml:"path"` // empty disables history
}

// Server configures the evaluation RPC server.
type Server struct {
	Port int `toml:"port"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"` // empty logs to stderr
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		REPL: REPL{
			Prompt: "repl> ",
			Banner: "StackCalc interpreter\nType :help for commands, exit to quit.",
		},
		Server: Server{Port: 4100},
	}
}

// Load parses the file at path. Settings missing from the file keep their
// Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a stackcalc.toml file, then
// loads it. Returns Default if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity %d is negative", c.Log.Verbosity)
	}
	return nil
}

// resolve makes a relative path relative to the config file's directory.
func (c *Config) resolve(p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// StorePath returns the history database path, or "" if history is off.
func (c *Config) StorePath() string {
	return c.resolve(c.Store.Path)
}

// HistoryFilePath returns the line editor history path, or "".
func (c *Config) HistoryFilePath() string {
	return c.resolve(c.REPL.HistoryFile)
}

// LogFilePath returns the log file path, or "" for stderr.
func (c *Config) LogFilePath() string {
	return c.resolve(c.Log.File)
}
