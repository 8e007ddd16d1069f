package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/gdbmi/internal/process"
)

// Config is the complete gdbmi configuration.
type Config struct {
	GDB     GDBConfig     `toml:"gdb" yaml:"gdb"`
	Session SessionConfig `toml:"session" yaml:"session"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Trace   TraceConfig   `toml:"trace" yaml:"trace"`
	Scripts ScriptsConfig `toml:"scripts" yaml:"scripts"`
}

// GDBConfig describes how the debugger is launched.
type GDBConfig struct {
	Path        string   `toml:"path" yaml:"path"`
	Args        []string `toml:"args" yaml:"args"`
	Interpreter string   `toml:"interpreter" yaml:"interpreter"`
	Dir         string   `toml:"dir" yaml:"dir"`
	Env         []string `toml:"env" yaml:"env"`
	Quiet       bool     `toml:"quiet" yaml:"quiet"`
	NoInit      bool     `toml:"no_init" yaml:"no_init"`
}

// SessionConfig tunes the session engine and its callers.
type SessionConfig struct {
	Strict bool `toml:"strict" yaml:"strict"`
	// CallTimeout bounds each command issued by the CLI.
	CallTimeout Duration `toml:"call_timeout" yaml:"call_timeout"`
	// ExitTimeout bounds the wait for gdb to exit after -gdb-exit.
	ExitTimeout Duration `toml:"exit_timeout" yaml:"exit_timeout"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
	// Format is json, console or auto.
	Format string `toml:"format" yaml:"format"`
}

// TraceConfig controls printing of out-of-band messages.
type TraceConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	JSON    bool `toml:"json" yaml:"json"`
}

// ScriptsConfig lists Lua handler scripts.
type ScriptsConfig struct {
	Paths []string `toml:"paths" yaml:"paths"`
	// Watch reloads a script when its file changes.
	Watch bool `toml:"watch" yaml:"watch"`
	// Timeout bounds each script callback.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GDB: GDBConfig{
			Path:        "gdb",
			Interpreter: "mi",
			Quiet:       true,
		},
		Session: SessionConfig{
			CallTimeout: Duration{30 * time.Second},
			ExitTimeout: Duration{5 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Trace: TraceConfig{
			Enabled: true,
		},
		Scripts: ScriptsConfig{
			Timeout: Duration{time.Second},
		},
	}
}

// DefaultPath returns the user configuration file location,
// $XDG_CONFIG_HOME/gdbmi/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gdbmi", "config.toml")
}

// Load reads the file at path over the defaults. The format follows the
// extension: .toml, .yaml or .yml. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			perr := &ParseError{Path: path, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// ProcessOptions converts the [gdb] section into launch options.
func (c *Config) ProcessOptions() process.Options {
	return process.Options{
		Path:        c.GDB.Path,
		Args:        append([]string(nil), c.GDB.Args...),
		Interpreter: c.GDB.Interpreter,
		Dir:         c.GDB.Dir,
		Env:         append([]string(nil), c.GDB.Env...),
		Quiet:       c.GDB.Quiet,
		NoInit:      c.GDB.NoInit,
	}
}

// Validate checks the configuration for values the rest of the program
// cannot use. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if c.GDB.Path == "" {
		add("gdb.path", "must not be empty", c.GDB.Path)
	}
	if !strings.HasPrefix(c.GDB.Interpreter, "mi") {
		add("gdb.interpreter", "must be an MI interpreter (mi, mi2, mi3, ...)", c.GDB.Interpreter)
	}
	for _, kv := range c.GDB.Env {
		if !strings.Contains(kv, "=") {
			add("gdb.env", "entries must have the form KEY=VALUE", kv)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console", "auto":
	default:
		add("log.format", "must be json, console or auto", c.Log.Format)
	}

	if c.Session.CallTimeout.Duration < 0 {
		add("session.call_timeout", "must not be negative", c.Session.CallTimeout)
	}
	if c.Session.ExitTimeout.Duration < 0 {
		add("session.exit_timeout", "must not be negative", c.Session.ExitTimeout)
	}
	if c.Scripts.Timeout.Duration < 0 {
		add("scripts.timeout", "must not be negative", c.Scripts.Timeout)
	}

	return errors.Join(errs...)
}

// Duration is a time.Duration written as a string such as "5s".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
