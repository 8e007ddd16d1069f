package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable ApplyEnv reads.
const EnvPrefix = "GDBMI_"

// envSetters maps variable names (without prefix) to the setting they
// override.
var envSetters = map[string]func(c *Config, v string) error{
	"GDB_PATH":             func(c *Config, v string) error { c.GDB.Path = v; return nil },
	"GDB_ARGS":             func(c *Config, v string) error { c.GDB.Args = strings.Fields(v); return nil },
	"GDB_INTERPRETER":      func(c *Config, v string) error { c.GDB.Interpreter = v; return nil },
	"GDB_DIR":              func(c *Config, v string) error { c.GDB.Dir = v; return nil },
	"GDB_QUIET":            boolSetter(func(c *Config, b bool) { c.GDB.Quiet = b }),
	"GDB_NO_INIT":          boolSetter(func(c *Config, b bool) { c.GDB.NoInit = b }),
	"SESSION_STRICT":       boolSetter(func(c *Config, b bool) { c.Session.Strict = b }),
	"SESSION_CALL_TIMEOUT": durationSetter(func(c *Config, d time.Duration) { c.Session.CallTimeout.Duration = d }),
	"SESSION_EXIT_TIMEOUT": durationSetter(func(c *Config, d time.Duration) { c.Session.ExitTimeout.Duration = d }),
	"LOG_LEVEL":            func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil },
	"LOG_FORMAT":           func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil },
	"TRACE_ENABLED":        boolSetter(func(c *Config, b bool) { c.Trace.Enabled = b }),
	"TRACE_JSON":           boolSetter(func(c *Config, b bool) { c.Trace.JSON = b }),
	"SCRIPTS_PATHS":        func(c *Config, v string) error { c.Scripts.Paths = filepath.SplitList(v); return nil },
	"SCRIPTS_WATCH":        boolSetter(func(c *Config, b bool) { c.Scripts.Watch = b }),
	"SCRIPTS_TIMEOUT":      durationSetter(func(c *Config, d time.Duration) { c.Scripts.Timeout.Duration = d }),
}

// ApplyEnv overrides settings from GDBMI_* environment variables, for
// example GDBMI_GDB_PATH or GDBMI_SESSION_CALL_TIMEOUT=10s. Unknown
// GDBMI_ variables are ignored. Empty values are treated as set.
func (c *Config) ApplyEnv() error {
	for name, set := range envSetters {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return &ParseError{Path: EnvPrefix + name, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func boolSetter(apply func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		apply(c, b)
		return nil
	}
}

func durationSetter(apply func(*Config, time.Duration)) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		apply(c, d)
		return nil
	}
}

// parseBool accepts the spellings people put in environments.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	}
	return strconv.ParseBool(s)
}
