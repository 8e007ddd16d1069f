// Package config loads gdbmi settings.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file (Load), by default $XDG_CONFIG_HOME/gdbmi/config.toml
//  3. GDBMI_* environment variables (ApplyEnv)
//
// Command line flags are applied on top by the caller.
//
// Example file:
//
//	[gdb]
//	path = "gdb-multiarch"
//	args = ["--nx"]
//
//	[session]
//	call_timeout = "10s"
//
//	[log]
//	level = "debug"
//	format = "console"
package config
