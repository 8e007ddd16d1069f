// Package cmd implements the gdbmi command line.
package cmd

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/dshills/gdbmi/internal/config"
	"github.com/dshills/gdbmi/internal/logger"
)

// BuildInfo identifies the binary. It is filled in through ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions holds the persistent flags and the state they produce.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg   *config.Config
	log   logr.Logger
	flush func()
}

// NewRootCommand builds the gdbmi command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := &globalOptions{log: logr.Discard(), flush: func() {}}

	rootCmd := &cobra.Command{
		Use:   "gdbmi",
		Short: "Drive gdb through its machine interface",
		Long: `gdbmi runs gdb in MI mode, sends it commands and correlates every
result with the command that caused it.

Configuration is read from a TOML or YAML file and from GDBMI_*
environment variables; flags override both.`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
		PersistentPostRun: func(*cobra.Command, []string) { opts.flush() },
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", fmt.Sprintf("config file (default is %s)", config.DefaultPath()))
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json, console or auto")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newParseCommand(opts))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// setup loads the configuration (defaults, then file, then environment,
// then flags) and builds the logger.
func (o *globalOptions) setup(cmd *cobra.Command, _ []string) error {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	log, flush, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.log = log.WithName("gdbmi")
	o.flush = flush
	return nil
}
