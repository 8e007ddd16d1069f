package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/dshills/gdbmi/internal/config"
	"github.com/dshills/gdbmi/internal/export"
	"github.com/dshills/gdbmi/internal/gdb"
	"github.com/dshills/gdbmi/internal/mi"
	"github.com/dshills/gdbmi/internal/mi/command"
	"github.com/dshills/gdbmi/internal/plugin/lua"
)

type runOptions struct {
	gdbPath  string
	exec     string
	commands []string
	scripts  []string
	watch    bool
	json     bool
	noTrace  bool
}

func newRunCommand(g *globalOptions) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run [flags] [-- gdb-args...]",
		Short: "Starts gdb, runs commands and prints their results",
		Long: `Starts gdb in MI mode and runs each -x command in order, printing
every result. Out-of-band output is traced as it arrives and handed to any
Lua scripts. gdb is asked to exit once the last command completes.`,
		Example: `  gdbmi run --exec ./a.out -x "-break-insert main" -x "-exec-run"
  gdbmi run --script stops.lua --watch -x "-exec-run" -- --args ./a.out 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, g, args)
		},
	}

	flags := runCmd.Flags()
	flags.StringVar(&opts.gdbPath, "gdb", "", "gdb executable (overrides gdb.path)")
	flags.StringVar(&opts.exec, "exec", "", "program to debug, loaded with -file-exec-and-symbols")
	flags.StringArrayVarP(&opts.commands, "execute", "x", nil, "MI command to run; repeatable")
	flags.StringArrayVar(&opts.scripts, "script", nil, "Lua handler script; repeatable")
	flags.BoolVar(&opts.watch, "watch", false, "reload scripts when they change")
	flags.BoolVar(&opts.json, "json", false, "print messages as JSON")
	flags.BoolVar(&opts.noTrace, "no-trace", false, "do not print out-of-band messages")

	return runCmd
}

func (o *runOptions) run(cmd *cobra.Command, g *globalOptions, gdbArgs []string) error {
	cfg := g.cfg
	log := g.log.WithName("run")

	procOpts := cfg.ProcessOptions()
	if o.gdbPath != "" {
		procOpts.Path = o.gdbPath
	}
	procOpts.Args = append(procOpts.Args, gdbArgs...)
	procOpts.Stderr = cmd.ErrOrStderr()

	out := &syncWriter{w: cmd.OutOrStdout()}
	jsonOut := o.json || cfg.Trace.JSON

	sessionOpts := []gdb.Option{gdb.WithLogger(log.WithName("session"))}
	if cfg.Session.Strict {
		sessionOpts = append(sessionOpts, gdb.WithStrictParsing())
	}
	if cfg.Trace.Enabled && !o.noTrace {
		sessionOpts = append(sessionOpts, gdb.WithHandler(traceHandler(out, jsonOut)))
	}

	scripts, err := loadScripts(append(append([]string(nil), cfg.Scripts.Paths...), o.scripts...), cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, h := range scripts {
			_ = h.Close()
		}
	}()
	for _, h := range scripts {
		sessionOpts = append(sessionOpts, gdb.WithHandler(h))
	}

	if len(scripts) > 0 && (o.watch || cfg.Scripts.Watch) {
		w, err := lua.NewWatcher(lua.WithWatcherLogger(log.WithName("watch")))
		if err != nil {
			return err
		}
		defer w.Close()
		for _, h := range scripts {
			if err := w.Add(h); err != nil {
				return err
			}
		}
	}

	s, err := gdb.Start(procOpts, sessionOpts...)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
		<-s.Done()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cmds []command.Command
	if o.exec != "" {
		cmds = append(cmds, command.FileExecAndSymbols{File: o.exec})
	}
	for _, line := range o.commands {
		c, err := command.ParseLine(line)
		if err != nil {
			return err
		}
		cmds = append(cmds, c)
	}

	failed := 0
	for _, c := range cmds {
		rec, err := o.call(ctx, s, c, cfg.Session.CallTimeout.Duration, out, jsonOut)
		var cmdErr *gdb.CommandError
		switch {
		case errors.As(err, &cmdErr):
			failed++
			log.Error(cmdErr, "command failed", "operation", c.Operation(), "code", cmdErr.Code)
		case err != nil:
			return err
		default:
			log.V(1).Info("command done", "operation", c.Operation(), "class", rec.Record.Class)
		}
	}

	o.exit(ctx, s, cfg.Session.CallTimeout.Duration, cfg.Session.ExitTimeout.Duration, log)

	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(cmds))
	}
	return nil
}

// call runs c and prints its result record.
func (o *runOptions) call(ctx context.Context, s *gdb.Session, c command.Command, timeout time.Duration, out io.Writer, jsonOut bool) (*mi.RecordMessage, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rec, err := s.Call(ctx, c)
	if rec != nil {
		if perr := printMessage(out, rec, jsonOut); perr != nil {
			return rec, perr
		}
	}
	return rec, err
}

// exit asks gdb to quit and waits for it. gdb is killed if it does not
// exit in time.
func (o *runOptions) exit(ctx context.Context, s *gdb.Session, callTimeout, exitTimeout time.Duration, log logr.Logger) {
	if s.State() != gdb.StateOpen {
		return
	}
	if callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, callTimeout)
		defer cancel()
	}

	if _, err := s.Call(ctx, command.GDBExit{}); err != nil && !gdb.IsSessionClosed(err) {
		log.Error(err, "gdb-exit failed")
		return
	}
	if !s.Wait(exitTimeout) {
		log.Info("gdb did not exit in time, killing it", "timeout", exitTimeout)
	}
}

func loadScripts(paths []string, cfg *config.Config, log logr.Logger) ([]*lua.ScriptHandler, error) {
	var handlers []*lua.ScriptHandler
	for _, path := range paths {
		h, err := lua.NewScriptHandler(path,
			lua.WithLogger(log.WithName("lua")),
			lua.WithTimeout(cfg.Scripts.Timeout.Duration),
		)
		if err != nil {
			for _, loaded := range handlers {
				_ = loaded.Close()
			}
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// traceHandler prints every out-of-band message except prompts.
func traceHandler(out io.Writer, jsonOut bool) gdb.Handler {
	h := gdb.HandlerFunc(func(_ *gdb.Session, msg mi.Message) {
		_ = printMessage(out, msg, jsonOut)
	})
	return gdb.KindFilter(h,
		mi.KindConsole, mi.KindTarget, mi.KindLog,
		mi.KindExecute, mi.KindNotify, mi.KindStatus,
	)
}

func printMessage(out io.Writer, msg mi.Message, jsonOut bool) error {
	line := msg.String()
	if jsonOut {
		doc, err := export.Message(msg)
		if err != nil {
			return err
		}
		line = doc
	}
	_, err := fmt.Fprintln(out, line)
	return err
}

// syncWriter serializes writes from the session reader and the command
// loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
