package command

import (
	"net"
	"strconv"
	"strings"
)

// BreakInsert is -break-insert.
type BreakInsert struct {
	// Location is a linespec, explicit location or address.
	Location    string
	Temporary   bool
	Hardware    bool
	Pending     bool
	Disabled    bool
	Condition   string
	IgnoreCount int
	// Thread restricts the breakpoint to one thread; zero means any.
	Thread int
}

func (BreakInsert) Operation() string { return "break-insert" }

func (c BreakInsert) Args() []string {
	var args []string
	if c.Temporary {
		args = append(args, "-t")
	}
	if c.Hardware {
		args = append(args, "-h")
	}
	if c.Pending {
		args = append(args, "-f")
	}
	if c.Disabled {
		args = append(args, "-d")
	}
	if c.Condition != "" {
		args = append(args, "-c", QuoteIfNeeded(c.Condition))
	}
	if c.IgnoreCount > 0 {
		args = append(args, "-i", strconv.Itoa(c.IgnoreCount))
	}
	if c.Thread > 0 {
		args = append(args, "-p", strconv.Itoa(c.Thread))
	}
	if c.Location != "" {
		args = append(args, QuoteIfNeeded(c.Location))
	}
	return args
}

// BreakWatch is -break-watch. Read and Access select a read or an access
// watchpoint; with neither set the watchpoint triggers on writes.
type BreakWatch struct {
	Expression string
	Read       bool
	Access     bool
}

func (BreakWatch) Operation() string { return "break-watch" }

func (c BreakWatch) Args() []string {
	var args []string
	switch {
	case c.Access:
		args = append(args, "-a")
	case c.Read:
		args = append(args, "-r")
	}
	return append(args, QuoteIfNeeded(c.Expression))
}

// BreakDelete is -break-delete. No numbers deletes every breakpoint.
type BreakDelete struct {
	Numbers []int
}

func (BreakDelete) Operation() string { return "break-delete" }

func (c BreakDelete) Args() []string {
	return itoaAll(c.Numbers)
}

// ExecRun is -exec-run.
type ExecRun struct {
	All         bool
	ThreadGroup string
	// Start stops at the beginning of the main procedure.
	Start bool
}

func (ExecRun) Operation() string { return "exec-run" }

func (c ExecRun) Args() []string {
	var args []string
	if c.All {
		args = append(args, "--all")
	} else if c.ThreadGroup != "" {
		args = append(args, "--thread-group", c.ThreadGroup)
	}
	if c.Start {
		args = append(args, "--start")
	}
	return args
}

// ExecContinue is -exec-continue.
type ExecContinue struct {
	Reverse     bool
	All         bool
	ThreadGroup string
}

func (ExecContinue) Operation() string { return "exec-continue" }

func (c ExecContinue) Args() []string {
	var args []string
	if c.Reverse {
		args = append(args, "--reverse")
	}
	if c.All {
		args = append(args, "--all")
	} else if c.ThreadGroup != "" {
		args = append(args, "--thread-group", c.ThreadGroup)
	}
	return args
}

// ExecNext is -exec-next.
type ExecNext struct {
	Reverse bool
}

func (ExecNext) Operation() string { return "exec-next" }

func (c ExecNext) Args() []string { return reverseFlag(c.Reverse) }

// ExecStep is -exec-step.
type ExecStep struct {
	Reverse bool
}

func (ExecStep) Operation() string { return "exec-step" }

func (c ExecStep) Args() []string { return reverseFlag(c.Reverse) }

// ExecFinish is -exec-finish.
type ExecFinish struct {
	Reverse bool
}

func (ExecFinish) Operation() string { return "exec-finish" }

func (c ExecFinish) Args() []string { return reverseFlag(c.Reverse) }

// ExecInterrupt is -exec-interrupt.
type ExecInterrupt struct {
	All         bool
	ThreadGroup string
}

func (ExecInterrupt) Operation() string { return "exec-interrupt" }

func (c ExecInterrupt) Args() []string {
	if c.All {
		return []string{"--all"}
	}
	if c.ThreadGroup != "" {
		return []string{"--thread-group", c.ThreadGroup}
	}
	return nil
}

// FileExecAndSymbols is -file-exec-and-symbols. An empty File discards the
// current executable.
type FileExecAndSymbols struct {
	File string
}

func (FileExecAndSymbols) Operation() string { return "file-exec-and-symbols" }

func (c FileExecAndSymbols) Args() []string { return optional(c.File) }

// FileExecFile is -file-exec-file.
type FileExecFile struct {
	File string
}

func (FileExecFile) Operation() string { return "file-exec-file" }

func (c FileExecFile) Args() []string { return optional(c.File) }

// GDBExit is -gdb-exit.
type GDBExit struct{}

func (GDBExit) Operation() string { return "gdb-exit" }

func (GDBExit) Args() []string { return nil }

// GDBSet is -gdb-set. Variable and Value are passed to the CLI set command
// verbatim, so "print pretty" and "on" become "-gdb-set print pretty on".
type GDBSet struct {
	Variable string
	Value    string
}

func (GDBSet) Operation() string { return "gdb-set" }

func (c GDBSet) Args() []string {
	args := strings.Fields(c.Variable)
	if c.Value != "" {
		args = append(args, c.Value)
	}
	return args
}

// GDBShow is -gdb-show.
type GDBShow struct {
	Variable string
}

func (GDBShow) Operation() string { return "gdb-show" }

func (c GDBShow) Args() []string { return strings.Fields(c.Variable) }

// InterpreterExec is -interpreter-exec. The command tokens are joined with
// spaces into one quoted argument.
type InterpreterExec struct {
	// Interpreter defaults to "console".
	Interpreter string
	Command     []string
}

func (InterpreterExec) Operation() string { return "interpreter-exec" }

func (c InterpreterExec) Args() []string {
	interp := c.Interpreter
	if interp == "" {
		interp = "console"
	}
	return []string{interp, Quote(strings.Join(c.Command, " "))}
}

// TargetSelect is -target-select.
type TargetSelect struct {
	// Type is the target type: exec, remote, extended-remote, core, ...
	Type   string
	Params []string
}

// TargetSelectExec selects an executable file as the target.
func TargetSelectExec(path string) TargetSelect {
	return TargetSelect{Type: "exec", Params: []string{path}}
}

// TargetSelectRemote selects a remote target over TCP.
func TargetSelectRemote(host string, port int) TargetSelect {
	return TargetSelect{Type: "remote", Params: []string{"tcp:" + net.JoinHostPort(host, strconv.Itoa(port))}}
}

func (TargetSelect) Operation() string { return "target-select" }

func (c TargetSelect) Args() []string {
	args := []string{c.Type}
	for _, p := range c.Params {
		args = append(args, QuoteIfNeeded(p))
	}
	return args
}

// DataEvaluateExpression is -data-evaluate-expression.
type DataEvaluateExpression struct {
	Expression string
}

func (DataEvaluateExpression) Operation() string { return "data-evaluate-expression" }

func (c DataEvaluateExpression) Args() []string {
	return []string{QuoteIfNeeded(c.Expression)}
}

// StackListFrames is -stack-list-frames. Low and High bound the frame
// range when Ranged is set.
type StackListFrames struct {
	NoFrameFilters bool
	Ranged         bool
	Low            int
	High           int
}

func (StackListFrames) Operation() string { return "stack-list-frames" }

func (c StackListFrames) Args() []string {
	var args []string
	if c.NoFrameFilters {
		args = append(args, "--no-frame-filters")
	}
	if c.Ranged {
		args = append(args, strconv.Itoa(c.Low), strconv.Itoa(c.High))
	}
	return args
}

// ThreadInfo is -thread-info. A zero ThreadID lists every thread.
type ThreadInfo struct {
	ThreadID int
}

func (ThreadInfo) Operation() string { return "thread-info" }

func (c ThreadInfo) Args() []string {
	if c.ThreadID > 0 {
		return []string{strconv.Itoa(c.ThreadID)}
	}
	return nil
}

// ListFeatures is -list-features.
type ListFeatures struct{}

func (ListFeatures) Operation() string { return "list-features" }

func (ListFeatures) Args() []string { return nil }

func reverseFlag(reverse bool) []string {
	if reverse {
		return []string{"--reverse"}
	}
	return nil
}

func optional(s string) []string {
	if s == "" {
		return nil
	}
	return []string{QuoteIfNeeded(s)}
}

func itoaAll(ns []int) []string {
	if len(ns) == 0 {
		return nil
	}
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = strconv.Itoa(n)
	}
	return out
}
