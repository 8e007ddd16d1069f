//go:build unix

package process

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeDebugger writes an executable shell script standing in for gdb.
func fakeDebugger(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-gdb")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func readAll(t *testing.T, p *Process) string {
	t.Helper()
	var out strings.Builder
	for {
		b, err := p.ReadByte()
		if err == io.EOF {
			return out.String()
		}
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		out.WriteByte(b)
	}
}

func TestOptionsCommandLine(t *testing.T) {
	path, args := Options{}.CommandLine()
	if path != "gdb" {
		t.Errorf("expected default path gdb, got %q", path)
	}
	if len(args) != 1 || args[0] != "--interpreter=mi" {
		t.Errorf("unexpected default args %v", args)
	}

	path, args = Options{
		Path:        "/usr/bin/gdb-multiarch",
		Interpreter: "mi3",
		Quiet:       true,
		NoInit:      true,
		Args:        []string{"--args", "prog", "x"},
	}.CommandLine()
	want := []string{"--interpreter=mi3", "-q", "-nx", "--args", "prog", "x"}
	if path != "/usr/bin/gdb-multiarch" {
		t.Errorf("unexpected path %q", path)
	}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestStartPassesArguments(t *testing.T) {
	script := fakeDebugger(t, `echo "$@"`)

	p, err := Start(Options{Path: script, Quiet: true, Args: []string{"prog"}})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()

	if p.ID == "" {
		t.Error("expected a process ID")
	}
	if got := readAll(t, p); got != "--interpreter=mi -q prog\n" {
		t.Errorf("unexpected output %q", got)
	}
	if !p.Wait(5 * time.Second) {
		t.Fatal("process did not exit")
	}
	if p.State() != StateExited || p.ExitCode() != 0 {
		t.Errorf("state = %v, exit code = %d", p.State(), p.ExitCode())
	}
}

func TestWriteAndRead(t *testing.T) {
	script := fakeDebugger(t, "exec cat")

	p, err := Start(Options{Path: script})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()

	if _, err := p.Write([]byte("1-gdb-exit\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var line bytes.Buffer
	for {
		b, err := p.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		line.WriteByte(b)
		if b == '\n' {
			break
		}
	}
	if line.String() != "1-gdb-exit\n" {
		t.Errorf("echoed %q", line.String())
	}
}

func TestOutputSurvivesExit(t *testing.T) {
	script := fakeDebugger(t, `printf '^done\n(gdb)\n'; exit 3`)

	p, err := Start(Options{Path: script})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()

	if !p.Wait(5 * time.Second) {
		t.Fatal("process did not exit")
	}
	if p.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", p.ExitCode())
	}
	if got := readAll(t, p); got != "^done\n(gdb)\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestTerminateUnblocksReader(t *testing.T) {
	script := fakeDebugger(t, "sleep 60 & wait")

	p, err := Start(Options{Path: script})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var readErr error
	go func() {
		defer wg.Done()
		_, readErr = p.ReadByte()
	}()

	time.Sleep(50 * time.Millisecond)
	if err := p.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	if !p.Wait(5 * time.Second) {
		t.Fatal("process did not exit after Terminate")
	}
	if p.State() != StateKilled {
		t.Errorf("expected StateKilled, got %v", p.State())
	}

	wg.Wait()
	if readErr != io.EOF {
		t.Errorf("expected io.EOF from blocked read, got %v", readErr)
	}

	if err := p.Terminate(); err != nil {
		t.Errorf("second Terminate: %v", err)
	}
}

func TestWaitTimeout(t *testing.T) {
	script := fakeDebugger(t, "exec sleep 60")

	p, err := Start(Options{Path: script})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Terminate()

	if p.Wait(20 * time.Millisecond) {
		t.Error("expected Wait to time out")
	}
	if p.HasExited() {
		t.Error("process should still be running")
	}
}

func TestStartMissingExecutable(t *testing.T) {
	_, err := Start(Options{Path: filepath.Join(t.TempDir(), "no-such-gdb")})
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateRunning: "running",
		StateExited:  "exited",
		StateKilled:  "killed",
		State(99):    "unknown(99)",
	}
	for state, want := range tests {
		if state.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), state.String(), want)
		}
	}
}
