package lua

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/dshills/gdbmi/internal/gdb"
)

// pipeTransport feeds debugger output through a pipe and records written
// command lines.
type pipeTransport struct {
	pr *io.PipeReader
	pw *io.PipeWriter
	br *bufio.Reader

	mu      sync.Mutex
	written []string

	once   sync.Once
	exited chan struct{}
}

func newPipeTransport() *pipeTransport {
	pr, pw := io.Pipe()
	return &pipeTransport{pr: pr, pw: pw, br: bufio.NewReader(pr), exited: make(chan struct{})}
}

func (p *pipeTransport) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, string(b))
	return len(b), nil
}

func (p *pipeTransport) ReadByte() (byte, error) { return p.br.ReadByte() }

func (p *pipeTransport) Terminate() error {
	p.once.Do(func() {
		_ = p.pw.Close()
		close(p.exited)
	})
	return nil
}

func (p *pipeTransport) Wait(timeout time.Duration) bool {
	select {
	case <-p.exited:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *pipeTransport) emit(t *testing.T, s string) {
	t.Helper()
	if _, err := p.pw.Write([]byte(s)); err != nil {
		t.Fatalf("emit %q: %v", s, err)
	}
}

func (p *pipeTransport) lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.written...)
}

func newTestSession(t *testing.T, opts ...gdb.Option) (*gdb.Session, *pipeTransport) {
	t.Helper()
	tr := newPipeTransport()
	s := gdb.NewSession(tr, opts...)
	t.Cleanup(func() {
		_ = s.Close()
		select {
		case <-s.Done():
		case <-time.After(5 * time.Second):
			t.Error("session reader did not stop")
		}
	})
	return s, tr
}

// logCapture collects formatted log lines.
type logCapture struct {
	mu    sync.Mutex
	lines []string
}

func newLogCapture() (logr.Logger, *logCapture) {
	c := &logCapture{}
	log := funcr.New(func(prefix, args string) {
		c.mu.Lock()
		c.lines = append(c.lines, args)
		c.mu.Unlock()
	}, funcr.Options{})
	return log, c
}

func (c *logCapture) count(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, line := range c.lines {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func (c *logCapture) waitFor(t *testing.T, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.count(substr) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no log line containing %q", substr)
}

func writeScript(t *testing.T, path, code string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func scriptPath(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	writeScript(t, path, code)
	return path
}
