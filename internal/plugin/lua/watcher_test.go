package lua

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/gdbmi/internal/mi"
)

type reloadResult struct {
	path string
	err  error
}

func newTestWatcher(t *testing.T) (*Watcher, chan reloadResult) {
	t.Helper()
	results := make(chan reloadResult, 16)
	w, err := NewWatcher(OnReload(func(path string, err error) {
		select {
		case results <- reloadResult{path, err}:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w, results
}

// waitReload waits for a reload attempt whose outcome matches ok.
func waitReload(t *testing.T, results <-chan reloadResult, ok bool) reloadResult {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if (r.err == nil) == ok {
				return r
			}
		case <-timeout:
			t.Fatalf("no reload with success=%v", ok)
		}
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	log, logs := newLogCapture()
	path := scriptPath(t, `function on_message(msg) gdb.log("v1") end`)
	h, err := NewScriptHandler(path, WithLogger(log))
	if err != nil {
		t.Fatalf("NewScriptHandler() error = %v", err)
	}
	defer h.Close()

	w, results := newTestWatcher(t)
	if err := w.Add(h); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	writeScript(t, path, `function on_message(msg) gdb.log("v2") end`)
	r := waitReload(t, results, true)
	if r.path != h.Path() {
		t.Errorf("reloaded %s, want %s", r.path, h.Path())
	}

	h.Handle(nil, &mi.StringMessage{Kind: mi.KindPrompt})
	if logs.count(`"msg"="v2"`) != 1 {
		t.Error("new script not running after reload")
	}
}

func TestWatcherKeepsScriptOnFailedReload(t *testing.T) {
	log, logs := newLogCapture()
	path := scriptPath(t, `function on_message(msg) gdb.log("v1") end`)
	h, err := NewScriptHandler(path, WithLogger(log))
	if err != nil {
		t.Fatalf("NewScriptHandler() error = %v", err)
	}
	defer h.Close()

	w, results := newTestWatcher(t)
	if err := w.Add(h); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	writeScript(t, path, `function on_message(msg`)
	waitReload(t, results, false)

	h.Handle(nil, &mi.StringMessage{Kind: mi.KindPrompt})
	if logs.count(`"msg"="v1"`) != 1 {
		t.Error("previous script not kept after failed reload")
	}
}

func TestWatcherClose(t *testing.T) {
	h, err := NewScriptHandler(scriptPath(t, `function on_message(msg) end`))
	if err != nil {
		t.Fatalf("NewScriptHandler() error = %v", err)
	}
	defer h.Close()

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Add(h); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Add() after Close error = %v, want ErrWatcherClosed", err)
	}
}
