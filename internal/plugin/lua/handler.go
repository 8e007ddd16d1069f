package lua

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gdbmi/internal/gdb"
	"github.com/dshills/gdbmi/internal/mi"
	"github.com/dshills/gdbmi/internal/mi/command"
)

// HandlerFunctionName is the global a script must define.
const HandlerFunctionName = "on_message"

// ScriptHandler is a gdb.Handler backed by a Lua script.
//
// The script's on_message(msg) receives every message as a table built
// by MessageToTable. A script error is logged and does not reach the
// session.
type ScriptHandler struct {
	path    string
	log     logr.Logger
	timeout time.Duration

	mu      sync.Mutex
	state   *State
	session *gdb.Session
}

// HandlerOption configures a ScriptHandler.
type HandlerOption func(*ScriptHandler)

// WithLogger sets the logger for script errors and gdb.log output.
func WithLogger(log logr.Logger) HandlerOption {
	return func(h *ScriptHandler) {
		h.log = log
	}
}

// WithTimeout bounds each on_message call.
func WithTimeout(d time.Duration) HandlerOption {
	return func(h *ScriptHandler) {
		h.timeout = d
	}
}

// NewScriptHandler loads the script at path.
func NewScriptHandler(path string, opts ...HandlerOption) (*ScriptHandler, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	h := &ScriptHandler{
		path:    abs,
		log:     logr.Discard(),
		timeout: DefaultExecutionTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.WithValues("script", filepath.Base(abs))

	st, err := h.load()
	if err != nil {
		return nil, err
	}
	h.state = st
	return h, nil
}

// Path returns the absolute path of the script.
func (h *ScriptHandler) Path() string {
	return h.path
}

// Reload reads the script again. On failure the running script is kept.
func (h *ScriptHandler) Reload() error {
	st, err := h.load()
	if err != nil {
		return err
	}

	h.mu.Lock()
	old := h.state
	h.state = st
	h.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	h.log.Info("script reloaded")
	return nil
}

func (h *ScriptHandler) load() (*State, error) {
	st := NewState(WithExecutionTimeout(h.timeout))
	st.RegisterModule("gdb", h.module())

	if err := st.DoFile(h.path); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("load %s: %w", h.path, err)
	}
	if st.GetGlobal(HandlerFunctionName).Type() != lua.LTFunction {
		_ = st.Close()
		return nil, fmt.Errorf("load %s: %w", h.path, ErrNoHandler)
	}
	return st, nil
}

// Handle implements gdb.Handler.
func (h *ScriptHandler) Handle(s *gdb.Session, msg mi.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == nil {
		return
	}

	h.session = s
	defer func() { h.session = nil }()

	if _, err := h.state.Call(HandlerFunctionName, MessageToTable(h.state.L, msg)); err != nil {
		h.log.Error(err, "on_message failed", "kind", msg.GetKind().String())
	}
}

// Close releases the script's Lua state.
func (h *ScriptHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == nil {
		return nil
	}
	err := h.state.Close()
	h.state = nil
	return err
}

// module returns the functions of the gdb table. They run inside Handle,
// with h.mu held.
func (h *ScriptHandler) module() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"send":       h.luaSend,
		"log":        h.luaLog,
		"session_id": h.luaSessionID,
	}
}

// gdb.send(line) issues a command line and returns its context, or nil
// and an error message.
func (h *ScriptHandler) luaSend(L *lua.LState) int {
	line := L.CheckString(1)

	if h.session == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("no active session"))
		return 2
	}

	c, err := command.ParseLine(line)
	if err == nil {
		var p *gdb.Pending
		if p, err = h.session.Issue(c); err == nil {
			L.Push(lua.LNumber(p.Context()))
			return 1
		}
	}
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

// gdb.log(...) writes its arguments, separated by spaces, at info level.
func (h *ScriptHandler) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.log.Info(strings.Join(parts, " "))
	return 0
}

func (h *ScriptHandler) luaSessionID(L *lua.LState) int {
	if h.session == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(h.session.ID()))
	return 1
}
