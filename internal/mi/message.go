package mi

import (
	"fmt"
	"strconv"
)

// Kind is the type of an MI output message. It is determined solely by the
// first character after the optional context prefix.
type Kind int

const (
	// KindResult is a "^" result record answering a command.
	KindResult Kind = iota
	// KindLog is a "&" log stream message.
	KindLog
	// KindConsole is a "~" console stream message.
	KindConsole
	// KindTarget is a "@" target output stream message.
	KindTarget
	// KindExecute is a "*" exec async record.
	KindExecute
	// KindNotify is a "=" notify async record.
	KindNotify
	// KindStatus is a "+" status async record.
	KindStatus
	// KindPrompt is the "(gdb)" prompt banner.
	KindPrompt
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindLog:
		return "log"
	case KindConsole:
		return "console"
	case KindTarget:
		return "target"
	case KindExecute:
		return "execute"
	case KindNotify:
		return "notify"
	case KindStatus:
		return "status"
	case KindPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// IsRecord reports whether messages of this kind carry a Record.
func (k Kind) IsRecord() bool {
	switch k {
	case KindResult, KindExecute, KindNotify, KindStatus:
		return true
	default:
		return false
	}
}

// Prefix returns the wire character that introduces the kind.
func (k Kind) Prefix() byte {
	switch k {
	case KindResult:
		return '^'
	case KindLog:
		return '&'
	case KindConsole:
		return '~'
	case KindTarget:
		return '@'
	case KindExecute:
		return '*'
	case KindNotify:
		return '='
	case KindStatus:
		return '+'
	case KindPrompt:
		return '('
	default:
		return 0
	}
}

// Context is the optional decimal prefix correlating a command with its
// result. The zero value means "absent".
type Context struct {
	Value int
	Valid bool
}

// NoContext is the absent context.
var NoContext = Context{}

// Some returns a present context.
func Some(n int) Context {
	return Context{Value: n, Valid: true}
}

// String renders the context as it appears on the wire: a decimal number,
// or the empty string when absent.
func (c Context) String() string {
	if !c.Valid {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// Message is a parsed MI output message: *StringMessage or *RecordMessage.
type Message interface {
	GetKind() Kind
	GetContext() Context
	String() string
	isMessage()
}

// StringMessage carries the text of a Log, Console, Target or Prompt
// message.
type StringMessage struct {
	Kind    Kind
	Context Context
	Text    string
}

// GetKind implements Message.
func (m *StringMessage) GetKind() Kind { return m.Kind }

// GetContext implements Message.
func (m *StringMessage) GetContext() Context { return m.Context }

func (m *StringMessage) String() string {
	if m.Kind == KindPrompt {
		return "(gdb)"
	}
	return fmt.Sprintf("%s%c%s", m.Context, m.Kind.Prefix(), Encode(String(m.Text)))
}

func (*StringMessage) isMessage() {}

// Record is the payload of a record message.
type Record struct {
	// Class is the token after the type character: done, running,
	// stopped, error, thread-group-added, ...
	Class      string
	Properties Properties
}

// RecordMessage carries the record of a Result, Execute, Notify or Status
// message.
type RecordMessage struct {
	Kind    Kind
	Context Context
	Record  Record
}

// GetKind implements Message.
func (m *RecordMessage) GetKind() Kind { return m.Kind }

// GetContext implements Message.
func (m *RecordMessage) GetContext() Context { return m.Context }

func (m *RecordMessage) String() string {
	s := fmt.Sprintf("%s%c%s", m.Context, m.Kind.Prefix(), m.Record.Class)
	if len(m.Record.Properties) > 0 {
		s += "," + EncodeProperties(m.Record.Properties)
	}
	return s
}

func (*RecordMessage) isMessage() {}
