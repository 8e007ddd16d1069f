// Package command serializes gdb MI input commands.
//
// A command line on the wire is
//
//	[context]-operation[ arg]...\n
//
// Each typed command in this package renders its own flags and positional
// parameters; Raw carries anything else.
package command

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/gdbmi/internal/mi"
)

// ErrInvalidCommand indicates a command that cannot be framed as one line.
var ErrInvalidCommand = errors.New("command: invalid command")

// Command is an MI input command.
type Command interface {
	// Operation returns the command name without the leading '-'.
	Operation() string
	// Args returns the arguments as wire tokens, already quoted.
	Args() []string
}

// Encode renders c as a complete wire line for the given context. An absent
// context renders as an empty prefix.
//
// Only structure is checked: the operation must be a non-empty token and no
// argument may contain a line break.
func Encode(ctx mi.Context, c Command) ([]byte, error) {
	op := c.Operation()
	if op == "" || strings.ContainsAny(op, " \t\r\n") {
		return nil, fmt.Errorf("%w: operation %q", ErrInvalidCommand, op)
	}

	var b strings.Builder
	b.WriteString(ctx.String())
	b.WriteByte('-')
	b.WriteString(op)
	for _, arg := range c.Args() {
		if strings.ContainsAny(arg, "\r\n") {
			return nil, fmt.Errorf("%w: argument %q of %s contains a line break", ErrInvalidCommand, arg, op)
		}
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// Write encodes c and writes it to w in a single call.
func Write(w io.Writer, ctx mi.Context, c Command) error {
	line, err := Encode(ctx, c)
	if err != nil {
		return err
	}
	_, err = w.Write(line)
	return err
}

// String renders c without a context and without the trailing newline.
func String(c Command) string {
	line, err := Encode(mi.NoContext, c)
	if err != nil {
		return "-" + c.Operation()
	}
	return strings.TrimSuffix(string(line), "\n")
}

// Quote returns s as a C string token. Line breaks and tabs are written as
// escape sequences so the token stays on one line.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// QuoteIfNeeded quotes s when it is empty or contains whitespace or a
// double quote, and returns it unchanged otherwise.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n\"") {
		return Quote(s)
	}
	return s
}

// Raw is an arbitrary command. Arguments are written as given.
type Raw struct {
	Op        string
	Arguments []string
}

// Operation implements Command.
func (r Raw) Operation() string { return strings.TrimPrefix(r.Op, "-") }

// Args implements Command.
func (r Raw) Args() []string { return r.Arguments }

// ParseLine splits a command line as a user would type it, such as
// `-break-insert -f "foo.c:12"`, into a Raw command. Double quoted groups
// stay one token and keep their quotes; the leading '-' is optional.
func ParseLine(line string) (Raw, error) {
	tokens, err := tokenize(strings.TrimSpace(line))
	if err != nil {
		return Raw{}, err
	}
	if len(tokens) == 0 {
		return Raw{}, fmt.Errorf("%w: empty command line", ErrInvalidCommand)
	}
	op := strings.TrimPrefix(tokens[0], "-")
	if op == "" || strings.HasPrefix(op, `"`) {
		return Raw{}, fmt.Errorf("%w: bad operation %q", ErrInvalidCommand, tokens[0])
	}
	return Raw{Op: op, Arguments: tokens[1:]}, nil
}

func tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
		escaped bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			current.WriteByte(c)
			escaped = false
		case inQuote && c == '\\':
			current.WriteByte(c)
			escaped = true
		case c == '"':
			current.WriteByte(c)
			inQuote = !inQuote
		case !inQuote && (c == ' ' || c == '\t'):
			flush()
		case c == '\n' || c == '\r':
			return nil, fmt.Errorf("%w: line break in command line", ErrInvalidCommand)
		default:
			current.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidCommand)
	}
	flush()
	return tokens, nil
}
