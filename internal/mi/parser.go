package mi

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

const eof = -1

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrict rejects unescaped newlines inside quoted strings.
func WithStrict() ParserOption {
	return func(p *Parser) {
		p.strict = true
	}
}

// Parser reads MI output messages from a byte stream.
//
// The parser keeps a single byte of lookahead inside a message and none
// across messages: after Next returns, the stream is positioned at the
// first byte of the following message. It can therefore be driven directly
// by a live pipe. A Parser is not safe for concurrent use.
type Parser struct {
	r      io.ByteReader
	strict bool

	tok     int
	readErr error
}

// NewParser creates a parser reading from r.
func NewParser(r io.ByteReader, opts ...ParserOption) *Parser {
	p := &Parser{r: r, tok: eof}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next reads one message. It returns io.EOF when the stream ends before
// the first byte of a message. Any other error is fatal for the stream.
func (p *Parser) Next() (Message, error) {
	if p.readErr != nil {
		return nil, p.readErr
	}

	p.advance()
	if p.tok == eof {
		if p.readErr != nil {
			return nil, p.readErr
		}
		return nil, io.EOF
	}

	ctx, err := p.context()
	if err != nil {
		return nil, err
	}

	switch p.tok {
	case eof:
		return nil, p.eofError("message-type")
	case '~':
		return p.finishString(KindConsole, ctx)
	case '@':
		return p.finishString(KindTarget, ctx)
	case '&':
		return p.finishString(KindLog, ctx)
	case '*':
		return p.finishRecord(KindExecute, ctx)
	case '=':
		return p.finishRecord(KindNotify, ctx)
	case '+':
		return p.finishRecord(KindStatus, ctx)
	case '^':
		return p.finishRecord(KindResult, ctx)
	case '(':
		return p.finishPrompt(ctx)
	default:
		return nil, p.unexpected("message-type", "one of ~ @ & * = + ^ (")
	}
}

// advance moves the lookahead to the next byte of the stream.
func (p *Parser) advance() {
	if p.readErr != nil {
		p.tok = eof
		return
	}
	b, err := p.r.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.readErr = &ReadError{Err: err}
		}
		p.tok = eof
		return
	}
	p.tok = int(b)
}

func (p *Parser) context() (Context, error) {
	if !isDigit(p.tok) {
		return NoContext, nil
	}

	var digits strings.Builder
	for isDigit(p.tok) {
		digits.WriteByte(byte(p.tok))
		p.advance()
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return NoContext, &UnexpectedTokenError{
			Production: "context",
			Expected:   "a decimal context that fits an int",
			Actual:     digits.String()[digits.Len()-1],
		}
	}
	return Some(n), nil
}

func (p *Parser) finishString(kind Kind, ctx Context) (Message, error) {
	p.advance()

	var (
		text string
		err  error
	)
	if p.tok == '"' {
		text, err = p.quoted()
		if err != nil {
			return nil, err
		}
	} else {
		text = p.simple()
	}

	p.skipLine()
	return &StringMessage{Kind: kind, Context: ctx, Text: text}, nil
}

func (p *Parser) finishRecord(kind Kind, ctx Context) (Message, error) {
	p.advance()

	class := p.simple()
	props := Properties{}
	if p.tok == ',' {
		p.advance()
		var err error
		props, err = p.properties()
		if err != nil {
			return nil, err
		}
	}

	p.skipLine()
	return &RecordMessage{
		Kind:    kind,
		Context: ctx,
		Record:  Record{Class: class, Properties: props},
	}, nil
}

func (p *Parser) finishPrompt(ctx Context) (Message, error) {
	for _, want := range []byte("gdb)") {
		p.advance()
		if p.tok == eof {
			return nil, p.eofError("prompt")
		}
		if p.tok != int(want) {
			return nil, p.unexpected("prompt", strconv.QuoteRune(rune(want)))
		}
	}

	p.advance()
	p.skipLine()
	return &StringMessage{Kind: KindPrompt, Context: ctx}, nil
}

// properties reads name=value pairs separated by commas. The lookahead is
// the first byte of the first name.
func (p *Parser) properties() (Properties, error) {
	props := Properties{}
	for {
		name := p.simple()
		if p.tok == eof {
			return nil, p.eofError("property-name")
		}
		if p.tok != '=' {
			return nil, p.unexpected("property", "'='")
		}
		p.advance()

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		props[name] = v

		if p.tok != ',' {
			return props, nil
		}
		p.advance()
	}
}

// value reads one value. The lookahead is its first byte.
func (p *Parser) value() (Value, error) {
	switch p.tok {
	case eof:
		return nil, p.eofError("property-value")
	case '{':
		return p.tuple()
	case '[':
		return p.list()
	case '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	default:
		return String(p.simple()), nil
	}
}

func (p *Parser) tuple() (Value, error) {
	p.advance()
	if p.tok == '}' {
		p.advance()
		return Tuple{}, nil
	}

	props, err := p.properties()
	if err != nil {
		return nil, err
	}
	if p.tok == eof {
		return nil, p.eofError("tuple")
	}
	if p.tok != '}' {
		return nil, p.unexpected("tuple", "'}'")
	}
	p.advance()
	return Tuple(props), nil
}

func (p *Parser) list() (Value, error) {
	p.advance()
	if p.tok == ']' {
		p.advance()
		return List{}, nil
	}

	items := List{}
	for {
		v, err := p.element()
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		if p.tok != ',' {
			break
		}
		p.advance()
	}

	if p.tok == eof {
		return nil, p.eofError("list")
	}
	if p.tok != ']' {
		return nil, p.unexpected("list", "']'")
	}
	p.advance()
	return items, nil
}

// element reads a list element. gdb writes some lists as results
// (stack=[frame={...},frame={...}]); such an element becomes a one-entry
// tuple.
func (p *Parser) element() (Value, error) {
	if !isNameByte(p.tok) {
		return p.value()
	}

	s := p.simple()
	if p.tok != '=' {
		return String(s), nil
	}
	p.advance()

	v, err := p.value()
	if err != nil {
		return nil, err
	}
	return Tuple{s: v}, nil
}

// quoted reads a C string. The lookahead is the opening quote; on return it
// is the byte after the closing quote.
func (p *Parser) quoted() (string, error) {
	var b strings.Builder
	for {
		p.advance()
		switch p.tok {
		case eof:
			return "", p.eofError("quoted-string")
		case '"':
			p.advance()
			return b.String(), nil
		case '\\':
			p.advance()
			if p.tok == eof {
				return "", p.eofError("escape-sequence")
			}
		case '\n':
			if p.strict {
				return "", p.unexpected("quoted-string", "closing '\"'")
			}
		}
		b.WriteByte(byte(p.tok))
	}
}

// simple reads a possibly empty run of name bytes.
func (p *Parser) simple() string {
	var b strings.Builder
	for isNameByte(p.tok) {
		b.WriteByte(byte(p.tok))
		p.advance()
	}
	return b.String()
}

// skipLine discards input through the next newline or end of stream.
func (p *Parser) skipLine() {
	for p.tok != eof && p.tok != '\n' {
		p.advance()
	}
}

func (p *Parser) unexpected(production, expected string) error {
	return &UnexpectedTokenError{Production: production, Expected: expected, Actual: byte(p.tok)}
}

func (p *Parser) eofError(production string) error {
	if p.readErr != nil {
		return p.readErr
	}
	return &UnexpectedEOFError{Production: production}
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

func isNameByte(c int) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || isDigit(c) || c == '-' || c == '_'
}

// ParseMessage parses a single message from s.
func ParseMessage(s string) (Message, error) {
	return NewParser(strings.NewReader(s)).Next()
}

// ParseValue parses s as one complete value in wire form.
func ParseValue(s string) (Value, error) {
	p := NewParser(strings.NewReader(s))
	p.advance()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if p.tok != eof {
		return nil, p.unexpected("value", "end of input")
	}
	return v, nil
}
