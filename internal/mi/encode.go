package mi

import "strings"

// Encode renders v in canonical wire form. Strings are always quoted and
// tuple members are sorted by name, so equal values encode identically.
func Encode(v Value) string {
	var b strings.Builder
	encodeValue(&b, v)
	return b.String()
}

// EncodeProperties renders p as comma separated name=value pairs, the form
// used after a record class.
func EncodeProperties(p Properties) string {
	var b strings.Builder
	encodeProperties(&b, p)
	return b.String()
}

// Quote returns s as a C string literal with '"' and '\' escaped.
func Quote(s string) string {
	var b strings.Builder
	quoteTo(&b, s)
	return b.String()
}

func encodeValue(b *strings.Builder, v Value) {
	switch v := v.(type) {
	case String:
		quoteTo(b, string(v))
	case Tuple:
		b.WriteByte('{')
		encodeProperties(b, Properties(v))
		b.WriteByte('}')
	case List:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, item)
		}
		b.WriteByte(']')
	}
}

func encodeProperties(b *strings.Builder, p Properties) {
	for i, name := range p.Names() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(name)
		b.WriteByte('=')
		encodeValue(b, p[name])
	}
}

func quoteTo(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
}
