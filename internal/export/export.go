// Package export renders MI messages as JSON documents.
//
// A record message becomes
//
//	{"kind":"result","context":3,"class":"done","properties":{"value":"42"}}
//
// and a stream message
//
//	{"kind":"console","text":"hello\n"}
//
// Tuples are objects and lists are arrays. The context key is omitted when
// the message has none.
package export

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/gdbmi/internal/mi"
)

// Message renders m as a single-line JSON document.
func Message(m mi.Message) (string, error) {
	doc, err := sjson.Set("{}", "kind", m.GetKind().String())
	if err != nil {
		return "", err
	}
	if ctx := m.GetContext(); ctx.Valid {
		if doc, err = sjson.Set(doc, "context", ctx.Value); err != nil {
			return "", err
		}
	}

	switch m := m.(type) {
	case *mi.StringMessage:
		return sjson.Set(doc, "text", m.Text)
	case *mi.RecordMessage:
		if doc, err = sjson.Set(doc, "class", m.Record.Class); err != nil {
			return "", err
		}
		return setValue(doc, "properties", mi.Tuple(m.Record.Properties))
	}
	return doc, nil
}

// Value renders v as JSON.
func Value(v mi.Value) (string, error) {
	doc, err := setValue("{}", "v", v)
	if err != nil {
		return "", err
	}
	return gjson.Get(doc, "v").Raw, nil
}

// Indent pretty-prints a JSON document.
func Indent(doc string) string {
	return string(pretty.Pretty([]byte(doc)))
}

func setValue(doc, path string, v mi.Value) (string, error) {
	var err error
	switch v := v.(type) {
	case mi.String:
		return sjson.Set(doc, path, string(v))
	case mi.Tuple:
		if doc, err = sjson.SetRaw(doc, path, "{}"); err != nil {
			return "", err
		}
		for _, name := range mi.Properties(v).Names() {
			if doc, err = setValue(doc, path+"."+escape(name), v[name]); err != nil {
				return "", err
			}
		}
		return doc, nil
	case mi.List:
		if doc, err = sjson.SetRaw(doc, path, "[]"); err != nil {
			return "", err
		}
		for i, item := range v {
			if doc, err = setValue(doc, path+"."+strconv.Itoa(i), item); err != nil {
				return "", err
			}
		}
		return doc, nil
	default:
		return sjson.SetRaw(doc, path, "null")
	}
}

// escape quotes every byte of name that sjson would read as path syntax.
func escape(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
