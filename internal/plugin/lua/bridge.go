package lua

import (
	"github.com/dshills/gdbmi/internal/mi"
	lua "github.com/yuin/gopher-lua"
)

// ValueToLua converts an MI value: strings become Lua strings, tuples
// become tables keyed by name and lists become 1-based arrays.
func ValueToLua(L *lua.LState, v mi.Value) lua.LValue {
	switch v := v.(type) {
	case mi.String:
		return lua.LString(v)
	case mi.Tuple:
		return propertiesToTable(L, mi.Properties(v))
	case mi.List:
		tbl := L.CreateTable(len(v), 0)
		for _, item := range v {
			tbl.Append(ValueToLua(L, item))
		}
		return tbl
	default:
		return lua.LNil
	}
}

func propertiesToTable(L *lua.LState, p mi.Properties) *lua.LTable {
	tbl := L.CreateTable(0, len(p))
	for name, v := range p {
		tbl.RawSetString(name, ValueToLua(L, v))
	}
	return tbl
}

// MessageToTable converts a message to the table handed to on_message:
//
//	kind        "console", "target", "log", "prompt", "result", "execute",
//	            "notify" or "status"
//	context     number, or nil when absent
//	line        the message in wire form
//	text        stream messages only
//	class       records only
//	properties  records only
func MessageToTable(L *lua.LState, m mi.Message) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(m.GetKind().String()))
	if ctx := m.GetContext(); ctx.Valid {
		tbl.RawSetString("context", lua.LNumber(ctx.Value))
	}
	tbl.RawSetString("line", lua.LString(m.String()))

	switch m := m.(type) {
	case *mi.StringMessage:
		tbl.RawSetString("text", lua.LString(m.Text))
	case *mi.RecordMessage:
		tbl.RawSetString("class", lua.LString(m.Record.Class))
		tbl.RawSetString("properties", propertiesToTable(L, m.Record.Properties))
	}
	return tbl
}

// ToGoValue converts a Lua value returned by a script to a Go value.
// Tables become map[string]any, or []any when they are arrays; cycles and
// functions become nil.
func ToGoValue(lv lua.LValue) any {
	return toGoValue(lv, make(map[*lua.LTable]bool))
}

func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)

		if n := v.Len(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(v.RawGetInt(i), visited))
			}
			return arr
		}
		m := make(map[string]any)
		v.ForEach(func(key, val lua.LValue) {
			m[key.String()] = toGoValue(val, visited)
		})
		return m
	default:
		return nil
	}
}
