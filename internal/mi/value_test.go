package mi

import (
	"errors"
	"testing"
)

func testProperties(t *testing.T) Properties {
	t.Helper()
	msg, err := ParseMessage(`*stopped,reason="breakpoint-hit",frame={func="main",args=[]},thread-ids=["1","2"]` + "\n")
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	return msg.(*RecordMessage).Record.Properties
}

func TestPropertiesAccessors(t *testing.T) {
	props := testProperties(t)

	reason, err := props.String("reason")
	if err != nil || reason != "breakpoint-hit" {
		t.Errorf("String(reason) = %q, %v", reason, err)
	}

	frame, err := props.Tuple("frame")
	if err != nil {
		t.Fatalf("Tuple(frame): %v", err)
	}
	if fn := frame.StringOr("func", "?"); fn != "main" {
		t.Errorf("frame func = %q, want main", fn)
	}

	ids, err := props.List("thread-ids")
	if err != nil {
		t.Fatalf("List(thread-ids): %v", err)
	}
	if second, err := ids.String(1); err != nil || second != "2" {
		t.Errorf("ids[1] = %q, %v", second, err)
	}

	if !props.Has("frame") || props.Has("missing") {
		t.Error("Has returned wrong result")
	}

	names := props.Names()
	want := []string{"frame", "reason", "thread-ids"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestPropertiesTypeMismatch(t *testing.T) {
	props := testProperties(t)

	tests := []struct {
		name string
		call func() error
		want ValueType
		got  ValueType
	}{
		{"string on tuple", func() error { _, err := props.String("frame"); return err }, TypeString, TypeTuple},
		{"tuple on string", func() error { _, err := props.Tuple("reason"); return err }, TypeTuple, TypeString},
		{"list on tuple", func() error { _, err := props.List("frame"); return err }, TypeList, TypeTuple},
		{"tuple on list", func() error { _, err := props.Tuple("thread-ids"); return err }, TypeTuple, TypeList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("expected ErrTypeMismatch, got %v", err)
			}
			var mismatch *TypeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected *TypeMismatchError, got %T", err)
			}
			if mismatch.Want != tt.want || mismatch.Got != tt.got {
				t.Errorf("mismatch = want %s got %s, expected want %s got %s",
					mismatch.Want, mismatch.Got, tt.want, tt.got)
			}
		})
	}
}

func TestPropertiesMissing(t *testing.T) {
	props := testProperties(t)

	if _, err := props.String("nope"); !errors.Is(err, ErrPropertyNotFound) {
		t.Errorf("expected ErrPropertyNotFound, got %v", err)
	}
	if got := props.StringOr("nope", "fallback"); got != "fallback" {
		t.Errorf("StringOr = %q, want fallback", got)
	}
	if got := props.StringOr("frame", "fallback"); got != "fallback" {
		t.Errorf("StringOr on tuple = %q, want fallback", got)
	}
}

func TestListAccessors(t *testing.T) {
	l := List{String("a"), Tuple{"x": String("1")}, List{}}

	if _, err := l.Get(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(3): expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := l.Get(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(-1): expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := l.String(1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("String(1): expected ErrTypeMismatch, got %v", err)
	}
	if tup, err := l.Tuple(1); err != nil || tup.StringOr("x", "") != "1" {
		t.Errorf("Tuple(1) = %v, %v", tup, err)
	}
	if inner, err := l.List(2); err != nil || len(inner) != 0 {
		t.Errorf("List(2) = %v, %v", inner, err)
	}
	if _, err := l.List(0); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("List(0): expected ErrTypeMismatch, got %v", err)
	}
}

func TestAsHelpers(t *testing.T) {
	if s, err := AsString(String("x")); err != nil || s != "x" {
		t.Errorf("AsString = %q, %v", s, err)
	}
	if _, err := AsTuple(String("x")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("AsTuple on string: %v", err)
	}
	if _, err := AsList(Tuple{}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("AsList on tuple: %v", err)
	}
	if _, err := AsString(nil); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("AsString(nil): %v", err)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		kind   Kind
		name   string
		prefix byte
	}{
		{KindResult, "result", '^'},
		{KindLog, "log", '&'},
		{KindConsole, "console", '~'},
		{KindTarget, "target", '@'},
		{KindExecute, "execute", '*'},
		{KindNotify, "notify", '='},
		{KindStatus, "status", '+'},
		{KindPrompt, "prompt", '('},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name {
			t.Errorf("%d.String() = %q, want %q", tt.kind, tt.kind.String(), tt.name)
		}
		if tt.kind.Prefix() != tt.prefix {
			t.Errorf("%s.Prefix() = %q, want %q", tt.kind, tt.kind.Prefix(), tt.prefix)
		}
	}
}
