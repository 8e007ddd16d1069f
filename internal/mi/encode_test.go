package mi

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{String("plain"), `"plain"`},
		{String(`say "hi" \o/`), `"say \"hi\" \\o/"`},
		{Tuple{}, `{}`},
		{List{}, `[]`},
		{Tuple{"b": String("2"), "a": String("1")}, `{a="1",b="2"}`},
		{List{String("x"), Tuple{"k": List{}}}, `["x",{k=[]}]`},
	}

	for _, tt := range tests {
		if got := Encode(tt.value); got != tt.want {
			t.Errorf("Encode(%#v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestMessageString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"7^done,value=\"42\"\n", `7^done,value="42"`},
		{"^running\n", `^running`},
		{"~\"say \\\"hi\\\"\"\n", `~"say \"hi\""`},
		{"(gdb) \n", "(gdb)"},
	}

	for _, tt := range tests {
		msg, err := ParseMessage(tt.input)
		if err != nil {
			t.Fatalf("ParseMessage(%q): %v", tt.input, err)
		}
		if got := msg.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// randomValue builds a value tree whose names use only name bytes.
func randomValue(r *rand.Rand, depth int) Value {
	kind := r.Intn(3)
	if depth <= 0 {
		kind = 0
	}
	switch kind {
	case 1:
		n := r.Intn(4)
		t := Tuple{}
		for i := 0; i < n; i++ {
			t[randomName(r)] = randomValue(r, depth-1)
		}
		return t
	case 2:
		n := r.Intn(4)
		l := List{}
		for i := 0; i < n; i++ {
			l = append(l, randomValue(r, depth-1))
		}
		return l
	default:
		return String(randomText(r))
	}
}

func randomName(r *rand.Rand) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz-_0123456789"
	b := make([]byte, 1+r.Intn(8))
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func randomText(r *rand.Rand) string {
	const alphabet = "abc XYZ 019 ,={}[]\"\\\t()^*~"
	b := make([]byte, r.Intn(12))
	for i := range b {
		b[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(b)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		v := randomValue(r, 4)
		encoded := Encode(v)

		got, err := ParseValue(encoded)
		if err != nil {
			t.Fatalf("iteration %d: ParseValue(%s): %v", i, encoded, err)
		}
		if diff := cmp.Diff(v, got); diff != "" {
			t.Fatalf("iteration %d: round trip of %s (-want +got):\n%s", i, encoded, diff)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 200; i++ {
		props := Properties{}
		for j := r.Intn(5); j > 0; j-- {
			props[randomName(r)] = randomValue(r, 3)
		}
		want := &RecordMessage{
			Kind:    KindNotify,
			Context: Some(i),
			Record:  Record{Class: "event", Properties: props},
		}

		got, err := ParseMessage(want.String() + "\n")
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if diff := cmp.Diff(Message(want), got); diff != "" {
			t.Fatalf("iteration %d: %s (-want +got):\n%s", i, want, diff)
		}
	}
}

func ExampleEncode() {
	v := Tuple{"func": String("main"), "line": String("12")}
	fmt.Println(Encode(v))
	// Output: {func="main",line="12"}
}
