package mi

import (
	"fmt"
	"sort"
)

// ValueType identifies the variant stored in a Value.
type ValueType int

const (
	// TypeString is a bare or quoted string.
	TypeString ValueType = iota
	// TypeTuple is a {name=value,...} group.
	TypeTuple
	// TypeList is a [value,...] sequence.
	TypeList
)

// String returns the MI grammar name of the type.
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeTuple:
		return "tuple"
	case TypeList:
		return "list"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Value is a parsed MI value: String, Tuple or List.
type Value interface {
	Type() ValueType
	isValue()
}

// String is a string value.
type String string

// Tuple is a set of named values.
type Tuple Properties

// List is an ordered sequence of values.
type List []Value

// Type implements Value.
func (String) Type() ValueType { return TypeString }

// Type implements Value.
func (Tuple) Type() ValueType { return TypeTuple }

// Type implements Value.
func (List) Type() ValueType { return TypeList }

func (String) isValue() {}
func (Tuple) isValue()  {}
func (List) isValue()   {}

// Properties maps property names to values. Names are unique; the parser
// lets a later duplicate overwrite an earlier one.
type Properties map[string]Value

// Names returns the property names in sorted order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the named property exists.
func (p Properties) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Get returns the named value.
func (p Properties) Get(name string) (Value, error) {
	v, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPropertyNotFound, name)
	}
	return v, nil
}

// String returns the named property as a string.
func (p Properties) String(name string) (string, error) {
	v, err := p.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(String)
	if !ok {
		return "", &TypeMismatchError{Name: name, Want: TypeString, Got: v.Type()}
	}
	return string(s), nil
}

// StringOr returns the named string property, or def when it is missing or
// not a string.
func (p Properties) StringOr(name, def string) string {
	s, err := p.String(name)
	if err != nil {
		return def
	}
	return s
}

// Tuple returns the named property as a tuple.
func (p Properties) Tuple(name string) (Properties, error) {
	v, err := p.Get(name)
	if err != nil {
		return nil, err
	}
	t, ok := v.(Tuple)
	if !ok {
		return nil, &TypeMismatchError{Name: name, Want: TypeTuple, Got: v.Type()}
	}
	return Properties(t), nil
}

// List returns the named property as a list.
func (p Properties) List(name string) (List, error) {
	v, err := p.Get(name)
	if err != nil {
		return nil, err
	}
	l, ok := v.(List)
	if !ok {
		return nil, &TypeMismatchError{Name: name, Want: TypeList, Got: v.Type()}
	}
	return l, nil
}

// Get returns the element at index i.
func (l List) Get(i int) (Value, error) {
	if i < 0 || i >= len(l) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(l))
	}
	return l[i], nil
}

// String returns element i as a string.
func (l List) String(i int) (string, error) {
	v, err := l.Get(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(String)
	if !ok {
		return "", &TypeMismatchError{Name: fmt.Sprintf("[%d]", i), Want: TypeString, Got: v.Type()}
	}
	return string(s), nil
}

// Tuple returns element i as a tuple.
func (l List) Tuple(i int) (Properties, error) {
	v, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	t, ok := v.(Tuple)
	if !ok {
		return nil, &TypeMismatchError{Name: fmt.Sprintf("[%d]", i), Want: TypeTuple, Got: v.Type()}
	}
	return Properties(t), nil
}

// List returns element i as a list.
func (l List) List(i int) (List, error) {
	v, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	inner, ok := v.(List)
	if !ok {
		return nil, &TypeMismatchError{Name: fmt.Sprintf("[%d]", i), Want: TypeList, Got: v.Type()}
	}
	return inner, nil
}

// AsString returns v as a string.
func AsString(v Value) (string, error) {
	s, ok := v.(String)
	if !ok {
		return "", &TypeMismatchError{Want: TypeString, Got: typeOf(v)}
	}
	return string(s), nil
}

// AsTuple returns v as a tuple.
func AsTuple(v Value) (Properties, error) {
	t, ok := v.(Tuple)
	if !ok {
		return nil, &TypeMismatchError{Want: TypeTuple, Got: typeOf(v)}
	}
	return Properties(t), nil
}

// AsList returns v as a list.
func AsList(v Value) (List, error) {
	l, ok := v.(List)
	if !ok {
		return nil, &TypeMismatchError{Want: TypeList, Got: typeOf(v)}
	}
	return l, nil
}

func typeOf(v Value) ValueType {
	if v == nil {
		return -1
	}
	return v.Type()
}
