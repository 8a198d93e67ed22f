// Package models defines the canonical value tree produced by parsing and
// the result types exchanged between the orchestrator and the worker.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Member is a single object member. Objects are ordered sequences of members,
// not maps, so insertion order survives a parse/serialize round trip.
type Member struct {
	Key   string
	Value Value
}

// Value is a tagged union covering the structured-value model: null, bool,
// number (float64), string, array, and object with ordered members.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	a    []Value
	o    []Member
}

// NewNull returns the null value.
func NewNull() Value { return Value{kind: KindNull} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewNumber returns a numeric value. All numbers are IEEE 754 doubles;
// integers beyond 2^53 lose precision, which is a documented limitation.
func NewNumber(n float64) Value { return Value{kind: KindNumber, n: n} }

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewArray returns an array value holding elems in order.
func NewArray(elems ...Value) Value { return Value{kind: KindArray, a: elems} }

// NewObject returns an object value holding members in order. Key uniqueness
// is enforced here, at construction, rather than relied upon implicitly.
func NewObject(members ...Member) (Value, error) {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, dup := seen[m.Key]; dup {
			return Value{}, fmt.Errorf("duplicate object key %q", m.Key)
		}
		seen[m.Key] = struct{}{}
	}
	return Value{kind: KindObject, o: members}, nil
}

// MustObject is NewObject that panics on duplicate keys. Intended for
// literals in tests and fixtures.
func MustObject(members ...Member) Value {
	v, err := NewObject(members...)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind reports which variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload. Valid only for KindNumber.
func (v Value) Number() float64 { return v.n }

// Text returns the string payload. Valid only for KindString.
func (v Value) Text() string { return v.s }

// Len returns the element count for arrays and the member count for objects,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.a)
	case KindObject:
		return len(v.o)
	default:
		return 0
	}
}

// Index returns the i'th array element. Valid only for KindArray.
func (v Value) Index(i int) Value { return v.a[i] }

// Elements returns the array elements. Callers must not mutate the slice.
func (v Value) Elements() []Value { return v.a }

// Members returns the object members in insertion order. Callers must not
// mutate the slice.
func (v Value) Members() []Member { return v.o }

// Get looks up an object member by key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports full structural equality. Numbers compare with exact
// floating-point equality, strings byte-for-byte. Object comparison is
// independent of member order; array comparison is not.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.a) != len(o.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(o.a[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.o) != len(o.o) {
			return false
		}
		// keys are unique within a level, so equal length plus per-key
		// lookup gives order-independent equality
		for _, m := range v.o {
			ov, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy sharing no slices with the receiver. Every value
// crossing the worker boundary travels as a clone.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		a := make([]Value, len(v.a))
		for i := range v.a {
			a[i] = v.a[i].Clone()
		}
		return Value{kind: KindArray, a: a}
	case KindObject:
		o := make([]Member, len(v.o))
		for i, m := range v.o {
			o[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
		return Value{kind: KindObject, o: o}
	default:
		return v
	}
}

// MarshalJSON serializes the value, preserving object member order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		b, err := json.Marshal(v.n)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.a {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.o {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
