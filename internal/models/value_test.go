package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObject_RejectsDuplicateKeys(t *testing.T) {
	_, err := NewObject(
		Member{Key: "a", Value: NewNumber(1)},
		Member{Key: "a", Value: NewNumber(2)},
	)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate object key "a"`)
}

func TestNewObject_PreservesInsertionOrder(t *testing.T) {
	v, err := NewObject(
		Member{Key: "zebra", Value: NewNumber(1)},
		Member{Key: "apple", Value: NewNumber(2)},
		Member{Key: "mango", Value: NewNumber(3)},
	)
	require.NoError(t, err)

	keys := make([]string, 0, v.Len())
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"zebra", "apple", "mango"}, keys)
}

func TestEqual_Scalars(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null equals null", NewNull(), NewNull(), true},
		{"bool equal", NewBool(true), NewBool(true), true},
		{"bool unequal", NewBool(true), NewBool(false), false},
		{"number exact equality", NewNumber(1.5), NewNumber(1.5), true},
		{"number no epsilon tolerance", NewNumber(1.5), NewNumber(1.5000001), false},
		{"negative zero equals zero", NewNumber(0), NewNumber(negZero()), true},
		{"string byte-for-byte", NewString("héllo"), NewString("héllo"), true},
		{"string unequal", NewString("a"), NewString("b"), false},
		{"different kinds never equal", NewNumber(1), NewString("1"), false},
		{"null is not false", NewNull(), NewBool(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestEqual_ObjectsIgnoreMemberOrder(t *testing.T) {
	a := MustObject(
		Member{Key: "x", Value: NewNumber(1)},
		Member{Key: "y", Value: NewNumber(2)},
	)
	b := MustObject(
		Member{Key: "y", Value: NewNumber(2)},
		Member{Key: "x", Value: NewNumber(1)},
	)
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
}

func TestEqual_ArraysAreOrderSensitive(t *testing.T) {
	a := NewArray(NewNumber(1), NewNumber(2))
	b := NewArray(NewNumber(2), NewNumber(1))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(NewArray(NewNumber(1), NewNumber(2))))
}

func TestClone_IsDeepAndEqual(t *testing.T) {
	original := MustObject(
		Member{Key: "items", Value: NewArray(NewNumber(1), NewString("two"))},
		Member{Key: "nested", Value: MustObject(Member{Key: "ok", Value: NewBool(true)})},
	)

	clone := original.Clone()
	require.True(t, clone.Equal(original))

	// mutating the clone's backing slices must not touch the original
	clone.Members()[0] = Member{Key: "items", Value: NewNull()}
	items, ok := original.Get("items")
	require.True(t, ok)
	assert.Equal(t, KindArray, items.Kind())
}

func TestMarshalJSON_PreservesOrder(t *testing.T) {
	v := MustObject(
		Member{Key: "b", Value: NewNumber(1)},
		Member{Key: "a", Value: NewArray(NewBool(false), NewNull())},
		Member{Key: "s", Value: NewString("x\"y")},
	)
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[false,null],"s":"x\"y"}`, string(out))
}

func TestGet_MissingKey(t *testing.T) {
	v := MustObject(Member{Key: "a", Value: NewNumber(1)})
	_, ok := v.Get("b")
	assert.False(t, ok)
}

func TestDiffSummary_Total(t *testing.T) {
	s := DiffSummary{Added: 1, Removed: 2, Modified: 3}
	assert.Equal(t, uint32(6), s.Total())
}

func TestParseResult_Clone(t *testing.T) {
	val := NewArray(NewNumber(1))
	res := ParseResult{Value: &val}
	clone := res.Clone()
	require.NotNil(t, clone.Value)
	assert.True(t, clone.Value.Equal(val))
	assert.True(t, clone.Ok())

	errRes := ParseResult{Err: &ParseError{Message: "boom", Offset: 3, Line: 1, Column: 4}}
	errClone := errRes.Clone()
	require.NotNil(t, errClone.Err)
	assert.False(t, errClone.Ok())
	assert.Equal(t, "line 1, column 4: boom", errClone.Err.Error())
}
