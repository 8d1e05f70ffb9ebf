package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingOrderAndLookup(t *testing.T) {
	m := NewMapping()
	m.Put("b", 1).Put("a", 2).Put("c", 3)

	var keys []Value
	m.Range(func(k, v Value) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []Value{"b", "a", "c"}, keys)

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	// 更新已存在的键保留原位置。
	m.Put("a", 20)
	assert.Equal(t, 3, m.Len())
	pairs := m.Pairs()
	assert.Equal(t, "a", pairs[1].Key)
	assert.Equal(t, 20, pairs[1].Value)
}

func TestMappingContainerKeys(t *testing.T) {
	m := NewMapping()
	m.Put(Sequence{1, 2}, "pair")
	v, ok := m.Get(Sequence{1, 2})
	require.True(t, ok)
	assert.Equal(t, "pair", v)

	_, ok = m.Get(Sequence{2, 1})
	assert.False(t, ok)
}

func TestSetUniquenessAndCanonicalOrder(t *testing.T) {
	s := NewSet(3, 1, 2, 1, 3)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))

	// 插入顺序保留。
	assert.Equal(t, []Value{3, 1, 2}, s.Members())
	// 规范顺序确定。
	assert.Equal(t, []Value{1, 2, 3}, s.Canonical())
}

func TestSetNestedMembers(t *testing.T) {
	s := NewSet()
	s.Insert(Sequence{1, 2})
	s.Insert(Sequence{1, 2})
	s.Insert(Sequence{2, 1})
	assert.Equal(t, 2, s.Len())
}

func TestCanonicalKeyNumericWidths(t *testing.T) {
	// 不同位宽的同一数值产生相同规范键。
	assert.Equal(t, CanonicalKey(int32(3)), CanonicalKey(int64(3)))
	assert.Equal(t, CanonicalKey(3), CanonicalKey(float64(3)))
	assert.NotEqual(t, CanonicalKey(3), CanonicalKey("3"))
	assert.NotEqual(t, CanonicalKey(nil), CanonicalKey(false))
}

func TestCanonicalKeyMappingOrderInsensitive(t *testing.T) {
	m1 := NewMapping().Put("a", 1).Put("b", 2)
	m2 := NewMapping().Put("b", 2).Put("a", 1)
	assert.Equal(t, CanonicalKey(m1), CanonicalKey(m2))
}

func TestValidate(t *testing.T) {
	ok := NewMapping().
		Put("a", 1).
		Put("b", Sequence{1, "x", true, nil}).
		Put("c", NewSet(1, 2))
	assert.NoError(t, Validate(ok))
	assert.NoError(t, Validate(int8(1)))
	assert.NoError(t, Validate(uint64(1)))
	assert.NoError(t, Validate(float32(1.5)))

	type opaque struct{ X int }
	assert.Error(t, Validate(opaque{1}))
	assert.Error(t, Validate(Sequence{1, opaque{1}}))
	assert.Error(t, Validate(NewMapping().Put("k", opaque{1})))
}

func TestMarshalJSONMapping(t *testing.T) {
	m := NewMapping().Put("b", 1).Put("a", Sequence{1, 2})
	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":[1,2]}`, string(data))
}

func TestMarshalJSONScalarKeys(t *testing.T) {
	m := NewMapping().Put(0, "zero").Put(true, "yes")
	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"0":"zero","true":"yes"}`, string(data))

	_, err = NewMapping().Put(Sequence{1}, "x").MarshalJSON()
	assert.Error(t, err)
}

func TestMarshalJSONSet(t *testing.T) {
	data, err := NewSet(2, 1, 3).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(data))
}
