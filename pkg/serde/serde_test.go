package serde

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalsmash/yaml-serde/pkg/fs"
	"github.com/mentalsmash/yaml-serde/pkg/serde/format"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
)

func TestScalarRoundTrip(t *testing.T) {
	out, err := YML(42)
	require.NoError(t, err)
	assert.Equal(t, "---\n42\n\n...\n", out)

	back, err := YMLObj[int](out)
	require.NoError(t, err)
	assert.Equal(t, 42, back)

	text, err := YML("hello", WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", text)

	s, err := YMLObj[string](text)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestMapRoundTrip(t *testing.T) {
	v := map[string]any{"a": 1, "b": []any{1, 2, 3}}

	out, err := YML(v)
	require.NoError(t, err)
	assert.Equal(t, "---\na: 1\nb:\n- 1\n- 2\n- 3\n\n...\n", out)

	back, err := YMLObj[map[string]any](out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestJSONRoundTrip(t *testing.T) {
	v := map[string]any{"a": 1, "b": []any{1, 2, 3}}

	out, err := JSON(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[1,2,3]}`, out)

	back, err := JSONObj[map[string]any](out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestNativeMapEncodesSorted(t *testing.T) {
	out, err := YML(map[string]int{"b": 2, "c": 3, "a": 1}, WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "a: 1\nb: 2\nc: 3\n", out)
}

func TestSetRoundTrip(t *testing.T) {
	v := map[int]struct{}{3: {}, 1: {}, 2: {}}

	out, err := YML(v, WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "- 1\n- 2\n- 3\n", out)

	back, err := YMLObj[map[int]struct{}](out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestDeserializeAny(t *testing.T) {
	w, err := YMLObj[any]("---\na: 1\n\n...\n")
	require.NoError(t, err)

	m, ok := w.(*wire.Mapping)
	require.True(t, ok)
	a, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a)
}

// point 通过 StrategyProvider 接入自定义转换。
type point struct {
	X, Y int
}

type pointStrategy struct{}

func (pointStrategy) ToWire(v any, _ *Options) (wire.Value, error) {
	p := v.(point)
	return wire.NewMapping().Put("x", p.X).Put("y", p.Y), nil
}

func (pointStrategy) FromWire(w wire.Value, _ *Options) (any, error) {
	m, ok := w.(*wire.Mapping)
	if !ok {
		return nil, merr.WrapErrWireIncompatible(w, "point")
	}
	x, _ := m.Get("x")
	y, _ := m.Get("y")
	return point{X: x.(int), Y: y.(int)}, nil
}

func (point) WireStrategy() Strategy { return pointStrategy{} }

func TestStrategyProviderRoundTrip(t *testing.T) {
	out, err := YML(point{X: 1, Y: 2})
	require.NoError(t, err)
	// yaml.v2 按 YAML 1.1 处理单字母布尔字面量,键 y 会被加引号。
	assert.Equal(t, "---\nx: 1\n\"y\": 2\n\n...\n", out)

	back, err := YMLObj[point](out)
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: 2}, back)
}

func TestBooleanLikeKeysRoundTrip(t *testing.T) {
	v := map[string]int{"y": 1, "n": 2, "on": 3}

	out, err := YML(v, WithPartial())
	require.NoError(t, err)

	back, err := YMLObj[map[string]int](out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestElemTypedCollection(t *testing.T) {
	v := []point{{X: 1, Y: 2}, {X: 3, Y: 4}}

	out, err := YML(v)
	require.NoError(t, err)

	back, err := YMLObj[[]point](out, Elem[point]())
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestElemTypedMapping(t *testing.T) {
	v := map[string]point{"p": {X: 1, Y: 2}}

	out, err := YML(v)
	require.NoError(t, err)

	back, err := YMLObj[map[string]point](out, Elem[point]())
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

type id int

func TestKeyTypedMapping(t *testing.T) {
	v := map[id]string{1: "one", 2: "two"}

	out, err := YML(v)
	require.NoError(t, err)

	back, err := YMLObj[map[id]string](out, Key[id]())
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestElemOnStringFails(t *testing.T) {
	_, err := YML("abc", Elem[int]())
	assert.ErrorIs(t, err, merr.ErrStrategyElemOnString)
}

func TestElemOnStringAfterPlainResolution(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeOf("")

	_, err := r.ForType(typ, nil)
	require.NoError(t, err)

	// 裸键下的推断缓存不是显式注册,带元素类型的解析仍要报错。
	_, err = r.ForType(typ, &Options{ElemType: reflect.TypeOf(0)})
	assert.ErrorIs(t, err, merr.ErrStrategyElemOnString)

	_, err = YML("abc")
	require.NoError(t, err)
	_, err = YML("abc", Elem[int]())
	assert.ErrorIs(t, err, merr.ErrStrategyElemOnString)
}

func TestUnknownFormat(t *testing.T) {
	_, err := Serialize(1, "msgpack")
	assert.ErrorIs(t, err, merr.ErrFormatNotRegistered)

	_, err = Deserialize[int]("1", "msgpack")
	assert.ErrorIs(t, err, merr.ErrFormatNotRegistered)
}

func TestSafeModeRejectsOpaque(t *testing.T) {
	type opaque struct {
		N int
	}
	_, err := YML(opaque{N: 1})
	assert.ErrorIs(t, err, merr.ErrCodecUnsupportedType)

	out, err := YML(opaque{N: 1}, WithUnsafe(), WithPartial())
	require.NoError(t, err)
	// 键 n 是 YAML 1.1 布尔字面量,emitter 会加引号。
	assert.Equal(t, "\"n\": 1\n", out)
}

// intStack 演示 WireCollection 能力接口。
type intStack struct {
	items []int
}

func (s *intStack) LenElements() int { return len(s.items) }

func (s *intStack) RangeElements(yield func(el any) bool) {
	for _, it := range s.items {
		if !yield(it) {
			return
		}
	}
}

func (s *intStack) FromElements(elements []any) (any, error) {
	out := &intStack{items: make([]int, 0, len(elements))}
	for _, el := range elements {
		n, ok := el.(int)
		if !ok {
			return nil, merr.WrapErrWireIncompatible(el, "int")
		}
		out.items = append(out.items, n)
	}
	return out, nil
}

func TestCollectionCapability(t *testing.T) {
	v := &intStack{items: []int{1, 2, 3}}

	out, err := YML(v, WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "- 1\n- 2\n- 3\n", out)

	back, err := YMLObj[*intStack](out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

// tagSet 演示 WireSet 能力接口。
type tagSet struct {
	tags map[string]struct{}
}

func (s *tagSet) RangeMembers(yield func(el any) bool) {
	for tag := range s.tags {
		if !yield(tag) {
			return
		}
	}
}

func (s *tagSet) FromMembers(members []any) (any, error) {
	out := &tagSet{tags: make(map[string]struct{}, len(members))}
	for _, m := range members {
		out.tags[m.(string)] = struct{}{}
	}
	return out, nil
}

func TestSetCapability(t *testing.T) {
	v := &tagSet{tags: map[string]struct{}{"b": {}, "a": {}}}

	out, err := YML(v, WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "- a\n- b\n", out)

	back, err := YMLObj[*tagSet](out)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

// dualContainer 同时声明映射与集合能力,解析时映射优先。
type dualContainer struct{}

func (dualContainer) RangePairs(yield func(k, v any) bool) { yield("kind", "mapping") }
func (dualContainer) FromPairs(_ []wire.Pair) (any, error) { return dualContainer{}, nil }
func (dualContainer) RangeMembers(yield func(el any) bool) { yield("set") }
func (dualContainer) FromMembers(_ []any) (any, error)     { return dualContainer{}, nil }

func TestCapabilityPriority(t *testing.T) {
	out, err := YML(dualContainer{}, WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "kind: mapping\n", out)
}

// walker 只声明遍历能力,不可反序列化。
type walker struct{}

func (walker) RangeElements(yield func(el any) bool) {
	for i := 1; i <= 3; i++ {
		if !yield(i) {
			return
		}
	}
}

func TestIterableCapability(t *testing.T) {
	out, err := YML(walker{}, WithPartial())
	require.NoError(t, err)
	assert.Equal(t, "- 1\n- 2\n- 3\n", out)

	_, err = YMLObj[walker](out)
	assert.ErrorIs(t, err, merr.ErrWireIncompatible)
}

func TestResolutionIdempotent(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeOf([]string{})

	s1, err := r.ForType(typ, nil)
	require.NoError(t, err)
	s2, err := r.ForType(typ, nil)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.EqualValues(t, 1, r.Resolved())

	// 元素类型参数不同,是另一个解析键。
	s3, err := r.ForType(typ, &Options{ElemType: reflect.TypeOf("")})
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)
	assert.EqualValues(t, 2, r.Resolved())
}

func TestConcurrentResolution(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeOf(map[string]int{})

	const n = 32
	results := make([]Strategy, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := r.ForType(typ, nil)
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, r.Resolved())
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

type tagged struct {
	name string
}

type constStrategy struct {
	text string
}

func (s constStrategy) ToWire(_ any, _ *Options) (wire.Value, error)   { return s.text, nil }
func (s constStrategy) FromWire(w wire.Value, _ *Options) (any, error) { return w, nil }

func TestRegisterOverridesInference(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeOf(tagged{})
	require.NoError(t, r.Register(typ, constStrategy{text: "registered"}))

	s, err := r.ForType(typ, nil)
	require.NoError(t, err)
	w, err := s.ToWire(tagged{name: "x"}, &Options{})
	require.NoError(t, err)
	assert.Equal(t, "registered", w)

	// 显式注册对元素类型参数不敏感。
	s2, err := r.ForType(typ, &Options{ElemType: reflect.TypeOf(0)})
	require.NoError(t, err)
	assert.Equal(t, s, s2)

	assert.Error(t, r.Register(typ, nil))
	assert.Error(t, r.Register(nil, constStrategy{}))
}

func TestBindValue(t *testing.T) {
	r := NewRegistry()
	v1 := &tagged{name: "bound"}
	v2 := &tagged{name: "free"}
	require.NoError(t, r.Bind(v1, constStrategy{text: "bound"}))

	s, err := r.ForValue(v1, &Options{})
	require.NoError(t, err)
	w, err := s.ToWire(v1, &Options{})
	require.NoError(t, err)
	assert.Equal(t, "bound", w)

	// 同类型的其他值不受绑定影响。
	s2, err := r.ForValue(v2, &Options{})
	require.NoError(t, err)
	assert.NotEqual(t, s, s2)

	r.Unbind(v1)
	s3, err := r.ForValue(v1, &Options{})
	require.NoError(t, err)
	assert.Equal(t, s2, s3)
}

func TestBindRejectsBadInput(t *testing.T) {
	r := NewRegistry()
	err := r.Bind(map[string]int{}, constStrategy{})
	assert.ErrorIs(t, err, merr.ErrStrategyBindFailed)

	err = r.Bind(&tagged{}, nil)
	assert.ErrorIs(t, err, merr.ErrStrategyInvalid)
}

func TestDetach(t *testing.T) {
	r := NewRegistry()
	typ := reflect.TypeOf([]int{})

	_, err := r.ForType(typ, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, r.Resolved())

	r.Detach(typ)
	_, err = r.ForType(typ, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, r.Resolved())
}

func TestFileRoundTrip(t *testing.T) {
	mem := fs.NewLocalFileSystemWithBackend(afero.NewMemMapFs())
	v := map[string]any{"a": 1}

	out, err := YML(v, WithToFile("/data/out.yml"), WithFileSystem(mem))
	require.NoError(t, err)

	stored, err := mem.ReadFile("/data/out.yml")
	require.NoError(t, err)
	assert.Equal(t, out, stored)

	back, err := YMLObj[map[string]any]("/data/out.yml", WithFromFile(), WithFileSystem(mem))
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestFileAppend(t *testing.T) {
	mem := fs.NewLocalFileSystemWithBackend(afero.NewMemMapFs())

	_, err := YML(map[string]int{"a": 1}, WithToFile("/data/log.yml"), WithFileSystem(mem))
	require.NoError(t, err)
	_, err = YML(map[string]int{"b": 2}, WithToFile("/data/log.yml"), WithAppend(), WithFileSystem(mem))
	require.NoError(t, err)

	stored, err := mem.ReadFile("/data/log.yml")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(stored, "---\n"))

	_, err = YMLObj[int]("/data/missing.yml", WithFromFile(), WithFileSystem(mem))
	assert.ErrorIs(t, err, merr.ErrIoKeyNotFound)
}

func TestProcessDefaults(t *testing.T) {
	SetDefaultOptions(false, true)
	defer SetDefaultOptions(false, false)

	// Partial 成为默认项,单次调用无需再指定。
	out, err := YML(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", out)

	require.NoError(t, SetDefaultFormat(format.JSON))
	defer func() { require.NoError(t, SetDefaultFormat(format.YAML)) }()

	text, err := Serialize(map[string]int{"a": 1}, "")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	back, err := Deserialize[map[string]int](text, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, back)

	assert.ErrorIs(t, SetDefaultFormat("msgpack"), merr.ErrFormatNotRegistered)
}

func TestToWireFromWire(t *testing.T) {
	w, err := ToWire([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, wire.Sequence{1, 2, 3}, w)

	back, err := FromWire[[]int](w)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, back)
}
