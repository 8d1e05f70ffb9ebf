package serde

import (
	"reflect"
	"sort"

	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
)

var (
	wireMappingType    = reflect.TypeOf((*WireMapping)(nil)).Elem()
	wireSetType        = reflect.TypeOf((*WireSet)(nil)).Elem()
	wireCollectionType = reflect.TypeOf((*WireCollection)(nil)).Elem()
	wireIterableType   = reflect.TypeOf((*WireIterable)(nil)).Elem()
	providerType       = reflect.TypeOf((*StrategyProvider)(nil)).Elem()
	byteSliceType      = reflect.TypeOf((*[]byte)(nil)).Elem()
	emptyStructType    = reflect.TypeOf((*struct{})(nil)).Elem()
)

// implementsOnValueOrPtr 同时探测值接收者与指针接收者两种方法集。
func implementsOnValueOrPtr(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface) {
		return true
	}
	return false
}

// zeroInstance 构造 t 的一个零值实例,指针类型指向新分配的元素。
// 能力接口的构造方法(FromPairs 等)就挂在这样的实例上调用。
func zeroInstance(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem())
	}
	return reflect.New(t).Elem()
}

// capabilityReceiver 返回一个可以断言到能力接口的实例。
// 方法可能定义在指针接收者上,必要时取地址。
func capabilityReceiver(t, iface reflect.Type) any {
	if t.Implements(iface) {
		return zeroInstance(t).Interface()
	}
	return reflect.New(t).Interface()
}

// inferStrategy 按固定优先级为类型推断内建策略:
// 字符串类走恒等,其余依次探测映射、集合、有序容器、可遍历能力,
// 再按原生种类归类,最后兜底到恒等。
func inferStrategy(t reflect.Type, opts *Options) (Strategy, error) {
	if t == nil {
		return identityStrategy{}, nil
	}
	if isStringLike(t) {
		if opts.ElemType != nil {
			return nil, merr.WrapErrStrategyElemOnString(t.String())
		}
		return identityStrategy{typ: t}, nil
	}
	switch {
	case implementsOnValueOrPtr(t, wireMappingType):
		return &mappingStrategy{typ: t, capable: true}, nil
	case implementsOnValueOrPtr(t, wireSetType):
		return &setStrategy{typ: t, capable: true}, nil
	case implementsOnValueOrPtr(t, wireCollectionType):
		return &collectionStrategy{typ: t, capable: true}, nil
	case implementsOnValueOrPtr(t, wireIterableType):
		return &iterableStrategy{typ: t}, nil
	}
	switch t.Kind() {
	case reflect.Map:
		// map[T]struct{} 是 Go 的惯用集合形态,归入集合策略。
		if t.Elem() == emptyStructType {
			return &setStrategy{typ: t}, nil
		}
		return &mappingStrategy{typ: t}, nil
	case reflect.Slice, reflect.Array:
		return &collectionStrategy{typ: t}, nil
	}
	return identityStrategy{typ: t}, nil
}

func isStringLike(t reflect.Type) bool {
	return t.Kind() == reflect.String || t == byteSliceType
}

// NewIdentityStrategy 返回恒等策略,标量与未知类型的兜底方案。
func NewIdentityStrategy(t reflect.Type) Strategy {
	return identityStrategy{typ: t}
}

// NewMappingStrategy 为 t 构造映射策略。
// t 既不是原生 map 也不具备 WireMapping 能力时报错。
func NewMappingStrategy(t reflect.Type) (Strategy, error) {
	if implementsOnValueOrPtr(t, wireMappingType) {
		return &mappingStrategy{typ: t, capable: true}, nil
	}
	if t.Kind() == reflect.Map && t.Elem() != emptyStructType {
		return &mappingStrategy{typ: t}, nil
	}
	return nil, merr.WrapErrStrategyTargetMismatch(t.String(), "mapping")
}

// NewSetStrategy 为 t 构造集合策略。
func NewSetStrategy(t reflect.Type) (Strategy, error) {
	if implementsOnValueOrPtr(t, wireSetType) {
		return &setStrategy{typ: t, capable: true}, nil
	}
	if t.Kind() == reflect.Map && t.Elem() == emptyStructType {
		return &setStrategy{typ: t}, nil
	}
	return nil, merr.WrapErrStrategyTargetMismatch(t.String(), "set")
}

// NewCollectionStrategy 为 t 构造有序容器策略。
func NewCollectionStrategy(t reflect.Type) (Strategy, error) {
	if implementsOnValueOrPtr(t, wireCollectionType) {
		return &collectionStrategy{typ: t, capable: true}, nil
	}
	if (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && !isStringLike(t) {
		return &collectionStrategy{typ: t}, nil
	}
	return nil, merr.WrapErrStrategyTargetMismatch(t.String(), "collection")
}

// NewIterableStrategy 为 t 构造可遍历策略。
func NewIterableStrategy(t reflect.Type) (Strategy, error) {
	if implementsOnValueOrPtr(t, wireIterableType) {
		return &iterableStrategy{typ: t}, nil
	}
	return nil, merr.WrapErrStrategyTargetMismatch(t.String(), "iterable")
}

// identityStrategy 原样传递值,重建时只做必要的类型适配。
type identityStrategy struct {
	typ reflect.Type
}

var _ Strategy = identityStrategy{}

func (s identityStrategy) ToWire(v any, _ *Options) (wire.Value, error) {
	return v, nil
}

func (s identityStrategy) FromWire(w wire.Value, _ *Options) (any, error) {
	if s.typ == nil {
		return w, nil
	}
	rv, err := convertAssign(w, s.typ)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// mappingStrategy 处理原生 map 与 WireMapping 容器。
type mappingStrategy struct {
	typ     reflect.Type
	capable bool
}

var _ Strategy = (*mappingStrategy)(nil)

func (s *mappingStrategy) ToWire(v any, opts *Options) (wire.Value, error) {
	out := wire.NewMapping()
	child := opts.child()
	if wm, ok := asCapability(v, wireMappingType).(WireMapping); ok {
		var rangeErr error
		wm.RangePairs(func(k, val any) bool {
			kw, err := toWireValue(k, child)
			if err != nil {
				rangeErr = err
				return false
			}
			vw, err := toWireValue(val, child)
			if err != nil {
				rangeErr = err
				return false
			}
			out.Put(kw, vw)
			return true
		})
		if rangeErr != nil {
			return nil, rangeErr
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, merr.WrapErrStrategyTargetMismatch(reflect.TypeOf(v).String(), "mapping")
	}
	// 原生 map 遍历顺序不确定,按规范键排序后写入,保证编码稳定。
	type entry struct {
		order string
		key   wire.Value
		val   wire.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kw, err := toWireValue(iter.Key().Interface(), child)
		if err != nil {
			return nil, err
		}
		vw, err := toWireValue(iter.Value().Interface(), child)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{order: wire.CanonicalKey(kw), key: kw, val: vw})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	for _, e := range entries {
		out.Put(e.key, e.val)
	}
	return out, nil
}

func (s *mappingStrategy) FromWire(w wire.Value, opts *Options) (any, error) {
	wm, ok := w.(*wire.Mapping)
	if !ok {
		return nil, merr.WrapErrWireIncompatible(w, s.typ.String())
	}
	child := opts.child()
	pairs := make([]wire.Pair, 0, wm.Len())
	var convErr error
	wm.Range(func(k, v wire.Value) bool {
		if opts.KeyType != nil {
			k, convErr = fromWireValue(k, opts.KeyType, child)
			if convErr != nil {
				return false
			}
		}
		if opts.ElemType != nil {
			v, convErr = fromWireValue(v, opts.ElemType, child)
			if convErr != nil {
				return false
			}
		}
		pairs = append(pairs, wire.Pair{Key: k, Value: v})
		return true
	})
	if convErr != nil {
		return nil, convErr
	}
	if s.capable {
		recv := capabilityReceiver(s.typ, wireMappingType).(WireMapping)
		return recv.FromPairs(pairs)
	}
	out := reflect.MakeMapWithSize(s.typ, len(pairs))
	for _, p := range pairs {
		kv, err := convertAssign(p.Key, s.typ.Key())
		if err != nil {
			return nil, err
		}
		vv, err := convertAssign(p.Value, s.typ.Elem())
		if err != nil {
			return nil, err
		}
		out.SetMapIndex(kv, vv)
	}
	return out.Interface(), nil
}

// setStrategy 处理 map[T]struct{} 与 WireSet 容器。
type setStrategy struct {
	typ     reflect.Type
	capable bool
}

var _ Strategy = (*setStrategy)(nil)

func (s *setStrategy) ToWire(v any, opts *Options) (wire.Value, error) {
	out := wire.NewSet()
	child := opts.child()
	if ws, ok := asCapability(v, wireSetType).(WireSet); ok {
		var rangeErr error
		ws.RangeMembers(func(el any) bool {
			ew, err := toWireValue(el, child)
			if err != nil {
				rangeErr = err
				return false
			}
			out.Insert(ew)
			return true
		})
		if rangeErr != nil {
			return nil, rangeErr
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, merr.WrapErrStrategyTargetMismatch(reflect.TypeOf(v).String(), "set")
	}
	iter := rv.MapRange()
	for iter.Next() {
		ew, err := toWireValue(iter.Key().Interface(), child)
		if err != nil {
			return nil, err
		}
		out.Insert(ew)
	}
	return out, nil
}

func (s *setStrategy) FromWire(w wire.Value, opts *Options) (any, error) {
	// 经过文本编解码后集合以序列形态出现,两种形态都接受。
	var members []wire.Value
	switch ww := w.(type) {
	case *wire.Set:
		members = ww.Members()
	case wire.Sequence:
		members = ww
	default:
		return nil, merr.WrapErrWireIncompatible(w, s.typ.String())
	}
	child := opts.child()
	converted := make([]any, 0, len(members))
	for _, m := range members {
		if opts.ElemType != nil {
			var err error
			m, err = fromWireValue(m, opts.ElemType, child)
			if err != nil {
				return nil, err
			}
		}
		converted = append(converted, m)
	}
	if s.capable {
		recv := capabilityReceiver(s.typ, wireSetType).(WireSet)
		return recv.FromMembers(converted)
	}
	out := reflect.MakeMapWithSize(s.typ, len(converted))
	present := reflect.ValueOf(struct{}{})
	for _, m := range converted {
		kv, err := convertAssign(m, s.typ.Key())
		if err != nil {
			return nil, err
		}
		out.SetMapIndex(kv, present)
	}
	return out.Interface(), nil
}

// collectionStrategy 处理原生切片/数组与 WireCollection 容器。
type collectionStrategy struct {
	typ     reflect.Type
	capable bool
}

var _ Strategy = (*collectionStrategy)(nil)

func (s *collectionStrategy) ToWire(v any, opts *Options) (wire.Value, error) {
	child := opts.child()
	if wc, ok := asCapability(v, wireCollectionType).(WireCollection); ok {
		out := make(wire.Sequence, 0, wc.LenElements())
		var rangeErr error
		wc.RangeElements(func(el any) bool {
			ew, err := toWireValue(el, child)
			if err != nil {
				rangeErr = err
				return false
			}
			out = append(out, ew)
			return true
		})
		if rangeErr != nil {
			return nil, rangeErr
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, merr.WrapErrStrategyTargetMismatch(reflect.TypeOf(v).String(), "collection")
	}
	out := make(wire.Sequence, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ew, err := toWireValue(rv.Index(i).Interface(), child)
		if err != nil {
			return nil, err
		}
		out = append(out, ew)
	}
	return out, nil
}

func (s *collectionStrategy) FromWire(w wire.Value, opts *Options) (any, error) {
	var elements []wire.Value
	switch ww := w.(type) {
	case wire.Sequence:
		elements = ww
	case *wire.Set:
		elements = ww.Canonical()
	default:
		return nil, merr.WrapErrWireIncompatible(w, s.typ.String())
	}
	child := opts.child()
	converted := make([]any, 0, len(elements))
	for _, el := range elements {
		if opts.ElemType != nil {
			var err error
			el, err = fromWireValue(el, opts.ElemType, child)
			if err != nil {
				return nil, err
			}
		}
		converted = append(converted, el)
	}
	if s.capable {
		recv := capabilityReceiver(s.typ, wireCollectionType).(WireCollection)
		return recv.FromElements(converted)
	}
	switch s.typ.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(s.typ, 0, len(converted))
		for _, el := range converted {
			ev, err := convertAssign(el, s.typ.Elem())
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, ev)
		}
		return out.Interface(), nil
	case reflect.Array:
		if s.typ.Len() != len(converted) {
			return nil, merr.WrapErrWireIncompatible(w, s.typ.String())
		}
		out := reflect.New(s.typ).Elem()
		for i, el := range converted {
			ev, err := convertAssign(el, s.typ.Elem())
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(ev)
		}
		return out.Interface(), nil
	}
	return nil, merr.WrapErrStrategyTargetMismatch(s.typ.String(), "collection")
}

// iterableStrategy 处理只声明了遍历能力的类型。
// 序列化与有序容器一致;类型额外提供 FromElements 时才支持反序列化。
type iterableStrategy struct {
	typ reflect.Type
}

var _ Strategy = (*iterableStrategy)(nil)

type elementConstructor interface {
	FromElements(elements []any) (any, error)
}

var elementConstructorType = reflect.TypeOf((*elementConstructor)(nil)).Elem()

func (s *iterableStrategy) ToWire(v any, opts *Options) (wire.Value, error) {
	wi, ok := asCapability(v, wireIterableType).(WireIterable)
	if !ok {
		return nil, merr.WrapErrStrategyTargetMismatch(reflect.TypeOf(v).String(), "iterable")
	}
	child := opts.child()
	out := wire.Sequence{}
	var rangeErr error
	wi.RangeElements(func(el any) bool {
		ew, err := toWireValue(el, child)
		if err != nil {
			rangeErr = err
			return false
		}
		out = append(out, ew)
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return out, nil
}

func (s *iterableStrategy) FromWire(w wire.Value, opts *Options) (any, error) {
	if !implementsOnValueOrPtr(s.typ, elementConstructorType) {
		return nil, merr.WrapErrWireIncompatible(w, s.typ.String())
	}
	elements, ok := w.(wire.Sequence)
	if !ok {
		return nil, merr.WrapErrWireIncompatible(w, s.typ.String())
	}
	child := opts.child()
	converted := make([]any, 0, len(elements))
	for _, el := range elements {
		if opts.ElemType != nil {
			var err error
			el, err = fromWireValue(el, opts.ElemType, child)
			if err != nil {
				return nil, err
			}
		}
		converted = append(converted, el)
	}
	recv := capabilityReceiver(s.typ, elementConstructorType).(elementConstructor)
	return recv.FromElements(converted)
}

// asCapability 把 v 断言到能力接口,方法在指针接收者上时自动取地址。
func asCapability(v any, iface reflect.Type) any {
	if v == nil {
		return nil
	}
	if reflect.TypeOf(v).Implements(iface) {
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer && rv.CanInterface() {
		pv := reflect.New(rv.Type())
		pv.Elem().Set(rv)
		if pv.Type().Implements(iface) {
			return pv.Interface()
		}
	}
	return nil
}

// convertAssign 把线格式值适配到目标类型,
// 覆盖 nil、可直接赋值、数值宽度转换与接口目标几种情形。
func convertAssign(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, merr.WrapErrWireIncompatible(v, t.String())
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == t || rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) && convertibleKinds(rv.Kind(), t.Kind()) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, merr.WrapErrWireIncompatible(v, t.String())
}

// convertibleKinds 限制 reflect 转换只发生在同族标量之间,
// 避免 int→string 这类语义突变的转换被悄悄放行。
func convertibleKinds(from, to reflect.Kind) bool {
	return scalarFamily(from) != 0 && scalarFamily(from) == scalarFamily(to)
}

func scalarFamily(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	case reflect.Bool:
		return 3
	}
	return 0
}
