package serde

import (
	"github.com/mentalsmash/yaml-serde/pkg/wire"
)

// Strategy 定义一种 Go 值与线格式值之间的双向转换。
//
// ToWire 把任意 Go 值转成封闭集合内的线格式值，
// FromWire 则从线格式值重建目标类型的 Go 值。
// 两个方向都必须无副作用，同一策略实例会被并发复用。
type Strategy interface {
	ToWire(v any, opts *Options) (wire.Value, error)
	FromWire(w wire.Value, opts *Options) (any, error)
}

// StrategyProvider 由希望自定义转换行为的类型实现。
// 解析器发现目标类型实现了该接口时，优先采用其返回的策略，
// 返回 nil 视为非法策略。
type StrategyProvider interface {
	WireStrategy() Strategy
}

// WireMapping 声明一个外部容器类型具备映射能力。
// 解析器对实现了该接口的类型选用映射策略。
type WireMapping interface {
	// RangePairs 按容器自身的顺序遍历键值对，yield 返回 false 时终止。
	RangePairs(yield func(k, v any) bool)
	// FromPairs 用给定键值对构造一个新容器。
	FromPairs(pairs []wire.Pair) (any, error)
}

// WireSet 声明一个外部容器类型具备集合能力。
type WireSet interface {
	// RangeMembers 遍历集合成员,顺序由容器自身决定。
	RangeMembers(yield func(el any) bool)
	// FromMembers 用给定成员构造一个新容器,重复成员只保留一个。
	FromMembers(members []any) (any, error)
}

// WireCollection 声明一个外部容器类型具备有序多元素能力。
type WireCollection interface {
	LenElements() int
	// RangeElements 按顺序遍历元素。
	RangeElements(yield func(el any) bool)
	// FromElements 用给定元素序列构造一个新容器。
	FromElements(elements []any) (any, error)
}

// WireIterable 声明一个外部类型可被遍历。
// 只实现该接口而不提供构造能力的类型只能序列化,不能反序列化。
type WireIterable interface {
	RangeElements(yield func(el any) bool)
}
