package serde

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mentalsmash/yaml-serde/pkg/log"
	"github.com/mentalsmash/yaml-serde/pkg/metrics"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
)

// registryKey 唯一标识一次解析结果。
// 同一类型在不同的元素/键类型参数下会得到不同的策略实例。
type registryKey struct {
	typ  reflect.Type
	elem reflect.Type
	key  reflect.Type
}

func (k registryKey) String() string {
	return fmt.Sprintf("%v|%v|%v", k.typ, k.elem, k.key)
}

// Registry 缓存类型到策略的解析结果。
//
// 解析是幂等的:同一 (类型, 元素类型, 键类型) 组合至多产生一个策略实例,
// 并发首次解析经 singleflight 合并,后续请求走读锁快路径。
// 此外支持把策略绑定到单个可比较的值上,绑定优先于类型级解析。
type Registry struct {
	mu         sync.RWMutex
	byType     map[registryKey]Strategy
	registered map[reflect.Type]Strategy
	byValue    map[any]Strategy

	sf       singleflight.Group
	resolved *atomic.Int64
}

// NewRegistry 创建一个空注册表。
func NewRegistry() *Registry {
	return &Registry{
		byType:     make(map[registryKey]Strategy),
		registered: make(map[reflect.Type]Strategy),
		byValue:    make(map[any]Strategy),
		resolved:   atomic.NewInt64(0),
	}
}

// Resolved 返回累计发生过的解析(缓存未命中)次数。
func (r *Registry) Resolved() int64 {
	return r.resolved.Load()
}

// ForValue 为具体值解析策略。
// 优先级:值级绑定 > 值自身实现 StrategyProvider > 类型级解析。
func (r *Registry) ForValue(v any, opts *Options) (Strategy, error) {
	if v == nil {
		return identityStrategy{}, nil
	}
	if isComparable(v) {
		r.mu.RLock()
		s, ok := r.byValue[v]
		r.mu.RUnlock()
		if ok {
			metrics.StrategyCacheHits.Inc()
			return s, nil
		}
	}
	return r.ForType(reflect.TypeOf(v), opts)
}

// ForType 为类型解析策略,结果进缓存。
func (r *Registry) ForType(t reflect.Type, opts *Options) (Strategy, error) {
	if t == nil {
		return identityStrategy{}, nil
	}
	if opts == nil {
		opts = &Options{}
	}
	key := registryKey{typ: t, elem: opts.ElemType, key: opts.KeyType}
	r.mu.RLock()
	s, ok := r.byType[key]
	r.mu.RUnlock()
	if ok {
		metrics.StrategyCacheHits.Inc()
		return s, nil
	}

	// singleflight 的键可能跨包短名冲突,但冲突只会合并解析请求,
	// 入缓存前还有一次持锁复查,正确性不受影响。
	res, err, _ := r.sf.Do(key.String(), func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if s, ok := r.byType[key]; ok {
			return s, nil
		}
		s, err := r.resolve(t, opts)
		if err != nil {
			return nil, err
		}
		r.byType[key] = s
		r.resolved.Inc()
		metrics.StrategyCacheMisses.Inc()
		log.RatedDebug(10, "resolved strategy",
			zap.String("type", t.String()), zap.String("strategy", fmt.Sprintf("%T", s)))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(Strategy), nil
}

// resolve 在持写锁的前提下执行真正的解析。
// 先查显式注册,再探测 StrategyProvider,最后按内建规则推断。
// 显式注册的策略对元素/键类型参数不敏感,推断缓存则按完整键区分。
func (r *Registry) resolve(t reflect.Type, opts *Options) (Strategy, error) {
	if s, ok := r.registered[t]; ok {
		return s, nil
	}
	if implementsOnValueOrPtr(t, providerType) {
		recv := capabilityReceiver(t, providerType).(StrategyProvider)
		s := recv.WireStrategy()
		if s == nil {
			return nil, merr.WrapErrStrategyInvalid(t.String(), "WireStrategy returned nil")
		}
		return s, nil
	}
	return inferStrategy(t, opts)
}

// Register 为类型显式登记一个策略,覆盖内建推断与 StrategyProvider。
func (r *Registry) Register(t reflect.Type, s Strategy) error {
	if t == nil {
		return merr.WrapErrParameterMissing("type")
	}
	if s == nil {
		return merr.WrapErrStrategyInvalid(t.String(), "nil strategy")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered[t] = s
	r.dropCachedLocked(t)
	return nil
}

// Bind 把策略绑定到单个值上,只有可比较的值才能绑定。
func (r *Registry) Bind(v any, s Strategy) error {
	if v == nil {
		return merr.WrapErrParameterMissing("value")
	}
	if s == nil {
		return merr.WrapErrStrategyInvalid(reflect.TypeOf(v).String(), "nil strategy")
	}
	if !isComparable(v) {
		return merr.WrapErrStrategyBindFailed(reflect.TypeOf(v).String(), "value is not comparable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byValue[v] = s
	return nil
}

// Unbind 解除值级绑定,未绑定时为空操作。
func (r *Registry) Unbind(v any) {
	if v == nil || !isComparable(v) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byValue, v)
}

// Detach 丢弃某类型名下的全部缓存与注册,
// 下一次解析会重新走完整流程。
func (r *Registry) Detach(t reflect.Type) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.registered, t)
	r.dropCachedLocked(t)
}

func (r *Registry) dropCachedLocked(t reflect.Type) {
	for key := range r.byType {
		if key.typ == t {
			delete(r.byType, key)
		}
	}
}

func isComparable(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Comparable()
}

var defaultRegistry = NewRegistry()

// DefaultRegistry 返回包级默认注册表,包级入口函数都经由它解析。
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register 在默认注册表上为 T 登记策略。
func Register[T any](s Strategy) error {
	return defaultRegistry.Register(reflect.TypeOf((*T)(nil)).Elem(), s)
}

// Bind 在默认注册表上把策略绑定到单个值。
func Bind(v any, s Strategy) error {
	return defaultRegistry.Bind(v, s)
}

// Unbind 在默认注册表上解除值级绑定。
func Unbind(v any) {
	defaultRegistry.Unbind(v)
}

// Detach 在默认注册表上丢弃 T 的缓存与注册。
func Detach[T any]() {
	defaultRegistry.Detach(reflect.TypeOf((*T)(nil)).Elem())
}
