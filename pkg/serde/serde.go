// Package serde 提供多态对象与文本格式之间的序列化层。
//
// 入口是 Serialize/Deserialize 两族函数:值先经策略转换成封闭
// 集合内的线格式值,再交给按标识查找到的格式编码;反方向则先
// 解码成线格式值,再由目标类型的策略重建 Go 值。策略解析结果
// 按类型缓存在进程级注册表里,自定义类型通过实现 StrategyProvider
// 或显式 Register 接入。
package serde

import (
	"reflect"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/mentalsmash/yaml-serde/pkg/fs"
	"github.com/mentalsmash/yaml-serde/pkg/log"
	"github.com/mentalsmash/yaml-serde/pkg/metrics"
	"github.com/mentalsmash/yaml-serde/pkg/serde/format"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
)

// fsHolder 固定 atomic.Value 里存放的具体类型,
// 否则换一种 FileSystem 实现时 Store 会触发 panic。
type fsHolder struct {
	fsys fs.FileSystem
}

var _defaultFS atomic.Value

func init() {
	_defaultFS.Store(fsHolder{fsys: fs.NewLocalFileSystem()})
}

// SetDefaultFileSystem 替换进程级默认文件系统,nil 会被忽略。
func SetDefaultFileSystem(fsys fs.FileSystem) {
	if fsys == nil {
		return
	}
	_defaultFS.Store(fsHolder{fsys: fsys})
}

func fileSystem(opts *Options) fs.FileSystem {
	if opts.FS != nil {
		return opts.FS
	}
	return _defaultFS.Load().(fsHolder).fsys
}

// Serialize 把 v 编码为 formatID 对应格式的文本,
// formatID 为空时使用进程级默认格式。
// 指定了 WithToFile 时结果同时落盘,落盘失败视为整体失败。
func Serialize(v any, formatID string, opts ...Option) (string, error) {
	if formatID == "" {
		formatID = DefaultFormat()
	}
	o := newOptions(opts)
	text, err := serialize(v, formatID, o)
	if err != nil {
		metrics.SerializeTotal.WithLabelValues(formatID, metrics.StatusFail).Inc()
		log.Warn("serialize failed", zap.String("format", formatID), zap.Error(err))
		return "", err
	}
	metrics.SerializeTotal.WithLabelValues(formatID, metrics.StatusOK).Inc()
	return text, nil
}

func serialize(v any, formatID string, o *Options) (string, error) {
	f, err := format.Lookup(formatID)
	if err != nil {
		return "", err
	}
	w, err := toWireValue(v, o)
	if err != nil {
		return "", err
	}
	text, err := f.Encode(w, format.Options{Partial: o.Partial, Unsafe: o.Unsafe})
	if err != nil {
		return "", err
	}
	if o.ToFile != "" {
		fsys := fileSystem(o)
		out, err := fsys.FormatOutput(o.ToFile, text)
		if err != nil {
			return "", err
		}
		if err := fsys.WriteFile(o.ToFile, out, o.Append); err != nil {
			return "", err
		}
	}
	return text, nil
}

// Deserialize 把 formatID 对应格式的文本解码并重建为 T,
// formatID 为空时使用进程级默认格式。
// 指定了 WithFromFile 时 src 被解释为文件路径。
func Deserialize[T any](src string, formatID string, opts ...Option) (T, error) {
	var zero T
	if formatID == "" {
		formatID = DefaultFormat()
	}
	o := newOptions(opts)
	v, err := deserialize(src, formatID, reflect.TypeOf((*T)(nil)).Elem(), o)
	if err != nil {
		metrics.DeserializeTotal.WithLabelValues(formatID, metrics.StatusFail).Inc()
		log.Warn("deserialize failed", zap.String("format", formatID), zap.Error(err))
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		// 目标是接口类型时断言已覆盖,走到这里说明策略给出了不兼容的值。
		metrics.DeserializeTotal.WithLabelValues(formatID, metrics.StatusFail).Inc()
		return zero, merr.WrapErrWireIncompatible(v, reflect.TypeOf((*T)(nil)).Elem().String())
	}
	metrics.DeserializeTotal.WithLabelValues(formatID, metrics.StatusOK).Inc()
	return out, nil
}

func deserialize(src string, formatID string, target reflect.Type, o *Options) (any, error) {
	f, err := format.Lookup(formatID)
	if err != nil {
		return nil, err
	}
	text := src
	if o.FromFile {
		fsys := fileSystem(o)
		raw, err := fsys.ReadFile(src)
		if err != nil {
			return nil, err
		}
		text, err = fsys.FormatInput(src, raw)
		if err != nil {
			return nil, err
		}
	}
	w, err := f.Decode(text, format.Options{Unsafe: o.Unsafe})
	if err != nil {
		return nil, err
	}
	return fromWireValue(w, target, o)
}

// YML 等价于 Serialize(v, "yaml", ...)。
func YML(v any, opts ...Option) (string, error) {
	return Serialize(v, format.YAML, opts...)
}

// JSON 等价于 Serialize(v, "json", ...)。
func JSON(v any, opts ...Option) (string, error) {
	return Serialize(v, format.JSON, opts...)
}

// YMLObj 等价于 Deserialize[T](src, "yaml", ...)。
func YMLObj[T any](src string, opts ...Option) (T, error) {
	return Deserialize[T](src, format.YAML, opts...)
}

// JSONObj 等价于 Deserialize[T](src, "json", ...)。
func JSONObj[T any](src string, opts ...Option) (T, error) {
	return Deserialize[T](src, format.JSON, opts...)
}

// ToWire 只做值到线格式的转换,不经过任何文本格式。
func ToWire(v any, opts ...Option) (wire.Value, error) {
	return toWireValue(v, newOptions(opts))
}

// FromWire 从线格式值重建 T,不经过任何文本格式。
func FromWire[T any](w wire.Value, opts ...Option) (T, error) {
	var zero T
	v, err := fromWireValue(w, reflect.TypeOf((*T)(nil)).Elem(), newOptions(opts))
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, merr.WrapErrWireIncompatible(v, reflect.TypeOf((*T)(nil)).Elem().String())
	}
	return out, nil
}

// toWireValue 是容器策略递归时的公共入口,经默认注册表解析。
func toWireValue(v any, o *Options) (wire.Value, error) {
	s, err := defaultRegistry.ForValue(v, o)
	if err != nil {
		return nil, err
	}
	return s.ToWire(v, o)
}

// fromWireValue 与 toWireValue 对称,按目标类型解析策略后重建。
func fromWireValue(w wire.Value, target reflect.Type, o *Options) (any, error) {
	if isAnyInterface(target) {
		return w, nil
	}
	s, err := defaultRegistry.ForType(target, o)
	if err != nil {
		return nil, err
	}
	return s.FromWire(w, o)
}

func isAnyInterface(t reflect.Type) bool {
	return t == nil || (t.Kind() == reflect.Interface && t.NumMethod() == 0)
}
