package serde

import (
	"reflect"

	"github.com/mentalsmash/yaml-serde/pkg/fs"
)

// Options 为一次序列化/反序列化调用的全部可选参数。
//
// ElemType/KeyType 描述容器的元素/键目标类型，
// 供容器策略在反序列化时对成员做类型化重建；
// 对字符串类类型声明 ElemType 是未定义操作，会在解析阶段报错。
type Options struct {
	// ToFile 非空时，序列化结果除了返回之外还会写入该路径。
	ToFile string
	// Append 为 true 时写文件采用追加模式，否则覆盖。
	Append bool
	// Partial 为 true 时省略文档首尾标记，只输出裸编码体。
	Partial bool
	// Unsafe 为 true 时编码放行封闭集合之外的值，交由底层编解码器自行处理。
	Unsafe bool
	// FromFile 为 true 时，反序列化的输入参数被解释为文件路径而非文本。
	FromFile bool
	// ElemType 为容器元素的目标类型。
	ElemType reflect.Type
	// KeyType 为映射键的目标类型。
	KeyType reflect.Type
	// FS 覆盖本次调用使用的文件系统，nil 时使用进程级默认值。
	FS fs.FileSystem
}

// Option 以函数式选项的方式修改 Options。
type Option func(*Options)

func newOptions(opts []Option) *Options {
	d := _defaults.Load().(defaultsHolder)
	o := &Options{Unsafe: d.unsafe, Partial: d.partial}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// child 返回一份剥离了容器级参数的拷贝，供容器策略递归转换成员时使用。
// ElemType/KeyType 只描述最外层容器，不应继续向下传播。
func (o *Options) child() *Options {
	c := *o
	c.ElemType = nil
	c.KeyType = nil
	return &c
}

// WithToFile 指定序列化结果的落盘路径。
func WithToFile(path string) Option {
	return func(o *Options) { o.ToFile = path }
}

// WithAppend 开启追加写模式。
func WithAppend() Option {
	return func(o *Options) { o.Append = true }
}

// WithPartial 省略文档首尾标记。
func WithPartial() Option {
	return func(o *Options) { o.Partial = true }
}

// WithUnsafe 开启非安全编码模式。
func WithUnsafe() Option {
	return func(o *Options) { o.Unsafe = true }
}

// WithFromFile 将反序列化输入解释为文件路径。
func WithFromFile() Option {
	return func(o *Options) { o.FromFile = true }
}

// WithElemType 声明容器元素的目标类型。
func WithElemType(t reflect.Type) Option {
	return func(o *Options) { o.ElemType = t }
}

// WithKeyType 声明映射键的目标类型。
func WithKeyType(t reflect.Type) Option {
	return func(o *Options) { o.KeyType = t }
}

// Elem 是 WithElemType 的泛型便捷写法。
func Elem[T any]() Option {
	return WithElemType(reflect.TypeOf((*T)(nil)).Elem())
}

// Key 是 WithKeyType 的泛型便捷写法。
func Key[T any]() Option {
	return WithKeyType(reflect.TypeOf((*T)(nil)).Elem())
}

// WithFileSystem 覆盖本次调用使用的文件系统。
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *Options) { o.FS = fsys }
}
