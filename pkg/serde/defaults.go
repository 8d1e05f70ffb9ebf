package serde

import (
	"go.uber.org/atomic"

	"github.com/mentalsmash/yaml-serde/pkg/serde/format"
)

// defaultsHolder 固定 atomic.Value 里存放的具体类型。
type defaultsHolder struct {
	format  string
	unsafe  bool
	partial bool
}

var _defaults atomic.Value

func init() {
	_defaults.Store(defaultsHolder{format: format.YAML})
}

// SetDefaultFormat 设置格式标识为空时入口函数使用的进程级默认格式,
// 该格式必须已在格式注册表登记。
func SetDefaultFormat(id string) error {
	if _, err := format.Lookup(id); err != nil {
		return err
	}
	d := _defaults.Load().(defaultsHolder)
	d.format = id
	_defaults.Store(d)
	return nil
}

// DefaultFormat 返回进程级默认格式标识。
func DefaultFormat() string {
	return _defaults.Load().(defaultsHolder).format
}

// SetDefaultOptions 设置进程级默认调用选项,
// 单次调用传入的 Option 在其基础上继续修改。
func SetDefaultOptions(unsafe, partial bool) {
	d := _defaults.Load().(defaultsHolder)
	d.unsafe = unsafe
	d.partial = partial
	_defaults.Store(d)
}
