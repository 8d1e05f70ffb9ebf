package format

import (
	"reflect"
	"sync"

	"github.com/mentalsmash/yaml-serde/pkg/log"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/util/typeutil"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
	"go.uber.org/zap"
)

const (
	// YAML 是主格式标识,解码兜底也由它承担。
	YAML = "yaml"
	// JSON 是紧凑格式标识。
	JSON = "json"
)

// Options 控制单次编解码的行为。
type Options struct {
	// Partial 为 true 时省略文档首尾标记,对无标记的格式无效。
	Partial bool
	// Unsafe 为 true 时跳过封闭集合校验,值直接交给底层编解码器。
	Unsafe bool
}

// Format 把线格式值编码为文本,或把文本解码回线格式值。
// 实现必须可并发使用。
type Format interface {
	ID() string
	Encode(w wire.Value, opts Options) (string, error)
	Decode(text string, opts Options) (wire.Value, error)
}

var (
	registryMu sync.RWMutex
	builtins   = map[string]Format{}
	registered = map[string]Format{}
	reserved   = typeutil.NewSet(YAML, JSON)
)

func init() {
	y := newYAMLFormat()
	builtins[YAML] = y
	builtins[JSON] = newJSONFormat(y)
}

// Register 以 id 登记一个用户格式。
// 内建标识不可占用;同一 id 重复登记同一实现是幂等空操作,
// 换一个实现则报冲突。
func Register(id string, f Format) error {
	if id == "" {
		return merr.WrapErrParameterMissing("format id")
	}
	if f == nil {
		return merr.WrapErrParameterMissing("format")
	}
	if reserved.Contain(id) {
		return merr.WrapErrFormatReserved(id)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if existing, ok := registered[id]; ok {
		if reflect.TypeOf(existing) != reflect.TypeOf(f) {
			return merr.WrapErrFormatConflict(id)
		}
		return nil
	}
	registered[id] = f
	log.Info("registered serialization format", zap.String("id", id))
	return nil
}

// Unregister 注销一个用户格式并返回它。
// 内建格式不可注销,未登记的 id 报错。
func Unregister(id string) (Format, error) {
	if reserved.Contain(id) {
		return nil, merr.WrapErrFormatReserved(id)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	f, ok := registered[id]
	if !ok {
		return nil, merr.WrapErrFormatNotRegistered(id)
	}
	delete(registered, id)
	log.Info("unregistered serialization format", zap.String("id", id))
	return f, nil
}

// Lookup 按 id 查找格式,内建格式优先。
func Lookup(id string) (Format, error) {
	if f, ok := builtins[id]; ok {
		return f, nil
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	if f, ok := registered[id]; ok {
		return f, nil
	}
	return nil, merr.WrapErrFormatNotRegistered(id)
}
