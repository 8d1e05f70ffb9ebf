package wire

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/mentalsmash/yaml-serde/internal/json"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
)

// Mapping 和 Set 实现 json.Marshaler，
// 使 JSON 编码器（internal/json，基于 sonic）能保持映射插入顺序
// 与集合规范顺序，而不退化为无序的原生 map 编码。

var (
	_ interface{ MarshalJSON() ([]byte, error) } = (*Mapping)(nil)
	_ interface{ MarshalJSON() ([]byte, error) } = (*Set)(nil)
)

// MarshalJSON 按插入顺序输出 JSON 对象。
// 非字符串的标量键会被文本化（与 JSON 对象键必须为字符串的约束对齐），
// 容器键无法表示，返回错误。
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsonKey(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON 按规范顺序输出 JSON 数组。
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Canonical())
}

func jsonKey(k Value) ([]byte, error) {
	switch tk := k.(type) {
	case string:
		return json.Marshal(tk)
	case *Mapping, *Set, Sequence:
		return nil, merr.WrapErrCodecUnsupportedType(k, "container value cannot be a JSON object key")
	case nil:
		return json.Marshal("null")
	}
	switch reflect.ValueOf(k).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return json.Marshal(fmt.Sprintf("%v", k))
	}
	return nil, merr.WrapErrCodecUnsupportedType(k, "value cannot be a JSON object key")
}
