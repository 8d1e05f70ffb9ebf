// Package wire 定义序列化引擎的中间表示（wire value）。
//
// wire value 是一个封闭集合，底层文本编解码器只需要理解这些形态：
//
//   - 标量：nil、bool、各类整数/浮点、string
//   - Sequence：有序序列
//   - *Mapping：保持插入顺序的键值映射
//   - *Set：成员唯一的无序集合（编码时按规范序输出，保证结果可复现）
//
// 集合之外的任何值都必须先由某个 Strategy 归约到该集合，
// 否则安全模式编码会失败。
package wire

import (
	"reflect"

	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
)

// Value 为 wire value 的载体类型。
// 合法取值范围见包注释；使用别名而非自定义类型，
// 以便标量和解码器产出的原生值可以直接充当 wire value。
type Value = any

// Sequence 为有序的 wire value 序列。
type Sequence = []Value

// Pair 为 Mapping 中的一个键值对。
type Pair struct {
	Key   Value
	Value Value
}

// Validate 校验 v 是否完全落在封闭的 wire value 集合内（安全模式检查）。
// 返回的错误会标注第一个越界的值。
func Validate(v Value) error {
	switch tv := v.(type) {
	case nil, bool, string:
		return nil
	case *Mapping:
		if tv == nil {
			return nil
		}
		for _, p := range tv.pairs {
			if err := Validate(p.Key); err != nil {
				return err
			}
			if err := Validate(p.Value); err != nil {
				return err
			}
		}
		return nil
	case *Set:
		if tv == nil {
			return nil
		}
		for _, el := range tv.elems {
			if err := Validate(el); err != nil {
				return err
			}
		}
		return nil
	case Sequence:
		for _, el := range tv {
			if err := Validate(el); err != nil {
				return err
			}
		}
		return nil
	}

	// 其余标量按 reflect.Kind 判定，覆盖 int8/uint16 等全部数值宽度,
	// 以及 type Name string 这类自定义标量。
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return nil
	}
	return merr.WrapErrCodecUnsupportedType(v)
}
