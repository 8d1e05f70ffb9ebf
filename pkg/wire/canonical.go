package wire

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// CanonicalKey 为 wire value 生成确定性的文本键。
//
// 用途有两个：
//   - Mapping/Set 的判重（代替对非 comparable 值不可用的 map 键）；
//   - Set 编码时的规范排序。
//
// 同一数值在不同位宽下（int32(3) 与 int64(3)）产生相同的键，
// 与解码器丢失位宽信息后的行为保持一致。
func CanonicalKey(v Value) string {
	switch tv := v.(type) {
	case nil:
		return "~"
	case bool:
		return "b:" + strconv.FormatBool(tv)
	case string:
		return "s:" + strconv.Quote(tv)
	case *Mapping:
		keys := make([]string, 0, tv.Len())
		tv.Range(func(k, val Value) bool {
			keys = append(keys, CanonicalKey(k)+"="+CanonicalKey(val))
			return true
		})
		// 映射相等与顺序无关，键排序后再拼接。
		sort.Strings(keys)
		return "{" + strings.Join(keys, ",") + "}"
	case *Set:
		keys := make([]string, 0, tv.Len())
		tv.Range(func(el Value) bool {
			keys = append(keys, CanonicalKey(el))
			return true
		})
		sort.Strings(keys)
		return "(" + strings.Join(keys, ",") + ")"
	case Sequence:
		keys := make([]string, 0, len(tv))
		for _, el := range tv {
			keys = append(keys, CanonicalKey(el))
		}
		return "[" + strings.Join(keys, ",") + "]"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return "b:" + strconv.FormatBool(rv.Bool())
	case reflect.String:
		return "s:" + strconv.Quote(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i:" + strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u <= (1<<63 - 1) {
			return "i:" + strconv.FormatUint(u, 10)
		}
		return "u:" + strconv.FormatUint(u, 10)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int64(f)) {
			// 整数值浮点与同值整数视为同一个键（对齐解码器行为）。
			return "i:" + strconv.FormatInt(int64(f), 10)
		}
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("?:%T:%v", v, v)
}
