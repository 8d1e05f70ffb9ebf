package format

import (
	"sort"

	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
	yaml "go.yaml.in/yaml/v2"
)

// yamlFormat 是主格式:块状布局,映射保持插入顺序,集合按规范序输出。
type yamlFormat struct{}

var _ Format = (*yamlFormat)(nil)

func newYAMLFormat() *yamlFormat {
	return &yamlFormat{}
}

func (f *yamlFormat) ID() string { return YAML }

func (f *yamlFormat) Encode(w wire.Value, opts Options) (string, error) {
	if !opts.Unsafe {
		if err := wire.Validate(w); err != nil {
			return "", err
		}
	}
	data, err := yaml.Marshal(toYAML(w))
	if err != nil {
		return "", merr.WrapErrCodecEncode(YAML, err)
	}
	body := string(data)
	if opts.Partial {
		return body, nil
	}
	return Frame(body), nil
}

// Decode 把文本解析回线格式值。解析本身不会执行任何代码,
// 安全与非安全模式共用同一条路径。
func (f *yamlFormat) Decode(text string, _ Options) (wire.Value, error) {
	var raw any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, merr.WrapErrCodecDecode(YAML, err)
	}
	return fromYAML(raw), nil
}

// toYAML 把线格式值转成 yaml.v2 能按约定布局输出的形态。
// 非安全模式下集合外的值会原样落到这里,交给 Marshal 自行处理。
func toYAML(w wire.Value) any {
	switch ww := w.(type) {
	case *wire.Mapping:
		out := make(yaml.MapSlice, 0, ww.Len())
		ww.Range(func(k, v wire.Value) bool {
			out = append(out, yaml.MapItem{Key: toYAML(k), Value: toYAML(v)})
			return true
		})
		return out
	case *wire.Set:
		members := ww.Canonical()
		out := make([]any, 0, len(members))
		for _, m := range members {
			out = append(out, toYAML(m))
		}
		return out
	case wire.Sequence:
		out := make([]any, 0, len(ww))
		for _, el := range ww {
			out = append(out, toYAML(el))
		}
		return out
	}
	return w
}

// fromYAML 把 yaml.v2 的解码结果归一化到线格式值。
// 解码丢失了文档内的映射顺序,键对按规范序排定,保证结果确定。
func fromYAML(v any) wire.Value {
	switch vv := v.(type) {
	case map[any]any:
		type entry struct {
			order string
			key   wire.Value
			val   wire.Value
		}
		entries := make([]entry, 0, len(vv))
		for k, val := range vv {
			kw := fromYAML(k)
			entries = append(entries, entry{order: wire.CanonicalKey(kw), key: kw, val: fromYAML(val)})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
		out := wire.NewMapping()
		for _, e := range entries {
			out.Put(e.key, e.val)
		}
		return out
	case []any:
		out := make(wire.Sequence, 0, len(vv))
		for _, el := range vv {
			out = append(out, fromYAML(el))
		}
		return out
	}
	return v
}
