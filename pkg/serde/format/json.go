package format

import (
	"github.com/mentalsmash/yaml-serde/internal/json"
	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
	"github.com/mentalsmash/yaml-serde/pkg/wire"
)

// jsonFormat 是紧凑格式:单行输出,不带文档标记,Partial 选项无效。
// JSON 是主格式的子集,解码直接委托给主格式的解码器。
type jsonFormat struct {
	yaml *yamlFormat
}

var _ Format = (*jsonFormat)(nil)

func newJSONFormat(y *yamlFormat) *jsonFormat {
	return &jsonFormat{yaml: y}
}

func (f *jsonFormat) ID() string { return JSON }

func (f *jsonFormat) Encode(w wire.Value, opts Options) (string, error) {
	if !opts.Unsafe {
		if err := wire.Validate(w); err != nil {
			return "", err
		}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", merr.WrapErrCodecEncode(JSON, err)
	}
	return string(data), nil
}

func (f *jsonFormat) Decode(text string, opts Options) (wire.Value, error) {
	return f.yaml.Decode(text, opts)
}
