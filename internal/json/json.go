package json

import (
	"io"

	"github.com/bytedance/sonic"
)

// 基于 bytedance/sonic 的 JSON 编解码封装。
// 使用 ConfigStd 保证与标准库 encoding/json 行为兼容
// （包括对 json.Marshaler / json.Unmarshaler 接口的支持）。
var json = sonic.ConfigStd

var (
	// Marshal 将对象编码为 JSON 字节序列。
	Marshal = json.Marshal
	// Unmarshal 将 JSON 字节序列解码到目标对象。
	Unmarshal = json.Unmarshal
	// MarshalIndent 与 Marshal 类似，但会输出带缩进的 JSON。
	MarshalIndent = json.MarshalIndent
	// NewDecoder 创建一个从 r 读取的 JSON 解码器。
	NewDecoder = func(r io.Reader) sonic.Decoder { return json.NewDecoder(r) }
	// NewEncoder 创建一个写入到 w 的 JSON 编码器。
	NewEncoder = func(w io.Writer) sonic.Encoder { return json.NewEncoder(w) }
)
