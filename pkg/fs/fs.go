package fs

// FileSystem 抽象了序列化器的持久化能力。
//
// 设计目标：
//   - 调用方通过接口注入具体实现，便于测试与扩展（远端存储、只读镜像等）。
//   - FormatOutput/FormatInput 是写前/读后的内容钩子，
//     自定义实现可借此在落盘前后改写文本（加头、加密、脱敏等），
//     默认实现原样透传。
type FileSystem interface {
	// ReadFile 读取 path 的全部内容。
	ReadFile(path string) (string, error)

	// WriteFile 将 contents 写入 path。
	//
	// 父目录不存在时自动创建；append 为 false 时覆盖已有内容，
	// 为 true 时追加到文件末尾。
	WriteFile(path string, contents string, append bool) error

	// FormatOutput 在写入前对文本做一次变换，返回实际落盘的内容。
	FormatOutput(path string, text string) (string, error)

	// FormatInput 在读取后对文本做一次变换，返回交给解码器的内容。
	FormatInput(path string, text string) (string, error)
}
