package fs

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mentalsmash/yaml-serde/pkg/util/merr"
)

// LocalFileSystem 基于 spf13/afero 实现 FileSystem。
//
// 默认后端为宿主机文件系统（afero.NewOsFs），
// 测试中可以注入 afero.NewMemMapFs 做内存文件系统。
type LocalFileSystem struct {
	backend afero.Fs
}

// 编译期断言：确保 LocalFileSystem 实现了 FileSystem 接口。
var _ FileSystem = (*LocalFileSystem)(nil)

// NewLocalFileSystem 创建一个以宿主机文件系统为后端的 LocalFileSystem。
func NewLocalFileSystem() *LocalFileSystem {
	return &LocalFileSystem{backend: afero.NewOsFs()}
}

// NewLocalFileSystemWithBackend 创建一个使用给定 afero 后端的 LocalFileSystem。
func NewLocalFileSystemWithBackend(backend afero.Fs) *LocalFileSystem {
	if backend == nil {
		backend = afero.NewOsFs()
	}
	return &LocalFileSystem{backend: backend}
}

// ReadFile 实现 FileSystem.ReadFile。
func (l *LocalFileSystem) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(l.backend, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", merr.WrapErrIoKeyNotFound(path)
		}
		return "", merr.WrapErrIoFailed(path, err)
	}
	return string(data), nil
}

// WriteFile 实现 FileSystem.WriteFile。
func (l *LocalFileSystem) WriteFile(path string, contents string, append bool) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := l.backend.MkdirAll(dir, 0o755); err != nil {
			return merr.WrapErrIoFailed(path, err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := l.backend.OpenFile(path, flags, 0o644)
	if err != nil {
		return merr.WrapErrIoFailed(path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(contents); err != nil {
		return merr.WrapErrIoFailed(path, err)
	}
	return nil
}

// FormatOutput 原样透传。
func (l *LocalFileSystem) FormatOutput(path string, text string) (string, error) {
	return text, nil
}

// FormatInput 原样透传。
func (l *LocalFileSystem) FormatInput(path string, text string) (string, error) {
	return text, nil
}
