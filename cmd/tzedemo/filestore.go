package main

import (
	"fmt"

	"github.com/spf13/afero"
)

// FileStore 封装了数据目录的文件操作
type FileStore struct {
	Fs       afero.Fs
	BasePath string
}

// NewFileStore 创建一个新的FileStore实例，并确保根目录存在
func NewFileStore(fs afero.Fs, basePath string) (*FileStore, error) {
	if err := fs.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FileStore{Fs: fs, BasePath: basePath}, nil
}

// initDirectories 确保所有预定义的文件夹都存在
func initDirectories(fs afero.Fs, opt *Options) error {
	store, err := NewFileStore(fs, opt.DataDir)
	if err != nil {
		return err
	}

	// 所有需要检查的目录
	directories := []string{
		opt.DBPath(),   // 数据库目录
		opt.LogsPath(), // 日志目录
	}

	// 遍历每个目录并确保它存在
	for _, dir := range directories {
		if err := store.Fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
