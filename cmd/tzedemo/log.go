package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

const (
	logName = "console"
)

// SetLog 为每一个实例创建一个log文件，记录日志信息
func SetLog(opt *Options) error {
	logLevel, err := logrus.ParseLevel(opt.LogLevel)
	if err != nil {
		return err
	}

	filename := filepath.Join(opt.LogsPath(), fmt.Sprintf("%s.log", logName))
	if opt.InstanceId != "" {
		filename = filepath.Join(opt.LogsPath(), fmt.Sprintf("%s_%s.log", logName, opt.InstanceId))
	}
	// logrus 的回调钩子
	rotateFileHook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   filename,
		MaxSize:    50, // 文件最大50M
		MaxBackups: 3,
		MaxAge:     28, // 存储28天
		Level:      logLevel,
		Formatter: &logrus.JSONFormatter{ // 默认为ASCII formatter，转为JSON formatter
			TimestampFormat: "2006-01-02 15:04:05", // 时间戳字符串格式
		},
	})
	if err != nil {
		return fmt.Errorf("初始化文件回调钩子失败: %w", err)
	}

	logrus.SetLevel(logLevel)
	logrus.SetOutput(colorable.NewColorableStdout())
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC822,
	})
	// 重复调用时替换之前的文件钩子
	logrus.StandardLogger().ReplaceHooks(logrus.LevelHooks{})
	logrus.AddHook(rotateFileHook)
	return nil
}
