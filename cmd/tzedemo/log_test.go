package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogReplacesHooks(t *testing.T) {
	opt := DefaultOptions()
	opt.BuildDataDir(t.TempDir())
	opt.BuildInstanceId("log")
	opt.LogLevel = "debug"
	t.Cleanup(func() { logrus.StandardLogger().ReplaceHooks(logrus.LevelHooks{}) })

	require.NoError(t, SetLog(opt))
	require.NoError(t, SetLog(opt))

	// 每个级别只保留一个文件钩子
	for _, level := range logrus.AllLevels {
		if level > logrus.DebugLevel {
			continue
		}
		assert.Len(t, logrus.StandardLogger().Hooks[level], 1, level.String())
	}
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
