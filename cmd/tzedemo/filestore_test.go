package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	opt := DefaultOptions()
	opt.BuildDataDir("/data")

	require.NoError(t, initDirectories(fs, opt))
	for _, dir := range []string{"/data", opt.DBPath(), opt.LogsPath()} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}

	// 重复初始化不会出错
	require.NoError(t, initDirectories(fs, opt))
}

func TestInitDirectoriesReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	opt := DefaultOptions()
	opt.BuildDataDir("/data")
	assert.Error(t, initDirectories(fs, opt))
}
