package main

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/tze/extensions/demo"
	"github.com/qinglongcn/tze/extensions/sigext"
	"github.com/qinglongcn/tze/store"
)

func testOptions(t *testing.T) *Options {
	t.Helper()
	opt := DefaultOptions()
	opt.BuildDataDir(t.TempDir())
	opt.BuildInstanceId("test")
	opt.Mnemonic = "abandon ability able"
	opt.LogLevel = "warning"
	return opt
}

func TestRunDemo(t *testing.T) {
	opt := testOptions(t)
	require.NoError(t, Run(opt, afero.NewOsFs(), RunDemo))

	utxos, err := store.Open(opt.DBPath())
	require.NoError(t, err)
	locked, err := utxos.FindByExtension(demo.ExtensionID)
	require.NoError(t, err)
	signed, err := utxos.FindByExtension(sigext.ExtensionID)
	require.NoError(t, err)
	require.NoError(t, utxos.Close())

	// 哈希锁输出全部被花费，剩下找零与取回的输出
	assert.Empty(t, locked)
	assert.Len(t, signed, 2)

	// 第二次运行花费找零输出
	require.NoError(t, Run(opt, afero.NewOsFs(), RunDemo))
	utxos, err = store.Open(opt.DBPath())
	require.NoError(t, err)
	defer utxos.Close()
	count, err := utxos.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var buf bytes.Buffer
	require.NoError(t, listOutputs(utxos, &buf))
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestRunDemoReseedsWhenChangeTooSmall(t *testing.T) {
	opt := testOptions(t)
	// 第一次运行的找零小于一次演示所需的金额，第二次运行必须重新注入
	opt.Faucet = opt.required() + 500
	require.NoError(t, Run(opt, afero.NewOsFs(), RunDemo))
	require.NoError(t, Run(opt, afero.NewOsFs(), RunDemo))

	utxos, err := store.Open(opt.DBPath())
	require.NoError(t, err)
	defer utxos.Close()

	// 两次的找零与取回输出都保留
	signed, err := utxos.FindByExtension(sigext.ExtensionID)
	require.NoError(t, err)
	assert.Len(t, signed, 4)
}

func TestRunInvalidOptions(t *testing.T) {
	opt := testOptions(t)
	opt.Mnemonic = ""
	assert.Error(t, Run(opt, afero.NewOsFs(), RunDemo))
}
