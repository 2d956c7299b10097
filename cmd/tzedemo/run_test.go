package main

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/tze"
	"github.com/qinglongcn/tze/extensions/sigext"
	"github.com/qinglongcn/tze/store"
)

func newMemoryStore(t *testing.T) *store.UTXOSet {
	t.Helper()
	u, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = u.Close() })
	return u
}

func fundingOptions(t *testing.T) *Options {
	t.Helper()
	opt := DefaultOptions()
	opt.Mnemonic = "seed words"
	opt.BuildInstanceId("funding")
	require.NoError(t, opt.CheckAndSetOptions())
	return opt
}

func sigOutput(pub *btcec.PublicKey, value tze.Amount) tze.TzeOut {
	mode, payload := sigext.PayToPubKey(pub).ToPayload()
	return tze.TzeOut{
		Value:        value,
		Precondition: tze.Precondition{ExtensionID: sigext.ExtensionID, Mode: mode, Payload: payload},
	}
}

func TestFundingOutputOddKey(t *testing.T) {
	// 6·G 的 y 坐标为奇数
	priv, pub := btcec.PrivKeyFromBytes([]byte{6})
	require.NotNil(t, priv)
	require.Equal(t, byte(0x03), pub.SerializeCompressed()[0])

	u := newMemoryStore(t)
	opt := fundingOptions(t)
	op := tze.OutPoint{Hash: chainhash.HashH([]byte("own")), Index: 1}
	require.NoError(t, u.Put(op, sigOutput(pub, tze.Amount(opt.required()))))

	got, out, err := fundingOutput(u, opt, pub)
	require.NoError(t, err)
	assert.Equal(t, op, got)
	assert.Equal(t, tze.Amount(opt.required()), out.Value)

	// 没有注入新的输出
	count, err := u.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFundingOutputIgnoresOtherKeys(t *testing.T) {
	_, pub := btcec.PrivKeyFromBytes([]byte{6})
	_, other := btcec.PrivKeyFromBytes([]byte{7})

	u := newMemoryStore(t)
	opt := fundingOptions(t)
	require.NoError(t, u.Put(tze.OutPoint{Index: 0}, sigOutput(other, tze.Amount(opt.Faucet))))

	op, out, err := fundingOutput(u, opt, pub)
	require.NoError(t, err)
	assert.NotEqual(t, tze.OutPoint{Index: 0}, op)
	assert.Equal(t, tze.Amount(opt.Faucet), out.Value)
}

func TestFundingOutputReseedsFreshOutPoint(t *testing.T) {
	_, pub := btcec.PrivKeyFromBytes([]byte{6})
	u := newMemoryStore(t)
	opt := fundingOptions(t)

	first, _, err := fundingOutput(u, opt, pub)
	require.NoError(t, err)
	_, err = u.Spend(first)
	require.NoError(t, err)

	second, _, err := fundingOutput(u, opt, pub)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
