package store

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/tze"
)

func newTestSet(t *testing.T) *UTXOSet {
	t.Helper()
	u, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = u.Close() })
	return u
}

func testOut(ext uint32, value tze.Amount) tze.TzeOut {
	return tze.TzeOut{Value: value, Precondition: tze.Precondition{ExtensionID: ext, Mode: 0, Payload: []byte{byte(ext), 1}}}
}

func TestPutFetchSpend(t *testing.T) {
	u := newTestSet(t)
	op := tze.OutPoint{Hash: chainhash.HashH([]byte("a")), Index: 3}

	require.NoError(t, u.Put(op, testOut(1, 50)))
	require.ErrorIs(t, u.Put(op, testOut(1, 50)), ErrAlreadyExists)

	got, err := u.FetchTzeOut(op)
	require.NoError(t, err)
	assert.Equal(t, testOut(1, 50), got)

	spent, err := u.Spend(op)
	require.NoError(t, err)
	assert.Equal(t, testOut(1, 50), spent)

	_, err = u.FetchTzeOut(op)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = u.Spend(op)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApply(t *testing.T) {
	u := newTestSet(t)
	prev := tze.OutPoint{Hash: chainhash.HashH([]byte("prev")), Index: 0}
	require.NoError(t, u.Put(prev, testOut(0, 100)))

	txid := chainhash.HashH([]byte("tx"))
	bundle := &tze.Bundle[tze.AuthData]{
		Vin:  []tze.TzeIn[tze.AuthData]{{PrevOut: prev, Witness: tze.Witness[tze.AuthData]{Payload: tze.AuthData{1}}}},
		Vout: []tze.TzeOut{testOut(0, 60), testOut(1, 30)},
	}
	require.NoError(t, u.Apply(txid, bundle))

	_, err := u.FetchTzeOut(prev)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := u.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	byExt, err := u.FindByExtension(1)
	require.NoError(t, err)
	assert.Equal(t, map[tze.OutPoint]tze.TzeOut{
		tze.NewOutPoint(&txid, 1): testOut(1, 30),
	}, byExt)
}

func TestApplyMissingInputIsAtomic(t *testing.T) {
	u := newTestSet(t)
	prev := tze.OutPoint{Hash: chainhash.HashH([]byte("prev")), Index: 0}
	require.NoError(t, u.Put(prev, testOut(0, 100)))

	missing := tze.OutPoint{Hash: chainhash.HashH([]byte("missing")), Index: 0}
	bundle := &tze.Bundle[tze.AuthData]{
		Vin: []tze.TzeIn[tze.AuthData]{
			{PrevOut: prev},
			{PrevOut: missing},
		},
		Vout: []tze.TzeOut{testOut(0, 60)},
	}
	require.ErrorIs(t, u.Apply(chainhash.HashH([]byte("tx")), bundle), ErrNotFound)

	// 第一个输入没有被花费
	_, err := u.FetchTzeOut(prev)
	require.NoError(t, err)
	count, err := u.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyEmptyBundle(t *testing.T) {
	u := newTestSet(t)
	require.NoError(t, u.Apply(chainhash.Hash{}, nil))
}
