package txbuilder

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransparentOutputScript(t *testing.T) {
	var pubKeys [][]byte
	for i := 0; i < 4; i++ {
		pk, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		pubKeys = append(pubKeys, pk.PubKey().SerializeCompressed())
	}

	tests := []struct {
		name       string
		script     *txscript.ScriptBuilder
		isStandard bool
	}{
		{
			"key1 and key2",
			txscript.NewScriptBuilder().AddOp(txscript.OP_2).
				AddData(pubKeys[0]).AddData(pubKeys[1]).
				AddOp(txscript.OP_2).AddOp(txscript.OP_CHECKMULTISIG),
			true,
		},
		{
			"escrow",
			txscript.NewScriptBuilder().AddOp(txscript.OP_2).
				AddData(pubKeys[0]).AddData(pubKeys[1]).AddData(pubKeys[2]).
				AddOp(txscript.OP_3).AddOp(txscript.OP_CHECKMULTISIG),
			true,
		},
		{
			"one of four",
			txscript.NewScriptBuilder().AddOp(txscript.OP_1).
				AddData(pubKeys[0]).AddData(pubKeys[1]).
				AddData(pubKeys[2]).AddData(pubKeys[3]).
				AddOp(txscript.OP_4).AddOp(txscript.OP_CHECKMULTISIG),
			false,
		},
		{
			"more signatures than keys",
			txscript.NewScriptBuilder().AddOp(txscript.OP_3).
				AddData(pubKeys[0]).AddData(pubKeys[1]).
				AddOp(txscript.OP_2).AddOp(txscript.OP_CHECKMULTISIG),
			false,
		},
		{
			"missing checkmultisig",
			txscript.NewScriptBuilder().AddOp(txscript.OP_1).
				AddData(pubKeys[0]).AddData(pubKeys[1]),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := tt.script.Script()
			require.NoError(t, err)

			err = checkTransparentOutput(script, 1)
			if tt.isStandard {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNonStandardScript)
			}
		})
	}
}

func TestCheckTransparentOutputAmount(t *testing.T) {
	script, err := txscript.NullDataScript([]byte("tze"))
	require.NoError(t, err)

	for _, amount := range []int64{0, -1, int64(btcutil.MaxSatoshi) + 1} {
		assert.ErrorIs(t, checkTransparentOutput(script, btcutil.Amount(amount)), ErrInvalidOutputValue, amount)
	}
	assert.NoError(t, checkTransparentOutput(script, btcutil.MaxSatoshi))
}

func TestAddTransparentScriptOutput(t *testing.T) {
	b := NewBuilder(params, newTestStore(t))

	script, err := txscript.NewScriptBuilder().AddOp(txscript.OP_TRUE).Script()
	require.NoError(t, err)
	assert.ErrorIs(t, b.AddTransparentScriptOutput(script, 1), ErrNonStandardScript)

	script, err = txscript.NullDataScript([]byte("tze"))
	require.NoError(t, err)
	require.NoError(t, b.AddTransparentScriptOutput(script, 1))
	assert.ErrorIs(t, b.AddTransparentScriptOutput(script, 0), ErrInvalidOutputValue)

	fee, err := b.Fee()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), int64(fee))
}
