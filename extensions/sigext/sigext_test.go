package sigext

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qinglongcn/tze"
)

type finalTx struct {
	digest chainhash.Hash
}

func (f *finalTx) SigHash() chainhash.Hash {
	return f.digest
}

func TestSignerResolvesAgainstFinalDigest(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	mode, payload := PayToPubKey(priv.PubKey()).ToPayload()
	coin := tze.TzeOut{Value: 10, Precondition: tze.Precondition{ExtensionID: ExtensionID, Mode: mode, Payload: payload}}

	b := tze.NewBuilder[*finalTx]()
	b.AddInput(ExtensionID, ModeSchnorr, tze.OutPoint{Index: 1}, coin, Signer[*finalTx](priv))

	// 摘要在添加输入之后才确定
	ctx := &finalTx{digest: chainhash.DoubleHashH([]byte("final transaction"))}
	witnesses, err := b.CreateWitnesses(ctx)
	require.NoError(t, err)
	require.Len(t, witnesses, 1)

	wit := tze.Witness[tze.AuthData]{ExtensionID: ExtensionID, Mode: ModeSchnorr, Payload: witnesses[0]}
	require.NoError(t, VerifyInput(coin.Precondition, wit, ctx.digest))

	other := chainhash.DoubleHashH([]byte("another transaction"))
	assert.ErrorIs(t, VerifyInput(coin.Precondition, wit, other), ErrInvalidSignature)
}

func TestVerifyWrongKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	otherPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	ctx := &finalTx{digest: chainhash.HashH([]byte("tx"))}
	w, err := Signer[*finalTx](priv).BuildWitness(ctx)
	require.NoError(t, err)

	err = Verify(PayToPubKey(otherPriv.PubKey()), w.(Witness), ctx.digest)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestFromPayloadErrors(t *testing.T) {
	_, err := PreconditionFromPayload(1, make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = PreconditionFromPayload(ModeSchnorr, []byte{1, 2, 3})
	assert.Error(t, err)

	_, err = WitnessFromPayload(ModeSchnorr, make([]byte, 10))
	assert.Error(t, err)
}
