// Package sigext 实现一个由 BIP-340 schnorr 签名守卫的 TZE 扩展
//
// 前置条件载荷是 32 字节的 x-only 公钥，见证载荷是对最终交易签名摘要的 64 字节签名。
// 签名摘要只有在整笔交易确定之后才能计算，因此见证构建器在添加输入时捕获私钥，
// 在 CreateWitnesses 时才对上下文给出的摘要签名。
package sigext

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/qinglongcn/tze"
)

// ExtensionID 签名扩展的扩展ID
const ExtensionID uint32 = 1

// ModeSchnorr 唯一的模式
const ModeSchnorr uint32 = 0

var (
	// ErrInvalidMode 未知的模式
	ErrInvalidMode = errors.New("sigext: invalid mode")
	// ErrInvalidSignature 签名验证失败
	ErrInvalidSignature = errors.New("sigext: invalid signature")
)

// SigHasher 由最终交易上下文实现，给出所有输入共同承诺的签名摘要
type SigHasher interface {
	SigHash() chainhash.Hash
}

// Precondition 锁定到一个公钥
type Precondition struct {
	PubKey *btcec.PublicKey
}

// PayToPubKey 创建锁定到 pub 的前置条件
func PayToPubKey(pub *btcec.PublicKey) Precondition {
	return Precondition{PubKey: pub}
}

// ToPayload 实现 tze.ToPayload
func (p Precondition) ToPayload() (uint32, []byte) {
	return ModeSchnorr, schnorr.SerializePubKey(p.PubKey)
}

// PreconditionFromPayload 从 (模式, 载荷) 解析前置条件
func PreconditionFromPayload(mode uint32, payload []byte) (Precondition, error) {
	if mode != ModeSchnorr {
		return Precondition{}, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	pub, err := schnorr.ParsePubKey(payload)
	if err != nil {
		return Precondition{}, fmt.Errorf("sigext: parse pubkey: %w", err)
	}
	return Precondition{PubKey: pub}, nil
}

// Witness 对签名摘要的 schnorr 签名
type Witness struct {
	Signature *schnorr.Signature
}

// ToPayload 实现 tze.ToPayload
func (w Witness) ToPayload() (uint32, []byte) {
	return ModeSchnorr, w.Signature.Serialize()
}

// WitnessFromPayload 从 (模式, 载荷) 解析见证
func WitnessFromPayload(mode uint32, payload []byte) (Witness, error) {
	if mode != ModeSchnorr {
		return Witness{}, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	sig, err := schnorr.ParseSignature(payload)
	if err != nil {
		return Witness{}, fmt.Errorf("sigext: parse signature: %w", err)
	}
	return Witness{Signature: sig}, nil
}

// Signer 返回一个见证构建器，在最终交易确定后用 priv 对 ctx.SigHash() 签名
func Signer[C SigHasher](priv *btcec.PrivateKey) tze.WitnessBuilder[C] {
	return tze.WitnessBuilderFunc[C](func(ctx C) (tze.ToPayload, error) {
		digest := ctx.SigHash()
		sig, err := schnorr.Sign(priv, digest[:])
		if err != nil {
			return nil, fmt.Errorf("sigext: sign: %w", err)
		}
		return Witness{Signature: sig}, nil
	})
}

// Verify 检查见证是否是前置条件公钥对 digest 的有效签名
func Verify(p Precondition, w Witness, digest chainhash.Hash) error {
	if !w.Signature.Verify(digest[:], p.PubKey) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyInput 从原始的前置条件与见证解析后调用 Verify
func VerifyInput(pre tze.Precondition, wit tze.Witness[tze.AuthData], digest chainhash.Hash) error {
	p, err := PreconditionFromPayload(pre.Mode, pre.Payload)
	if err != nil {
		return err
	}
	w, err := WitnessFromPayload(wit.Mode, wit.Payload)
	if err != nil {
		return err
	}
	return Verify(p, w, digest)
}
