package txbuilder

import (
	"errors"
	"fmt"

	"github.com/qinglongcn/tze"
	"github.com/qinglongcn/tze/extensions/demo"
	"github.com/qinglongcn/tze/extensions/sigext"
)

// ErrUnknownExtension 没有为该扩展ID注册验证函数
var ErrUnknownExtension = errors.New("unknown extension")

// ExtensionVerifier 检查一个 TZE 输入的见证是否满足被花费输出的前置条件
type ExtensionVerifier func(pre tze.Precondition, wit tze.Witness[tze.AuthData], tx *Transaction) error

// Verifier 按扩展ID分派的交易验证器
type Verifier struct {
	extensions map[uint32]ExtensionVerifier
}

// NewVerifier 创建一个没有注册任何扩展的验证器
func NewVerifier() *Verifier {
	return &Verifier{extensions: make(map[uint32]ExtensionVerifier)}
}

// DefaultVerifier 返回注册了 demo 与 sigext 扩展的验证器
func DefaultVerifier() *Verifier {
	v := NewVerifier()
	v.Register(demo.ExtensionID, func(pre tze.Precondition, wit tze.Witness[tze.AuthData], tx *Transaction) error {
		return demo.VerifyInput(pre, wit, tx.Tze.Vout)
	})
	v.Register(sigext.ExtensionID, func(pre tze.Precondition, wit tze.Witness[tze.AuthData], tx *Transaction) error {
		return sigext.VerifyInput(pre, wit, tx.TxID())
	})
	return v
}

// Register 为 extensionID 注册验证函数，已存在的会被替换
func (v *Verifier) Register(extensionID uint32, fn ExtensionVerifier) {
	v.extensions[extensionID] = fn
}

// Verify 依次验证交易的每个 TZE 输入
func (v *Verifier) Verify(tx *Transaction, utxos PrevOutFetcher) error {
	if tx.Tze == nil {
		return nil
	}
	for i, in := range tx.Tze.Vin {
		prevout, err := utxos.FetchTzeOut(in.PrevOut)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		if prevout.Precondition.ExtensionID != in.Witness.ExtensionID {
			return fmt.Errorf("input %d: %w", i, ErrExtensionMismatch)
		}
		fn, ok := v.extensions[in.Witness.ExtensionID]
		if !ok {
			return fmt.Errorf("input %d: %w: %d", i, ErrUnknownExtension, in.Witness.ExtensionID)
		}
		if err := fn(prevout.Precondition, in.Witness, tx); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}
	return nil
}
