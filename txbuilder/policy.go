package txbuilder

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// maxMultiSigKeys 标准多重签名输出允许的最大公钥数量
const maxMultiSigKeys = 3

// ErrNonStandardScript 透明输出脚本不是标准形式
var ErrNonStandardScript = errors.New("non-standard script")

// checkTransparentOutput 检查透明输出的金额与锁定脚本
// 金额须在 (0, MaxSatoshi] 内；脚本须属于已知类别，多重签名为 m-of-n 且 1 <= m <= n <= maxMultiSigKeys。
func checkTransparentOutput(pkScript []byte, amount btcutil.Amount) error {
	if amount <= 0 || amount > btcutil.MaxSatoshi {
		return fmt.Errorf("%w: %v", ErrInvalidOutputValue, amount)
	}

	class := txscript.GetScriptClass(pkScript)
	if class == txscript.NonStandardTy {
		return fmt.Errorf("%w: unknown script class", ErrNonStandardScript)
	}
	if class != txscript.MultiSigTy {
		return nil
	}

	keys, required, err := txscript.CalcMultiSigStats(pkScript)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNonStandardScript, err)
	}
	if keys < 1 || keys > maxMultiSigKeys || required < 1 || required > keys {
		return fmt.Errorf("%w: %d-of-%d multisig", ErrNonStandardScript, required, keys)
	}
	return nil
}

// AddTransparentScriptOutput 添加一个以 pkScript 锁定的透明输出，脚本必须是标准形式
func (b *Builder) AddTransparentScriptOutput(pkScript []byte, amount btcutil.Amount) error {
	if err := checkTransparentOutput(pkScript, amount); err != nil {
		return err
	}

	b.tx.AddTxOut(wire.NewTxOut(int64(amount), append([]byte(nil), pkScript...)))
	return nil
}
