package txbuilder

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/qinglongcn/tze"
)

var (
	// ErrInsufficientFunds TZE 输入不足以支付透明输出
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceUndefined TZE 余额溢出，无法计算
	ErrBalanceUndefined = errors.New("tze value balance is undefined")
	// ErrEmptyTransaction 交易没有任何输入和输出
	ErrEmptyTransaction = errors.New("transaction has no inputs or outputs")
	// ErrExtensionMismatch 输入声明的扩展与被花费输出的扩展不一致
	ErrExtensionMismatch = errors.New("input extension does not match spent output")
	// ErrInvalidOutputValue 透明输出金额无效
	ErrInvalidOutputValue = errors.New("invalid transparent output value")
)

// PrevOutFetcher 查找被花费的 TZE 输出，通常由 store.UTXOSet 实现
type PrevOutFetcher interface {
	FetchTzeOut(op tze.OutPoint) (tze.TzeOut, error)
}

// Context 最终确定的交易结构，在 CreateWitnesses 时传给每个见证构建器
type Context struct {
	Tx      *wire.MsgTx                   // 透明部分
	Bundle  *tze.Bundle[tze.Unauthorized] // 未授权的 TZE 捆绑包
	sigHash chainhash.Hash
}

// newContext 计算签名摘要：对透明交易与未授权捆绑包的编码做双重 SHA256
func newContext(tx *wire.MsgTx, bundle *tze.Bundle[tze.Unauthorized]) (*Context, error) {
	var buf bytes.Buffer
	if err := tx.SerializeNoWitness(&buf); err != nil {
		return nil, err
	}
	if err := tze.WriteUnauthorizedBundle(&buf, bundle); err != nil {
		return nil, err
	}
	return &Context{Tx: tx, Bundle: bundle, sigHash: chainhash.DoubleHashH(buf.Bytes())}, nil
}

// SigHash 所有 TZE 输入共同承诺的签名摘要
func (c *Context) SigHash() chainhash.Hash {
	return c.sigHash
}

// Builder 构建包含透明输出与 TZE 输入输出的交易
type Builder struct {
	params *chaincfg.Params
	utxos  PrevOutFetcher
	tx     *wire.MsgTx
	tze    *tze.Builder[*Context]
}

// NewBuilder 创建并返回一个交易构建器，utxos 用于查找被花费的 TZE 输出
func NewBuilder(params *chaincfg.Params, utxos PrevOutFetcher) *Builder {
	return &Builder{
		params: params,
		utxos:  utxos,
		tx:     wire.NewMsgTx(wire.TxVersion),
		tze:    tze.NewBuilder[*Context](),
	}
}

// SetLockTime 设置交易锁定时间
func (b *Builder) SetLockTime(lockTime uint32) {
	b.tx.LockTime = lockTime
}

// AddTransparentOutput 添加一个向 address 支付 amount 的透明输出
func (b *Builder) AddTransparentOutput(address string, amount btcutil.Amount) error {
	// 对地址的字符串编码进行解码，如果 addr 是已知地址类型的有效编码，则返回该地址。
	addr, err := btcutil.DecodeAddress(address, b.params)
	if err != nil {
		return fmt.Errorf("解析地址 %q 失败: %w", address, err)
	}

	// 创建一个新脚本，用于向指定地址支付交易输出。
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return err
	}
	return b.AddTransparentScriptOutput(pkScript, amount)
}

// AddTzeInput 花费 op 引用的 TZE 输出，wb 在交易确定后计算见证
func (b *Builder) AddTzeInput(extensionID, mode uint32, op tze.OutPoint, wb tze.WitnessBuilder[*Context]) error {
	coin, err := b.utxos.FetchTzeOut(op)
	if err != nil {
		return err
	}
	if coin.Precondition.ExtensionID != extensionID {
		return fmt.Errorf("%w: input %d, output %d", ErrExtensionMismatch, extensionID, coin.Precondition.ExtensionID)
	}

	b.tze.AddInput(extensionID, mode, op, coin, wb)
	logrus.Debugf("[AddTzeInput] 添加 TZE 输入 %s，扩展 %d，模式 %d，金额 %s", op, extensionID, mode, coin.Value)
	return nil
}

// AddTzeOutput 添加一个由 guard 守卫的 TZE 输出
func (b *Builder) AddTzeOutput(extensionID uint32, value tze.Amount, guard tze.ToPayload) error {
	return b.tze.AddOutput(extensionID, value, guard)
}

// Fee 返回 TZE 余额减去透明输出后的剩余部分，即交易费用
func (b *Builder) Fee() (btcutil.Amount, error) {
	balance, ok := b.tze.ValueBalance()
	if !ok {
		return 0, ErrBalanceUndefined
	}

	var transparentOut btcutil.Amount
	for _, out := range b.tx.TxOut {
		transparentOut += btcutil.Amount(out.Value)
	}
	return balance.ToBtcutil() - transparentOut, nil
}

// Build 确定交易结构，为每个 TZE 输入生成见证，返回已授权的交易
// Build 会消费内部的 TZE 构建器，只能调用一次。
func (b *Builder) Build() (*Transaction, error) {
	fee, err := b.Fee()
	if err != nil {
		return nil, err
	}
	if fee < 0 {
		return nil, fmt.Errorf("%w: short by %v", ErrInsufficientFunds, -fee)
	}

	bundle := b.tze.Build()
	if bundle == nil && len(b.tx.TxOut) == 0 {
		return nil, ErrEmptyTransaction
	}
	logrus.Debugf("[Build] 未授权 TZE 捆绑包:\n%s", spew.Sdump(bundle))

	// 透明部分此后不再改变
	ctx, err := newContext(b.tx.Copy(), bundle)
	if err != nil {
		return nil, err
	}

	witnesses, err := b.tze.CreateWitnesses(ctx)
	if err != nil {
		logrus.Errorf("[Build] 生成 TZE 见证失败:\t%v", err)
		return nil, err
	}

	authorized, err := tze.Authorize(bundle, witnesses)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		Tx:   ctx.Tx,
		Tze:  authorized,
		Fee:  fee,
		txid: ctx.SigHash(),
	}
	logrus.Infof("[Build] 交易 %s 构建完成，费用 %v", tx.TxID(), fee)
	return tx, nil
}
