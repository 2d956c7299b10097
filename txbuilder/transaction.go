package txbuilder

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/qinglongcn/tze"
)

// Transaction 已授权的交易：透明部分加上 TZE 捆绑包
type Transaction struct {
	Tx   *wire.MsgTx               // 透明部分
	Tze  *tze.Bundle[tze.AuthData] // TZE 捆绑包，没有 TZE 组件时为 nil
	Fee  btcutil.Amount            // 交易费用
	txid chainhash.Hash
}

// TxID 交易ID，不依赖见证载荷
func (t *Transaction) TxID() chainhash.Hash {
	return t.txid
}

// Serialize 编码交易：透明部分后接 TZE 捆绑包
// 透明部分使用非隔离见证编码，没有透明输入的交易才能被正确解码。
func (t *Transaction) Serialize(w io.Writer) error {
	if err := t.Tx.SerializeNoWitness(w); err != nil {
		return err
	}
	return tze.WriteBundle(w, t.Tze)
}

// Bytes 返回交易的编码
func (t *Transaction) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeTransaction 解码交易，并重新计算交易ID
func DeserializeTransaction(r io.Reader) (*Transaction, error) {
	msgTx := new(wire.MsgTx)
	if err := msgTx.DeserializeNoWitness(r); err != nil {
		return nil, err
	}
	bundle, err := tze.ReadBundle(r)
	if err != nil {
		return nil, err
	}
	ctx, err := newContext(msgTx, tze.Unauthorize(bundle))
	if err != nil {
		return nil, err
	}
	return &Transaction{Tx: msgTx, Tze: bundle, txid: ctx.SigHash()}, nil
}

// String 返回交易的可读表示形式，便于调试和日志记录
func (t *Transaction) String() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("---Transaction: %s", t.txid))
	lines = append(lines, fmt.Sprintf("	Fee: %v", t.Fee))

	// 遍历所有透明输出，添加输出的详细信息
	for i, out := range t.Tx.TxOut {
		lines = append(lines, fmt.Sprintf("	Output (%d):", i))
		lines = append(lines, fmt.Sprintf("		Value: %v", btcutil.Amount(out.Value)))
		disasm, err := txscript.DisasmString(out.PkScript)
		if err != nil {
			disasm = fmt.Sprintf("%x", out.PkScript)
		}
		lines = append(lines, fmt.Sprintf("		PkScript: %s", disasm))
	}
	lines = append(lines, t.Tze.String())

	return strings.Join(lines, "\n")
}
