package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/qinglongcn/tze"
	"github.com/qinglongcn/tze/extensions/demo"
	"github.com/qinglongcn/tze/extensions/sigext"
	"github.com/qinglongcn/tze/store"
	"github.com/qinglongcn/tze/txbuilder"
	"github.com/qinglongcn/tze/wallet"
)

type RunDemoInput struct {
	fx.In

	Opt    *Options       // 选项配置
	UTXOs  *store.UTXOSet // 未花费输出集合
	Wallet *wallet.Wallet // 钱包
}

// RunDemo 注册演示流程：
// 花费钱包的签名输出，支付一笔透明输出并创建哈希锁 Open 输出；
// 再把 Open 输出花费为 Close 输出；最后把 Close 输出花费回钱包。
func RunDemo(lc fx.Lifecycle, input RunDemoInput) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return runDemo(input, os.Stdout)
		},
	})
}

type ListOutputsInput struct {
	fx.In

	UTXOs *store.UTXOSet // 未花费输出集合
}

// ListOutputs 注册打印所有未花费 TZE 输出的流程
func ListOutputs(lc fx.Lifecycle, input ListOutputsInput) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return listOutputs(input.UTXOs, os.Stdout)
		},
	})
}

func runDemo(input RunDemoInput, w io.Writer) error {
	opt := input.Opt
	priv, err := input.Wallet.PrivateKey(0)
	if err != nil {
		return err
	}
	payTo := opt.PayTo
	if payTo == "" {
		addr, err := input.Wallet.Address(1, opt.Params())
		if err != nil {
			return err
		}
		payTo = addr.EncodeAddress()
	}

	op, coin, err := fundingOutput(input.UTXOs, opt, priv.PubKey())
	if err != nil {
		return err
	}
	logrus.Infof("[RunDemo] 使用输出 %s，金额 %s", op, coin.Value)

	openPre := [32]byte(chainhash.HashH([]byte(opt.InstanceId + "/open")))
	closePre := [32]byte(chainhash.HashH([]byte(opt.InstanceId + "/close")))
	lock := tze.Amount(opt.Pay)
	fee := tze.Amount(opt.Fee)

	// 1. 签名输出 -> 透明输出 + Open 输出 + 找零
	b := txbuilder.NewBuilder(opt.Params(), input.UTXOs)
	if err := b.AddTzeInput(sigext.ExtensionID, sigext.ModeSchnorr, op, sigext.Signer[*txbuilder.Context](priv)); err != nil {
		return err
	}
	if err := b.AddTransparentOutput(payTo, opt.Pay); err != nil {
		return err
	}
	if err := b.AddTzeOutput(demo.ExtensionID, lock, demo.Open(openPre)); err != nil {
		return err
	}
	change, ok := tze.SumAmounts(coin.Value, -tze.Amount(opt.Pay), -lock, -fee)
	if !ok || change.IsNegative() {
		return fmt.Errorf("输出 %s 的金额 %s 不足", op, coin.Value)
	}
	if change.IsPositive() {
		if err := b.AddTzeOutput(sigext.ExtensionID, change, sigext.PayToPubKey(priv.PubKey())); err != nil {
			return err
		}
	}
	openTx, err := submit(input.UTXOs, b, w)
	if err != nil {
		return err
	}

	// 2. Open -> Close
	openTxID := openTx.TxID()
	b = txbuilder.NewBuilder(opt.Params(), input.UTXOs)
	if err := b.AddTzeInput(demo.ExtensionID, demo.ModeOpen, tze.NewOutPoint(&openTxID, 0), demo.WitnessBuilder[*txbuilder.Context](demo.OpenWitness(openPre))); err != nil {
		return err
	}
	if err := b.AddTzeOutput(demo.ExtensionID, lock-fee, demo.Close(closePre)); err != nil {
		return err
	}
	closeTx, err := submit(input.UTXOs, b, w)
	if err != nil {
		return err
	}

	// 3. Close -> 签名输出
	closeTxID := closeTx.TxID()
	b = txbuilder.NewBuilder(opt.Params(), input.UTXOs)
	if err := b.AddTzeInput(demo.ExtensionID, demo.ModeClose, tze.NewOutPoint(&closeTxID, 0), demo.WitnessBuilder[*txbuilder.Context](demo.CloseWitness(closePre))); err != nil {
		return err
	}
	if err := b.AddTzeOutput(sigext.ExtensionID, lock-2*fee, sigext.PayToPubKey(priv.PubKey())); err != nil {
		return err
	}
	if _, err := submit(input.UTXOs, b, w); err != nil {
		return err
	}

	logrus.Infof("[RunDemo] 演示完成")
	return nil
}

// fundingOutput 找到属于 pub 的最大签名输出，金额不足时注入一个新的输出
func fundingOutput(utxos *store.UTXOSet, opt *Options, pub *btcec.PublicKey) (tze.OutPoint, tze.TzeOut, error) {
	outs, err := utxos.FindByExtension(sigext.ExtensionID)
	if err != nil {
		return tze.OutPoint{}, tze.TzeOut{}, err
	}

	var (
		bestOp  tze.OutPoint
		bestOut tze.TzeOut
		found   bool
	)
	// 前置条件只保存 x 坐标，按序列化后的字节比较
	owner := schnorr.SerializePubKey(pub)
	for op, out := range outs {
		if out.Precondition.Mode != sigext.ModeSchnorr || !bytes.Equal(out.Precondition.Payload, owner) {
			continue
		}
		if !found || out.Value > bestOut.Value {
			bestOp, bestOut, found = op, out, true
		}
	}
	if found && bestOut.Value.ToBtcutil() >= opt.required() {
		return bestOp, bestOut, nil
	}

	// 每次注入使用新的 OutPoint，否则会重建出与之前相同的交易
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return tze.OutPoint{}, tze.TzeOut{}, err
	}
	mode, payload := sigext.PayToPubKey(pub).ToPayload()
	op := tze.OutPoint{Hash: chainhash.HashH(append([]byte("faucet/"+opt.InstanceId+"/"), nonce...))}
	out := tze.TzeOut{
		Value:        tze.Amount(opt.Faucet),
		Precondition: tze.Precondition{ExtensionID: sigext.ExtensionID, Mode: mode, Payload: payload},
	}
	if err := utxos.Put(op, out); err != nil {
		return tze.OutPoint{}, tze.TzeOut{}, err
	}
	logrus.Infof("[RunDemo] 注入输出 %s，金额 %s", op, out.Value)
	return op, out, nil
}

// submit 构建交易，验证所有 TZE 输入后应用到集合
func submit(utxos *store.UTXOSet, b *txbuilder.Builder, w io.Writer) (*txbuilder.Transaction, error) {
	tx, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := txbuilder.DefaultVerifier().Verify(tx, utxos); err != nil {
		logrus.Errorf("[submit] 交易 %s 验证失败:\t%v", tx.TxID(), err)
		return nil, err
	}
	if err := utxos.Apply(tx.TxID(), tx.Tze); err != nil {
		return nil, err
	}
	fmt.Fprintln(w, tx)
	return tx, nil
}

func listOutputs(utxos *store.UTXOSet, w io.Writer) error {
	for _, ext := range []uint32{demo.ExtensionID, sigext.ExtensionID} {
		outs, err := utxos.FindByExtension(ext)
		if err != nil {
			return err
		}

		ops := make([]tze.OutPoint, 0, len(outs))
		for op := range outs {
			ops = append(ops, op)
		}
		sort.Slice(ops, func(i, j int) bool { return ops[i].String() < ops[j].String() })

		for _, op := range ops {
			out := outs[op]
			fmt.Fprintf(w, "%s\text=%d mode=%d value=%s\n", op, ext, out.Precondition.Mode, out.Value)
			if logrus.IsLevelEnabled(logrus.DebugLevel) {
				logrus.Debug(spew.Sdump(out))
			}
		}
	}
	return nil
}
