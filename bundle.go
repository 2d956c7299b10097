package tze

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ToPayload 由扩展的前置条件与见证类型实现，转换为 (模式, 载荷)
type ToPayload interface {
	ToPayload() (mode uint32, payload []byte)
}

// OutPoint 引用一个之前创建的 TZE 输出
type OutPoint struct {
	Hash  chainhash.Hash // 交易ID
	Index uint32         // 输出在交易中的索引
}

// NewOutPoint 创建并返回一个 OutPoint
func NewOutPoint(hash *chainhash.Hash, index uint32) OutPoint {
	return OutPoint{Hash: *hash, Index: index}
}

// String 返回 "hash:index" 形式的字符串
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// Precondition 输出上的守卫，说明花费该输出必须满足的扩展、模式与载荷
type Precondition struct {
	ExtensionID uint32
	Mode        uint32
	Payload     []byte
}

// TzeOut TZE 交易输出
type TzeOut struct {
	Value        Amount
	Precondition Precondition
}

// Unauthorized 未授权状态标记：见证只声明了模式，载荷尚未计算
type Unauthorized struct{}

// AuthData 见证构建完成后的授权载荷
type AuthData []byte

// Authorization 见证载荷可能的两种状态
type Authorization interface {
	Unauthorized | AuthData
}

// Witness 输入上的见证
type Witness[A Authorization] struct {
	ExtensionID uint32
	Mode        uint32
	Payload     A
}

// TzeIn TZE 交易输入
type TzeIn[A Authorization] struct {
	PrevOut OutPoint
	Witness Witness[A]
}

// NewTzeIn 创建一个未授权的输入
func NewTzeIn(prevout OutPoint, extensionID, mode uint32) TzeIn[Unauthorized] {
	return TzeIn[Unauthorized]{
		PrevOut: prevout,
		Witness: Witness[Unauthorized]{ExtensionID: extensionID, Mode: mode},
	}
}

// Bundle 属于同一笔交易的全部 TZE 输入和输出
type Bundle[A Authorization] struct {
	Vin  []TzeIn[A]
	Vout []TzeOut
}

// IsEmpty 捆绑包是否没有任何输入和输出
func (b *Bundle[A]) IsEmpty() bool {
	return b == nil || (len(b.Vin) == 0 && len(b.Vout) == 0)
}

// Clone 深度拷贝捆绑包
func (b *Bundle[A]) Clone() *Bundle[A] {
	if b == nil {
		return nil
	}
	out := &Bundle[A]{
		Vin:  make([]TzeIn[A], len(b.Vin)),
		Vout: make([]TzeOut, len(b.Vout)),
	}
	for i, in := range b.Vin {
		out.Vin[i] = in
		out.Vin[i].Witness.Payload = clonePayload(in.Witness.Payload)
	}
	for i, o := range b.Vout {
		out.Vout[i] = o.clone()
	}
	return out
}

// Authorize 将 CreateWitnesses 返回的授权数据按输入顺序附加到未授权捆绑包上
func Authorize(b *Bundle[Unauthorized], auth []AuthData) (*Bundle[AuthData], error) {
	if b == nil {
		if len(auth) != 0 {
			return nil, ErrWitnessCountMismatch
		}
		return nil, nil
	}
	if len(auth) != len(b.Vin) {
		return nil, fmt.Errorf("%w: %d inputs, %d witnesses", ErrWitnessCountMismatch, len(b.Vin), len(auth))
	}

	out := &Bundle[AuthData]{
		Vin:  make([]TzeIn[AuthData], len(b.Vin)),
		Vout: make([]TzeOut, len(b.Vout)),
	}
	for i, in := range b.Vin {
		out.Vin[i] = TzeIn[AuthData]{
			PrevOut: in.PrevOut,
			Witness: Witness[AuthData]{
				ExtensionID: in.Witness.ExtensionID,
				Mode:        in.Witness.Mode,
				Payload:     append(AuthData(nil), auth[i]...),
			},
		}
	}
	for i, o := range b.Vout {
		out.Vout[i] = o.clone()
	}
	return out, nil
}

// Unauthorize 去掉见证载荷，得到对应的未授权捆绑包
func Unauthorize(b *Bundle[AuthData]) *Bundle[Unauthorized] {
	if b == nil {
		return nil
	}
	out := &Bundle[Unauthorized]{
		Vin:  make([]TzeIn[Unauthorized], len(b.Vin)),
		Vout: make([]TzeOut, len(b.Vout)),
	}
	for i, in := range b.Vin {
		out.Vin[i] = NewTzeIn(in.PrevOut, in.Witness.ExtensionID, in.Witness.Mode)
	}
	for i, o := range b.Vout {
		out.Vout[i] = o.clone()
	}
	return out
}

// SigDigest 对捆绑包的未授权编码做双重 SHA256，见证载荷不参与计算
func (b *Bundle[A]) SigDigest() chainhash.Hash {
	var buf bytes.Buffer
	if err := writeBundle(&buf, b, false); err != nil {
		// bytes.Buffer 的写入不会失败
		panic(err)
	}
	return chainhash.DoubleHashH(buf.Bytes())
}

// String 返回捆绑包的可读表示形式，便于调试和日志记录
func (b *Bundle[A]) String() string {
	if b == nil {
		return "---TzeBundle: <none>"
	}
	var lines []string
	lines = append(lines, "---TzeBundle:")
	for i, in := range b.Vin {
		lines = append(lines, fmt.Sprintf("	Input (%d):", i))
		lines = append(lines, fmt.Sprintf("		PrevOut: %s", in.PrevOut))
		lines = append(lines, fmt.Sprintf("		Extension: %d Mode: %d", in.Witness.ExtensionID, in.Witness.Mode))
		if payload, ok := any(in.Witness.Payload).(AuthData); ok {
			lines = append(lines, fmt.Sprintf("		Witness: %x", []byte(payload)))
		}
	}
	for i, out := range b.Vout {
		lines = append(lines, fmt.Sprintf("	Output (%d):", i))
		lines = append(lines, fmt.Sprintf("		Value: %s", out.Value))
		lines = append(lines, fmt.Sprintf("		Extension: %d Mode: %d", out.Precondition.ExtensionID, out.Precondition.Mode))
		lines = append(lines, fmt.Sprintf("		Precondition: %x", out.Precondition.Payload))
	}
	return strings.Join(lines, "\n")
}

func (o TzeOut) clone() TzeOut {
	o.Precondition.Payload = append([]byte(nil), o.Precondition.Payload...)
	return o
}

func clonePayload[A Authorization](p A) A {
	if auth, ok := any(p).(AuthData); ok {
		return any(append(AuthData(nil), auth...)).(A)
	}
	return p
}
