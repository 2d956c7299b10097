package tze

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/btcsuite/btcd/wire"
)

// 编码遵循 ZIP-222：扩展ID与模式为 CompactSize，载荷为带长度前缀的字节串，金额为 int64 小端序。
// CompactSize 读写复用 btcd/wire，协议版本对这些函数没有影响。
const pver = 0

const (
	// MaxPayloadSize 单个前置条件或见证载荷允许的最大字节数
	MaxPayloadSize = 1 << 16

	// maxBundleEntries 解码时允许的最大输入/输出数量
	maxBundleEntries = 1 << 16
)

// WriteOutPoint 编码 OutPoint：32 字节哈希 + 4 字节小端序索引
func WriteOutPoint(w io.Writer, op OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], op.Index)
	_, err := w.Write(buf[:])
	return err
}

// ReadOutPoint 解码 OutPoint
func ReadOutPoint(r io.Reader) (OutPoint, error) {
	var op OutPoint
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return op, err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return op, err
	}
	op.Index = binary.LittleEndian.Uint32(buf[:])
	return op, nil
}

// WriteTzeOut 编码 TZE 输出
func WriteTzeOut(w io.Writer, out TzeOut) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(out.Value))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	return writeExtensionData(w, out.Precondition.ExtensionID, out.Precondition.Mode, out.Precondition.Payload)
}

// ReadTzeOut 解码 TZE 输出，金额为负数或超出范围时返回 ErrInvalidAmount
func ReadTzeOut(r io.Reader) (TzeOut, error) {
	var out TzeOut
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return out, err
	}
	value, err := NonNegativeAmount(int64(binary.LittleEndian.Uint64(buf[:])))
	if err != nil {
		return out, err
	}
	out.Value = value

	extID, mode, payload, err := readExtensionData(r, "precondition payload")
	if err != nil {
		return out, err
	}
	out.Precondition = Precondition{ExtensionID: extID, Mode: mode, Payload: payload}
	return out, nil
}

// WriteBundle 编码已授权的捆绑包，包含见证载荷
func WriteBundle(w io.Writer, b *Bundle[AuthData]) error {
	return writeBundle(w, b, true)
}

// WriteUnauthorizedBundle 编码未授权的捆绑包，不包含见证载荷
func WriteUnauthorizedBundle(w io.Writer, b *Bundle[Unauthorized]) error {
	return writeBundle(w, b, false)
}

func writeBundle[A Authorization](w io.Writer, b *Bundle[A], withWitness bool) error {
	if b == nil {
		b = &Bundle[A]{}
	}
	if err := wire.WriteVarInt(w, pver, uint64(len(b.Vin))); err != nil {
		return err
	}
	for _, in := range b.Vin {
		if err := WriteOutPoint(w, in.PrevOut); err != nil {
			return err
		}
		var payload []byte
		if auth, ok := any(in.Witness.Payload).(AuthData); ok && withWitness {
			payload = auth
		}
		if withWitness {
			if err := writeExtensionData(w, in.Witness.ExtensionID, in.Witness.Mode, payload); err != nil {
				return err
			}
			continue
		}
		if err := wire.WriteVarInt(w, pver, uint64(in.Witness.ExtensionID)); err != nil {
			return err
		}
		if err := wire.WriteVarInt(w, pver, uint64(in.Witness.Mode)); err != nil {
			return err
		}
	}

	if err := wire.WriteVarInt(w, pver, uint64(len(b.Vout))); err != nil {
		return err
	}
	for _, out := range b.Vout {
		if err := WriteTzeOut(w, out); err != nil {
			return err
		}
	}
	return nil
}

// ReadBundle 解码已授权的捆绑包
// 空捆绑包（没有输入和输出）解码为 nil
func ReadBundle(r io.Reader) (*Bundle[AuthData], error) {
	nin, err := readCount(r, "tze inputs")
	if err != nil {
		return nil, err
	}
	b := &Bundle[AuthData]{Vin: make([]TzeIn[AuthData], 0, nin)}
	for i := uint64(0); i < nin; i++ {
		op, err := ReadOutPoint(r)
		if err != nil {
			return nil, err
		}
		extID, mode, payload, err := readExtensionData(r, "witness payload")
		if err != nil {
			return nil, err
		}
		b.Vin = append(b.Vin, TzeIn[AuthData]{
			PrevOut: op,
			Witness: Witness[AuthData]{ExtensionID: extID, Mode: mode, Payload: AuthData(payload)},
		})
	}

	nout, err := readCount(r, "tze outputs")
	if err != nil {
		return nil, err
	}
	b.Vout = make([]TzeOut, 0, nout)
	for i := uint64(0); i < nout; i++ {
		out, err := ReadTzeOut(r)
		if err != nil {
			return nil, err
		}
		b.Vout = append(b.Vout, out)
	}

	if b.IsEmpty() {
		return nil, nil
	}
	return b, nil
}

func writeExtensionData(w io.Writer, extensionID, mode uint32, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("tze payload of %d bytes exceeds maximum of %d", len(payload), MaxPayloadSize)
	}
	if err := wire.WriteVarInt(w, pver, uint64(extensionID)); err != nil {
		return err
	}
	if err := wire.WriteVarInt(w, pver, uint64(mode)); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, pver, payload)
}

func readExtensionData(r io.Reader, fieldName string) (uint32, uint32, []byte, error) {
	extID, err := readUint32Var(r, "extension id")
	if err != nil {
		return 0, 0, nil, err
	}
	mode, err := readUint32Var(r, "mode")
	if err != nil {
		return 0, 0, nil, err
	}
	payload, err := wire.ReadVarBytes(r, pver, MaxPayloadSize, fieldName)
	if err != nil {
		return 0, 0, nil, err
	}
	return extID, mode, payload, nil
}

func readUint32Var(r io.Reader, name string) (uint32, error) {
	v, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("tze %s %d overflows uint32", name, v)
	}
	return uint32(v), nil
}

func readCount(r io.Reader, name string) (uint64, error) {
	n, err := wire.ReadVarInt(r, pver)
	if err != nil {
		return 0, err
	}
	if n > maxBundleEntries {
		return 0, fmt.Errorf("too many %s: %d, max %d", name, n, maxBundleEntries)
	}
	return n, nil
}
