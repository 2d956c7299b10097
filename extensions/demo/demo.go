// Package demo 实现一个演示用的哈希锁扩展
//
// 该扩展有两种模式：Open 与 Close。
// Open 前置条件承诺 h1 = H(preimage1)，使用 preimage1 花费；
// Close 前置条件承诺 h2 = H(preimage2)，使用 preimage2 花费。
// 花费 Open 输出的交易必须恰好创建一个 Close 输出，从而形成 open -> close 的两步链。
package demo

import (
	"bytes"
	"errors"
	"fmt"

	blake2b "github.com/minio/blake2b-simd"

	"github.com/qinglongcn/tze"
)

// ExtensionID 演示扩展的扩展ID
const ExtensionID uint32 = 0

// 演示扩展的模式
const (
	ModeOpen  uint32 = 0
	ModeClose uint32 = 1
)

// 个性化字符串，区分两个阶段的哈希
const (
	openPersonalization  = "demo_pc_h1_perso"
	closePersonalization = "demo_pc_h2_perso"
)

var (
	// ErrInvalidMode 未知的模式
	ErrInvalidMode = errors.New("demo: invalid mode")
	// ErrInvalidPayload 载荷长度不正确
	ErrInvalidPayload = errors.New("demo: invalid payload length")
	// ErrModeMismatch 见证与前置条件的模式不一致
	ErrModeMismatch = errors.New("demo: witness mode does not match precondition mode")
	// ErrHashMismatch 原像的哈希与前置条件不一致
	ErrHashMismatch = errors.New("demo: preimage does not match precondition hash")
	// ErrInvalidOutputs 花费 Open 输出的交易没有恰好创建一个 Close 输出
	ErrInvalidOutputs = errors.New("demo: open must be spent into exactly one close output")
)

// Precondition 演示扩展的前置条件
type Precondition struct {
	Mode uint32
	Hash [32]byte
}

// Open 创建承诺 preimage 的 Open 前置条件
func Open(preimage [32]byte) Precondition {
	return Precondition{Mode: ModeOpen, Hash: Hash(ModeOpen, preimage)}
}

// Close 创建承诺 preimage 的 Close 前置条件
func Close(preimage [32]byte) Precondition {
	return Precondition{Mode: ModeClose, Hash: Hash(ModeClose, preimage)}
}

// ToPayload 实现 tze.ToPayload
func (p Precondition) ToPayload() (uint32, []byte) {
	return p.Mode, append([]byte(nil), p.Hash[:]...)
}

// PreconditionFromPayload 从 (模式, 载荷) 解析前置条件
func PreconditionFromPayload(mode uint32, payload []byte) (Precondition, error) {
	if mode != ModeOpen && mode != ModeClose {
		return Precondition{}, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	if len(payload) != 32 {
		return Precondition{}, fmt.Errorf("%w: %d", ErrInvalidPayload, len(payload))
	}
	p := Precondition{Mode: mode}
	copy(p.Hash[:], payload)
	return p, nil
}

// Witness 演示扩展的见证，即对应阶段的原像
type Witness struct {
	Mode     uint32
	Preimage [32]byte
}

// OpenWitness 花费 Open 前置条件的见证
func OpenWitness(preimage [32]byte) Witness {
	return Witness{Mode: ModeOpen, Preimage: preimage}
}

// CloseWitness 花费 Close 前置条件的见证
func CloseWitness(preimage [32]byte) Witness {
	return Witness{Mode: ModeClose, Preimage: preimage}
}

// ToPayload 实现 tze.ToPayload
func (w Witness) ToPayload() (uint32, []byte) {
	return w.Mode, append([]byte(nil), w.Preimage[:]...)
}

// WitnessFromPayload 从 (模式, 载荷) 解析见证
func WitnessFromPayload(mode uint32, payload []byte) (Witness, error) {
	if mode != ModeOpen && mode != ModeClose {
		return Witness{}, fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	if len(payload) != 32 {
		return Witness{}, fmt.Errorf("%w: %d", ErrInvalidPayload, len(payload))
	}
	w := Witness{Mode: mode}
	copy(w.Preimage[:], payload)
	return w, nil
}

// Hash 使用个性化 BLAKE2b-256 计算某个阶段原像的哈希
func Hash(mode uint32, preimage [32]byte) [32]byte {
	person := openPersonalization
	if mode == ModeClose {
		person = closePersonalization
	}
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: []byte(person)})
	if err != nil {
		// 配置是常量，不会失败
		panic(err)
	}
	h.Write(preimage[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// WitnessBuilder 返回一个总是给出 w 的见证构建器
// 哈希锁见证不依赖最终交易，原像在添加输入时就已知。
func WitnessBuilder[C any](w Witness) tze.WitnessBuilder[C] {
	return tze.WitnessBuilderFunc[C](func(C) (tze.ToPayload, error) {
		return w, nil
	})
}

// Verify 检查见证是否满足前置条件，outputs 是花费交易创建的全部 TZE 输出
func Verify(p Precondition, w Witness, outputs []tze.TzeOut) error {
	if p.Mode != w.Mode {
		return ErrModeMismatch
	}
	want := Hash(w.Mode, w.Preimage)
	if !bytes.Equal(want[:], p.Hash[:]) {
		return ErrHashMismatch
	}
	if p.Mode == ModeOpen {
		if len(outputs) != 1 || outputs[0].Precondition.ExtensionID != ExtensionID || outputs[0].Precondition.Mode != ModeClose {
			return ErrInvalidOutputs
		}
	}
	return nil
}

// VerifyInput 从原始的前置条件与见证解析后调用 Verify
func VerifyInput(pre tze.Precondition, wit tze.Witness[tze.AuthData], outputs []tze.TzeOut) error {
	p, err := PreconditionFromPayload(pre.Mode, pre.Payload)
	if err != nil {
		return err
	}
	w, err := WitnessFromPayload(wit.Mode, wit.Payload)
	if err != nil {
		return err
	}
	return Verify(p, w, outputs)
}
