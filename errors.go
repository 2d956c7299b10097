package tze

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount 金额为负数或超出有效范围
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrBuilderConsumed 构建器已经在 CreateWitnesses 中被消费，不能再次使用
	ErrBuilderConsumed = errors.New("tze builder has already been consumed")

	// ErrNilWitness 见证构建函数返回了空见证且没有返回错误
	ErrNilWitness = errors.New("tze witness builder returned a nil witness")

	// ErrWitnessCountMismatch 授权数据的数量与输入数量不一致
	ErrWitnessCountMismatch = errors.New("tze witness count does not match input count")
)

// WitnessModeMismatchError 见证构建函数返回的模式与添加输入时声明的模式不一致
type WitnessModeMismatchError struct {
	Index    int    // 输入在捆绑包中的索引
	Declared uint32 // 添加输入时声明的模式
	Resolved uint32 // 见证构建函数实际返回的模式
}

func (e *WitnessModeMismatchError) Error() string {
	return fmt.Sprintf("TZE witness builder for input %d returned a mode that did not match the mode with which the input was initially constructed: expected = %d, actual = %d",
		e.Index, e.Declared, e.Resolved)
}

// IsWitnessModeMismatch 判断错误链中是否包含 WitnessModeMismatchError
func IsWitnessModeMismatch(err error) bool {
	var target *WitnessModeMismatchError
	return errors.As(err, &target)
}
