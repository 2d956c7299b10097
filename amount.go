package tze

import (
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
)

// MaxMoney 是单个金额允许的最大绝对值，单位为最小货币单位（21e6 * 1e8）
const MaxMoney = int64(btcutil.MaxSatoshi)

// Amount 表示一个有界的有符号金额，取值范围为 [-MaxMoney, MaxMoney]
type Amount int64

// ZeroAmount 零金额
const ZeroAmount Amount = 0

// NewAmount 根据整数值创建金额，超出范围时返回 ErrInvalidAmount
func NewAmount(v int64) (Amount, error) {
	if v < -MaxMoney || v > MaxMoney {
		return 0, ErrInvalidAmount
	}
	return Amount(v), nil
}

// NonNegativeAmount 创建一个非负金额
func NonNegativeAmount(v int64) (Amount, error) {
	if v < 0 {
		return 0, ErrInvalidAmount
	}
	return NewAmount(v)
}

// inRange 检查金额是否在有效范围内
func inRange(v int64) bool {
	return v >= -MaxMoney && v <= MaxMoney
}

// IsNegative 金额是否为负数
func (a Amount) IsNegative() bool {
	return a < 0
}

// IsPositive 金额是否为正数
func (a Amount) IsPositive() bool {
	return a > 0
}

// Add 带检查的加法，结果超出有效范围时 ok 为 false
func (a Amount) Add(b Amount) (Amount, bool) {
	// 两个有效金额之和不会溢出 int64，只需检查范围
	sum := int64(a) + int64(b)
	if !inRange(sum) {
		return 0, false
	}
	return Amount(sum), true
}

// Sub 带检查的减法，结果超出有效范围时 ok 为 false
func (a Amount) Sub(b Amount) (Amount, bool) {
	diff := int64(a) - int64(b)
	if !inRange(diff) {
		return 0, false
	}
	return Amount(diff), true
}

// SumAmounts 逐项累加金额，任何一步超出范围即返回 ok 为 false
// 空序列的和为零
func SumAmounts(amounts ...Amount) (Amount, bool) {
	total := ZeroAmount
	for _, v := range amounts {
		if !inRange(int64(v)) {
			return 0, false
		}
		var ok bool
		if total, ok = total.Add(v); !ok {
			return 0, false
		}
	}
	return total, true
}

// ToBtcutil 转换为 btcutil.Amount，便于与透明交易部分互操作
func (a Amount) ToBtcutil() btcutil.Amount {
	return btcutil.Amount(a)
}

// String 以 ZEC 为单位格式化金额
func (a Amount) String() string {
	return strconv.FormatFloat(btcutil.Amount(a).ToBTC(), 'f', -1, 64) + " ZEC"
}
