package domain

// Outcome 轮盘开奖结果（0-36）
type Outcome int

const (
	// MinOutcome 最小开奖数字
	MinOutcome Outcome = 0
	// MaxOutcome 最大开奖数字
	MaxOutcome Outcome = 36
)

// redNumbers 欧式轮盘红色数字集合
var redNumbers = map[Outcome]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// IsValid 验证结果是否在有效范围内
func (o Outcome) IsValid() bool {
	return o >= MinOutcome && o <= MaxOutcome
}

// IsRed 是否红色数字
func (o Outcome) IsRed() bool {
	return redNumbers[o]
}

// IsBlack 是否黑色数字（0 既不是红也不是黑）
func (o Outcome) IsBlack() bool {
	return o != 0 && o.IsValid() && !redNumbers[o]
}

// IsEven 是否偶数（0 不算偶数赔付）
func (o Outcome) IsEven() bool {
	return o != 0 && o%2 == 0
}

// IsOdd 是否奇数
func (o Outcome) IsOdd() bool {
	return o%2 == 1
}
