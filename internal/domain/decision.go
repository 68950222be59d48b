package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BetLabel 下注位置标签（固定词汇表）
type BetLabel string

const (
	BetRed   BetLabel = "red"
	BetBlack BetLabel = "black"
	BetEven  BetLabel = "even"
	BetOdd   BetLabel = "odd"
	BetLow   BetLabel = "low"  // 1-18
	BetHigh  BetLabel = "high" // 19-36

	BetDozen1 BetLabel = "dozen_1" // 1-12
	BetDozen2 BetLabel = "dozen_2" // 13-24
	BetDozen3 BetLabel = "dozen_3" // 25-36

	BetColumn1 BetLabel = "column_1"
	BetColumn2 BetLabel = "column_2"
	BetColumn3 BetLabel = "column_3"
)

// simpleLabels 非组合型标签集合
var simpleLabels = map[BetLabel]bool{
	BetRed: true, BetBlack: true, BetEven: true, BetOdd: true,
	BetLow: true, BetHigh: true,
	BetDozen1: true, BetDozen2: true, BetDozen3: true,
	BetColumn1: true, BetColumn2: true, BetColumn3: true,
}

// Straight 单号直注标签，例如 Straight(17) -> "straight_17"
func Straight(n Outcome) BetLabel {
	return BetLabel(fmt.Sprintf("straight_%d", int(n)))
}

// IsValid 验证标签是否属于固定词汇表
// 组合型标签（split/street/corner/straight）用前缀 + 数字编码
func (l BetLabel) IsValid() bool {
	if simpleLabels[l] {
		return true
	}
	s := string(l)
	for _, prefix := range []string{"straight_", "split_", "street_", "corner_"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			return validNumberList(rest)
		}
	}
	return false
}

// validNumberList 校验 "17" 或 "17_18_20_21" 形式的号码串
// 每段最多两位数字（0-36 的编码上限），超长段直接拒绝，避免累加溢出回绕
func validNumberList(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, "_") {
		if part == "" || len(part) > 2 {
			return false
		}
		n := 0
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
			n = n*10 + int(r-'0')
		}
		if !Outcome(n).IsValid() {
			return false
		}
	}
	return true
}

// BetDecision 一次决策结果：标签 -> 注额
// nil map 表示本轮不下注；策略每次决策都必须返回新的实例
type BetDecision map[BetLabel]decimal.Decimal

// NoBet 不下注
func NoBet() BetDecision { return nil }

// Single 单一注额，默认押红（与原始生态的数值返回语义一致）
func Single(amount decimal.Decimal) BetDecision {
	return BetDecision{BetRed: amount}
}

// IsNoBet 是否为不下注
func (d BetDecision) IsNoBet() bool { return len(d) == 0 }

// Total 所有位置的注额之和
func (d BetDecision) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range d {
		total = total.Add(amount)
	}
	return total
}

// Labels 按字典序返回使用的标签（确定性输出，便于比较与报告）
func (d BetDecision) Labels() []BetLabel {
	labels := make([]BetLabel, 0, len(d))
	for l := range d {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Equal 判断两次决策是否等价（用于确定性检查）
func (d BetDecision) Equal(other BetDecision) bool {
	if len(d) != len(other) {
		return false
	}
	for label, amount := range d {
		o, ok := other[label]
		if !ok || !amount.Equal(o) {
			return false
		}
	}
	return true
}

// String 生成形如 "red=10, straight_17=2" 的描述（按标签排序）
func (d BetDecision) String() string {
	if d.IsNoBet() {
		return "no bet"
	}
	parts := make([]string, 0, len(d))
	for _, label := range d.Labels() {
		parts = append(parts, fmt.Sprintf("%s=%s", label, d[label]))
	}
	return strings.Join(parts, ", ")
}

// Clone 深拷贝决策（运行器保留统计时使用，避免引用策略内部的 map）
func (d BetDecision) Clone() BetDecision {
	if d == nil {
		return nil
	}
	clone := make(BetDecision, len(d))
	for label, amount := range d {
		clone[label] = amount
	}
	return clone
}
