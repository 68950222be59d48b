package domain

import "github.com/shopspring/decimal"

// GameState 策略决策时可见的游戏快照（只读）
// 由基准运行器在每个决策点重新构造，策略不得修改
type GameState struct {
	History        []Outcome       // 历史开奖序列（按时间排序）
	LastResult     *Outcome        // 最近一次开奖结果（没有开奖时为 nil）
	CurrentBalance decimal.Decimal // 当前余额（接受下注后不得为负）
	TotalBet       decimal.Decimal // 本次会话累计下注金额
	SpinCount      int             // 已开奖次数，恒等于 len(History)
}

// NewGameState 创建初始游戏状态
func NewGameState(balance decimal.Decimal) *GameState {
	return &GameState{
		History:        []Outcome{},
		CurrentBalance: balance,
		TotalBet:       decimal.Zero,
	}
}

// WithResult 追加一次开奖结果，返回新的快照（不修改原状态）
func (gs *GameState) WithResult(result Outcome) *GameState {
	history := make([]Outcome, len(gs.History), len(gs.History)+1)
	copy(history, gs.History)
	history = append(history, result)

	last := result
	return &GameState{
		History:        history,
		LastResult:     &last,
		CurrentBalance: gs.CurrentBalance,
		TotalBet:       gs.TotalBet,
		SpinCount:      len(history),
	}
}

// WithBalance 返回替换余额后的新快照
func (gs *GameState) WithBalance(balance decimal.Decimal) *GameState {
	clone := gs.Clone()
	clone.CurrentBalance = balance
	return clone
}

// Clone 深拷贝（保证策略拿到的视图与运行器内部状态隔离）
func (gs *GameState) Clone() *GameState {
	history := make([]Outcome, len(gs.History))
	copy(history, gs.History)

	var last *Outcome
	if gs.LastResult != nil {
		v := *gs.LastResult
		last = &v
	}
	return &GameState{
		History:        history,
		LastResult:     last,
		CurrentBalance: gs.CurrentBalance,
		TotalBet:       gs.TotalBet,
		SpinCount:      gs.SpinCount,
	}
}

// IsValid 验证不变量：SpinCount == len(History)，余额非负
func (gs *GameState) IsValid() bool {
	if gs.SpinCount != len(gs.History) {
		return false
	}
	if gs.CurrentBalance.IsNegative() {
		return false
	}
	if gs.SpinCount > 0 && gs.LastResult == nil {
		return false
	}
	return true
}
