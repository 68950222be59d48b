package fibonacci

import (
	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/domain"
	"github.com/yss-community/strategyharness/internal/harness"
)

const ID = "fibonacci"

func init() { harness.RegisterStrategy(ID, &FibonacciStrategy{}) }

// maxProgressionIndex 斐波那契数列推进上限（防止注额越过安全上限）
const maxProgressionIndex = 5

// FibonacciStrategy 黑色位上的斐波那契递增
// 注额完全由可见历史推导（尾部连输长度决定数列下标），不携带实例状态，
// 因此对相同 GameState 天然确定
type FibonacciStrategy struct {
	baseBet  decimal.Decimal
	sequence []decimal.Decimal
}

// GetDefaults 类型级别默认配置
func (s *FibonacciStrategy) GetDefaults() harness.StrategyDefaults {
	return harness.StrategyDefaults{
		"contributor_name":     "YSS Community",
		"strategy_description": "Fibonacci progression on black, derived from visible history",
		"bankroll":             500,
		"base_bet":             5,
	}
}

// InitializeState 预计算数列
func (s *FibonacciStrategy) InitializeState(cfg harness.StrategyDefaults) error {
	s.baseBet = cfg.BaseBet()

	// 1, 1, 2, 3, 5, 8 ... 乘以基础注额
	s.sequence = make([]decimal.Decimal, maxProgressionIndex+1)
	a, b := decimal.NewFromInt(1), decimal.NewFromInt(1)
	for i := range s.sequence {
		s.sequence[i] = s.baseBet.Mul(a)
		a, b = b, a.Add(b)
	}
	return nil
}

// PlaceBet 尾部连输长度决定数列下标
func (s *FibonacciStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	streak := 0
	for i := len(gs.History) - 1; i >= 0; i-- {
		if gs.History[i].IsBlack() {
			break
		}
		streak++
	}

	if streak > maxProgressionIndex {
		// 连输过深，停手
		return domain.NoBet()
	}

	bet := s.sequence[streak]
	if bet.GreaterThan(gs.CurrentBalance) {
		return domain.NoBet()
	}
	return domain.BetDecision{domain.BetBlack: bet}
}
