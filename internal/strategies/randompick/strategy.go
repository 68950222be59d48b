package randompick

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/domain"
	"github.com/yss-community/strategyharness/internal/harness"
)

const ID = "randompick"

func init() { harness.RegisterStrategy(ID, &RandomPickStrategy{}) }

// RandomPickStrategy 每轮随机选一个直注号码
// 声明 stochastic: true，确定性检查豁免；注额恒为基础注额
type RandomPickStrategy struct {
	baseBet decimal.Decimal
	rng     *rand.Rand
}

// GetDefaults 类型级别默认配置
func (s *RandomPickStrategy) GetDefaults() harness.StrategyDefaults {
	return harness.StrategyDefaults{
		"contributor_name":     "YSS Community",
		"strategy_description": "Uniform random straight-number pick at a flat stake",
		"bankroll":             1000,
		"base_bet":             10,
		"stochastic":           true,
	}
}

// InitializeState 建立内部随机源
func (s *RandomPickStrategy) InitializeState(cfg harness.StrategyDefaults) error {
	s.baseBet = cfg.BaseBet()

	seed := int64(1)
	if v, ok := cfg.Decimal("seed"); ok {
		seed = v.IntPart()
	}
	s.rng = rand.New(rand.NewSource(seed))
	return nil
}

// PlaceBet 随机直注
func (s *RandomPickStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	if s.baseBet.GreaterThan(gs.CurrentBalance) {
		return domain.NoBet()
	}

	n := domain.Outcome(s.rng.Intn(int(domain.MaxOutcome) + 1))
	return domain.BetDecision{domain.Straight(n): s.baseBet}
}
