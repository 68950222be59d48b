package harness

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/domain"
)

// 测试夹具：覆盖契约的各种合规与违规形态。
// 类型名都以 Strategy 结尾以通过发现阶段的命名约定。

// flatRedStrategy 无条件在红色位押基础注额（余额不足时不下注）
type flatRedStrategy struct {
	base decimal.Decimal
}

func (s *flatRedStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "flat bet on red",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
	}
}

func (s *flatRedStrategy) InitializeState(cfg StrategyDefaults) error {
	s.base = cfg.BaseBet()
	return nil
}

func (s *flatRedStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	if s.base.GreaterThan(gs.CurrentBalance) {
		return domain.NoBet()
	}
	return domain.BetDecision{domain.BetRed: s.base}
}

func (s *flatRedStrategy) Info() map[string]any {
	return map[string]any{"name": "flat_red", "base_bet": s.base.String()}
}

// noContributorStrategy 缺少 contributor_name 元数据
type noContributorStrategy struct {
	flatRedStrategy
}

func (s *noContributorStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyStrategyDescription: "metadata is incomplete",
		KeyBaseBet:             10,
	}
}

// overbetStrategy 总注为余额的两倍（安全违规）
type overbetStrategy struct{}

func (s *overbetStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "bets twice the balance",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
	}
}

func (s *overbetStrategy) InitializeState(cfg StrategyDefaults) error { return nil }

func (s *overbetStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	stake := gs.CurrentBalance.Mul(decimal.NewFromInt(2))
	if stake.IsZero() {
		stake = decimal.NewFromInt(1)
	}
	return domain.BetDecision{domain.BetRed: stake}
}

// flakyCalls 跨实例共享的调用计数：新建实例也无法复位，
// 同一状态下两次探测必然得到不同决策
var flakyCalls int

// flakyStrategy 未声明 stochastic 却依赖共享可变状态（确定性违规）
type flakyStrategy struct{}

func (s *flakyStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "call-order dependent without stochastic flag",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
	}
}

func (s *flakyStrategy) InitializeState(cfg StrategyDefaults) error { return nil }

func (s *flakyStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	if gs.CurrentBalance.LessThan(decimal.NewFromInt(1)) {
		return domain.NoBet()
	}
	flakyCalls++
	if flakyCalls%2 == 0 {
		return domain.BetDecision{domain.BetBlack: decimal.NewFromInt(1)}
	}
	return domain.BetDecision{domain.BetRed: decimal.NewFromInt(1)}
}

// spinCountingStrategy 统计 PlaceBet 调用次数（导出字段进入状态快照）
// 决策本身与计数无关，对相同状态保持确定性
type spinCountingStrategy struct {
	base decimal.Decimal

	Calls int `json:"calls"`
}

func (s *spinCountingStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "counts PlaceBet invocations",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
	}
}

func (s *spinCountingStrategy) InitializeState(cfg StrategyDefaults) error {
	s.base = cfg.BaseBet()
	return nil
}

func (s *spinCountingStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	s.Calls++
	if s.base.GreaterThan(gs.CurrentBalance) {
		return domain.NoBet()
	}
	return domain.BetDecision{domain.BetRed: s.base}
}

// resetCalls 记录校验器对 Resetter 能力的调用次数
var resetCalls int

// resettableStrategy 实现可选的 Reset 能力
type resettableStrategy struct {
	flatRedStrategy
}

func (s *resettableStrategy) Reset() error {
	resetCalls++
	s.base = decimal.Zero
	return nil
}

// stochasticFlakyStrategy 与 flakyStrategy 行为相同但声明了 stochastic
type stochasticFlakyStrategy struct {
	flakyStrategy
}

func (s *stochasticFlakyStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "declared stochastic, determinism exempt",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
		KeyStochastic:          true,
	}
}

// panicStrategy PlaceBet 永远 panic
type panicStrategy struct{}

func (s *panicStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "always panics",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
	}
}

func (s *panicStrategy) InitializeState(cfg StrategyDefaults) error { return nil }

func (s *panicStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	panic("deliberate fault")
}

// sleepyStrategy PlaceBet 永远超过超时上限
type sleepyStrategy struct {
	delay time.Duration
}

func (s *sleepyStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "sleeps past the timeout",
		KeyBankroll:            1000,
		KeyBaseBet:             10,
	}
}

func (s *sleepyStrategy) InitializeState(cfg StrategyDefaults) error {
	if s.delay == 0 {
		s.delay = 250 * time.Millisecond
	}
	return nil
}

func (s *sleepyStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	time.Sleep(s.delay)
	return domain.NoBet()
}

// brokenStrategy 缺少 PlaceBet / InitializeState（接口违规）
type brokenStrategy struct{}

func (s *brokenStrategy) GetDefaults() StrategyDefaults {
	return StrategyDefaults{
		KeyContributorName:     "tester",
		KeyStrategyDescription: "missing operations",
	}
}

// helper 在本地注册表上构造候选
func registerCandidates(prototypes map[string]any) (*Registry, []Candidate) {
	registry := NewRegistry()
	for id, p := range prototypes {
		registry.Register(id, p)
	}
	return registry, Discover(registry)
}

func candidateByID(candidates []Candidate, id string) (Candidate, bool) {
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}
