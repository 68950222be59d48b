package template

import (
	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/domain"
	"github.com/yss-community/strategyharness/internal/harness"
)

const ID = "template"

// 取消下面的注释以让策略进入发现流程：
// func init() { harness.RegisterStrategy(ID, &TemplateStrategy{}) }

// TemplateStrategy 最小策略骨架
// - 类型名必须以 Strategy 结尾（发现约定）
// - GetDefaults 必须包含 contributor_name 与 strategy_description
// - PlaceBet 对任何合法 GameState 都要能返回（内部故障退化为不下注）
type TemplateStrategy struct {
	baseBet decimal.Decimal
}

// GetDefaults 类型级别默认配置
func (s *TemplateStrategy) GetDefaults() harness.StrategyDefaults {
	return harness.StrategyDefaults{
		"contributor_name":     "your-github-username",
		"strategy_description": "One sentence describing the idea",
		"bankroll":             1000,
		"base_bet":             10,
	}
}

// InitializeState 基于配置建立内部状态
func (s *TemplateStrategy) InitializeState(cfg harness.StrategyDefaults) error {
	s.baseBet = cfg.BaseBet()
	return nil
}

// PlaceBet 固定在红色位下基础注额
func (s *TemplateStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	if s.baseBet.GreaterThan(gs.CurrentBalance) {
		return domain.NoBet()
	}
	return domain.BetDecision{domain.BetRed: s.baseBet}
}
