package martingale

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yss-community/strategyharness/internal/domain"
	"github.com/yss-community/strategyharness/internal/harness"
)

const ID = "martingale"

var log = logrus.WithField("strategy", ID)

func init() { harness.RegisterStrategy(ID, &MartingaleStrategy{}) }

// MartingaleStrategy 红色位上的简单 Martingale 倍投
// 输则按倍数加注，赢则回到基础注额；连输达到上限后停止下注。
// 社区策略的最小示例：演示契约的三个操作与安全边界的处理方式
type MartingaleStrategy struct {
	baseBet    decimal.Decimal
	bankroll   decimal.Decimal
	maxLosses  int
	multiplier decimal.Decimal

	// ConsecutiveLosses / LastBetAmount 导出以便状态快照
	ConsecutiveLosses int             `json:"consecutive_losses"`
	LastBetAmount     decimal.Decimal `json:"last_bet_amount"`
}

// GetDefaults 类型级别默认配置
func (s *MartingaleStrategy) GetDefaults() harness.StrategyDefaults {
	return harness.StrategyDefaults{
		"contributor_name":       "YSS Team",
		"strategy_description":   "Simple Martingale progression on red",
		"bankroll":               1000,
		"base_bet":               10,
		"target_profit":          100,
		"max_consecutive_losses": 4,
		"progression_multiplier": 2.0,
	}
}

// InitializeState 基于配置建立内部状态
func (s *MartingaleStrategy) InitializeState(cfg harness.StrategyDefaults) error {
	s.baseBet = cfg.BaseBet()
	s.bankroll = cfg.Bankroll()

	s.maxLosses = 4
	if v, ok := cfg.Decimal("max_consecutive_losses"); ok {
		s.maxLosses = int(v.IntPart())
	}
	s.multiplier = decimal.NewFromInt(2)
	if v, ok := cfg.Decimal("progression_multiplier"); ok {
		s.multiplier = v
	}

	s.ConsecutiveLosses = 0
	s.LastBetAmount = decimal.Zero
	return nil
}

// Reset 重置回初始状态
func (s *MartingaleStrategy) Reset() error {
	s.ConsecutiveLosses = 0
	s.LastBetAmount = decimal.Zero
	return nil
}

// Info 展示用自述信息
func (s *MartingaleStrategy) Info() map[string]any {
	return map[string]any{
		"name":                   ID,
		"base_bet":               s.baseBet.String(),
		"bankroll":               s.bankroll.String(),
		"max_consecutive_losses": s.maxLosses,
		"progression_multiplier": s.multiplier.String(),
	}
}

// PlaceBet 根据上一次开奖结果决定注额
func (s *MartingaleStrategy) PlaceBet(gs *domain.GameState) domain.BetDecision {
	// 首注
	if gs.LastResult == nil {
		if s.baseBet.GreaterThan(gs.CurrentBalance) {
			return domain.NoBet()
		}
		s.LastBetAmount = s.baseBet
		return domain.BetDecision{domain.BetRed: s.baseBet}
	}

	var bet decimal.Decimal
	if gs.LastResult.IsRed() {
		// 赢：回到基础注额
		s.ConsecutiveLosses = 0
		bet = s.baseBet
	} else {
		// 输：按倍数加注
		s.ConsecutiveLosses++
		if s.ConsecutiveLosses >= s.maxLosses {
			log.Debugf("max consecutive losses reached (%d), sitting out", s.ConsecutiveLosses)
			return domain.NoBet()
		}
		bet = s.LastBetAmount.Mul(s.multiplier)
		if bet.IsZero() {
			bet = s.baseBet
		}
	}

	// 安全边界：不超过余额，也不超过资金池的 1/4
	if bet.GreaterThan(gs.CurrentBalance) {
		return domain.NoBet()
	}
	if bet.GreaterThan(s.bankroll.Div(decimal.NewFromInt(4))) {
		return domain.NoBet()
	}

	s.LastBetAmount = bet
	return domain.BetDecision{domain.BetRed: bet}
}
