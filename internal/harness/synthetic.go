package harness

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/domain"
)

// DefaultSeed 合成数据默认随机种子
// 原始基准脚本使用 seed=42 保证可复现，这里保持同一约定
const DefaultSeed int64 = 42

// maxBatteryHistory 安全检查电池中"最大历史长度"用例的历史条数
const maxBatteryHistory = 512

// randomBatteryStates 安全检查电池中追加的随机状态数量
const randomBatteryStates = 16

// Generator 可复现的合成 GameState 生成器
// 开奖结果在 [0,36] 上均匀分布，种子固定时输出序列完全确定
type Generator struct {
	rng *rand.Rand
}

// NewGenerator 创建生成器
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NextOutcome 生成下一个开奖结果
func (g *Generator) NextOutcome() domain.Outcome {
	return domain.Outcome(g.rng.Intn(int(domain.MaxOutcome) + 1))
}

// GrowState 在给定状态上追加一次开奖，返回新的快照
func (g *Generator) GrowState(gs *domain.GameState) *domain.GameState {
	return gs.WithResult(g.NextOutcome())
}

// stateWithHistory 生成带 n 条历史的状态
func (g *Generator) stateWithHistory(balance decimal.Decimal, n int) *domain.GameState {
	gs := domain.NewGameState(balance)
	for i := 0; i < n; i++ {
		gs = g.GrowState(gs)
	}
	return gs
}

// BatteryCase 安全检查电池中的一个用例
type BatteryCase struct {
	Name  string
	State *domain.GameState
}

// SafetyBattery 生成安全检查用的状态电池
// 固定覆盖：零余额、余额低于最小注额、最大历史长度，外加一组随机状态
func (g *Generator) SafetyBattery(bankroll, baseBet decimal.Decimal) []BatteryCase {
	cases := []BatteryCase{
		{Name: "zero balance", State: g.stateWithHistory(decimal.Zero, 3)},
		{Name: "balance below minimum stake", State: g.stateWithHistory(baseBet.Div(decimal.NewFromInt(2)), 3)},
		{Name: "maximum history length", State: g.stateWithHistory(bankroll, maxBatteryHistory)},
		{Name: "empty history", State: domain.NewGameState(bankroll)},
	}

	for i := 0; i < randomBatteryStates; i++ {
		n := g.rng.Intn(64)
		cases = append(cases, BatteryCase{
			Name:  "random",
			State: g.stateWithHistory(bankroll, n),
		})
	}
	return cases
}
