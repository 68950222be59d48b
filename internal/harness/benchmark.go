package harness

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yss-community/strategyharness/internal/domain"
	"github.com/yss-community/strategyharness/internal/metrics"
)

var benchmarkLog = logrus.WithField("component", "benchmark")

// BenchmarkConfig 基准运行配置
type BenchmarkConfig struct {
	Spins                int           // 决策步数，默认 1000
	Timeout              time.Duration // 单次 PlaceBet 超时上限，默认 1 秒（唯一的取消路径）
	PerformanceThreshold float64       // 吞吐阈值（决策/秒），默认 100
	StrictPerformance    bool          // 为 true 时吞吐不达标视为硬失败
	Seed                 int64         // 合成序列种子
}

// applyDefaults 填充零值配置
func (c *BenchmarkConfig) applyDefaults() {
	if c.Spins <= 0 {
		c.Spins = 1000
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	if c.PerformanceThreshold <= 0 {
		c.PerformanceThreshold = 100
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
}

// BenchmarkResult 基准结果：吞吐与行为统计
type BenchmarkResult struct {
	Steps              int             `json:"steps"`               // 实际完成的决策步数
	BetCount           int             `json:"bet_count"`           // 下注决策次数
	NoBetCount         int             `json:"no_bet_count"`        // 不下注决策次数
	TotalStaked        decimal.Decimal `json:"total_staked"`        // 累计注额
	MinStake           decimal.Decimal `json:"min_stake"`           // 单次最小总注
	MaxStake           decimal.Decimal `json:"max_stake"`           // 单次最大总注
	MeanStake          decimal.Decimal `json:"mean_stake"`          // 平均总注（按下注次数）
	DistinctLabels     int             `json:"distinct_labels"`     // 使用过的不同标签数
	Elapsed            time.Duration   `json:"elapsed_ns"`          // 计时段耗时
	DecisionsPerSecond float64         `json:"decisions_per_second"`
	Issues             []Issue         `json:"issues,omitempty"` // PerformanceWarning / RuntimeFailure
	Failed             bool            `json:"failed"`           // 运行期故障（panic 或超时）
}

// BenchmarkRunner 基准运行器
// 单线程同步执行：一个策略跑完才轮到下一个，保证吞吐测量不受并发干扰
type BenchmarkRunner struct {
	cfg BenchmarkConfig
}

// NewBenchmarkRunner 创建基准运行器
func NewBenchmarkRunner(cfg BenchmarkConfig) *BenchmarkRunner {
	cfg.applyDefaults()
	return &BenchmarkRunner{cfg: cfg}
}

// Run 对单个策略实例执行基准测试
// 合成历史单调增长；策略在计时段内发生未处理故障或超时时，
// 记为 RuntimeFailure 且吞吐按 0 处理（不参与均值）
func (r *BenchmarkRunner) Run(ctx context.Context, id string, strategy Strategy, defaults StrategyDefaults) *BenchmarkResult {
	metrics.BenchmarkRuns.Add(1)

	result := &BenchmarkResult{
		TotalStaked: decimal.Zero,
		MinStake:    decimal.Zero,
		MaxStake:    decimal.Zero,
		MeanStake:   decimal.Zero,
	}

	if err := safeInitialize(strategy, defaults); err != nil {
		result.Failed = true
		result.Issues = append(result.Issues, NewIssue(RuntimeFailure, "InitializeState faulted: %v", err))
		metrics.RuntimeFailures.Add(1)
		return result
	}

	gen := NewGenerator(r.cfg.Seed)
	gs := domain.NewGameState(defaults.Bankroll())
	labels := make(map[domain.BetLabel]struct{})

	start := time.Now()
	for step := 0; step < r.cfg.Spins; step++ {
		if err := ctx.Err(); err != nil {
			result.Failed = true
			result.Issues = append(result.Issues, NewIssue(RuntimeFailure, "run cancelled: %v", err))
			metrics.RuntimeFailures.Add(1)
			return result
		}

		decision, err := r.timedPlaceBet(ctx, strategy, gs.Clone())
		if err != nil {
			result.Failed = true
			result.Issues = append(result.Issues, NewIssue(RuntimeFailure, "step %d: %v", step, err))
			metrics.RuntimeFailures.Add(1)
			benchmarkLog.Warnf("strategy %s aborted at step %d: %v", id, step, err)
			return result
		}

		result.Steps++
		if decision.IsNoBet() {
			result.NoBetCount++
		} else {
			total := decision.Total()
			result.BetCount++
			result.TotalStaked = result.TotalStaked.Add(total)
			if result.BetCount == 1 || total.LessThan(result.MinStake) {
				result.MinStake = total
			}
			if total.GreaterThan(result.MaxStake) {
				result.MaxStake = total
			}
			for _, label := range decision.Labels() {
				labels[label] = struct{}{}
			}
			gs.TotalBet = gs.TotalBet.Add(total)
		}

		gs = gen.GrowState(gs)
	}
	result.Elapsed = time.Since(start)

	result.DistinctLabels = len(labels)
	if result.BetCount > 0 {
		result.MeanStake = result.TotalStaked.Div(decimal.NewFromInt(int64(result.BetCount)))
	}
	if result.Elapsed > 0 {
		result.DecisionsPerSecond = float64(result.Steps) / result.Elapsed.Seconds()
	}

	if result.DecisionsPerSecond < r.cfg.PerformanceThreshold {
		issue := NewIssue(PerformanceWarning,
			"throughput %.1f decisions/s below threshold %.1f",
			result.DecisionsPerSecond, r.cfg.PerformanceThreshold)
		result.Issues = append(result.Issues, issue)
		if r.cfg.StrictPerformance {
			result.Failed = true
		}
		benchmarkLog.Warnf("strategy %s: %s", id, issue.Message)
	}

	benchmarkLog.Infof("strategy %s: %d steps, %d bets, %.1f decisions/s",
		id, result.Steps, result.BetCount, result.DecisionsPerSecond)
	return result
}

// timedPlaceBet 在超时看门狗下调用 PlaceBet
// 超时后放弃该次调用（策略 goroutine 被遗弃，实例随整个 run 一起丢弃），
// 这是运行器唯一的取消路径
func (r *BenchmarkRunner) timedPlaceBet(ctx context.Context, strategy Strategy, gs *domain.GameState) (domain.BetDecision, error) {
	type outcome struct {
		decision domain.BetDecision
		err      error
	}
	ch := make(chan outcome, 1)

	go func() {
		decision, err := safePlaceBet(strategy, gs)
		ch <- outcome{decision: decision, err: err}
	}()

	timer := time.NewTimer(r.cfg.Timeout)
	defer timer.Stop()

	select {
	case out := <-ch:
		return out.decision, out.err
	case <-timer.C:
		return nil, errTimeout(r.cfg.Timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// errTimeout 超时错误
func errTimeout(limit time.Duration) error {
	return NewIssueError(RuntimeFailure, "PlaceBet did not return within %s (timeout)", limit)
}
