package harness

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yss-community/strategyharness/pkg/persistence"
)

var harnessLog = logrus.WithField("component", "harness")

// RunConfig 一次完整运行（校验 + 基准）的配置
type RunConfig struct {
	Spins                   int             // 基准决策步数，默认 1000
	StrategiesDir           string          // 每策略配置覆盖文件目录（<id>.yaml，可为空）
	ReasonableBetMultiplier decimal.Decimal // 合理注额上限倍数，默认 10
	PerformanceThreshold    float64         // 吞吐阈值（决策/秒），默认 100
	Timeout                 time.Duration   // 单次 PlaceBet 超时，默认 1 秒
	StrictPerformance       bool            // 吞吐不达标是否视为硬失败
	Seed                    int64           // 合成序列种子，默认 42

	// Persistence 可选：运行结束后为每个策略保存状态快照
	Persistence persistence.Service
}

// applyDefaults 填充零值配置
func (c *RunConfig) applyDefaults() {
	if c.Spins <= 0 {
		c.Spins = 1000
	}
	if c.ReasonableBetMultiplier.LessThanOrEqual(decimal.Zero) {
		c.ReasonableBetMultiplier = decimal.NewFromInt(10)
	}
	if c.PerformanceThreshold <= 0 {
		c.PerformanceThreshold = 100
	}
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
}

// Run 对全局注册表执行完整的发现 -> 校验 -> 基准流程
func Run(ctx context.Context, cfg RunConfig) (*Report, error) {
	return RunWithRegistry(ctx, cfg, GlobalRegistry)
}

// RunWithRegistry 对指定注册表执行完整流程
// 串行执行：吞吐测量要求每个策略独占运行，不受并发工作的干扰。
// 策略内部的任何故障都转换为记录内的诊断；只有编排自身的故障才会中止整个运行
func RunWithRegistry(ctx context.Context, cfg RunConfig, registry *Registry) (*Report, error) {
	cfg.applyDefaults()

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Seed:        cfg.Seed,
		Spins:       cfg.Spins,
	}

	validator := NewValidator(registry, cfg.ReasonableBetMultiplier, cfg.Seed)
	runner := NewBenchmarkRunner(BenchmarkConfig{
		Spins:                cfg.Spins,
		Timeout:              cfg.Timeout,
		PerformanceThreshold: cfg.PerformanceThreshold,
		StrictPerformance:    cfg.StrictPerformance,
		Seed:                 cfg.Seed,
	})

	for _, candidate := range Discover(registry) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "harness run cancelled")
		}

		record := Record{ID: candidate.ID, TypeName: candidate.TypeName}
		record.Validation = validator.Validate(candidate)

		if strategy, ok := candidate.Instance.(Strategy); ok {
			if defaults, err := DefaultsFor(strategy); err == nil {
				record.Contributor = defaults.Contributor()
				record.Description = defaults.Description()
			}
		}
		if provider, ok := candidate.Instance.(InfoProvider); ok {
			record.Info = safeInfo(provider)
		}

		if record.Validated() {
			strategy := candidate.Instance.(Strategy)
			defaults, err := DefaultsFor(strategy)
			if err == nil {
				merged := mergeOverrides(candidate.ID, defaults, cfg.StrategiesDir)
				// 基准使用全新实例，避免校验阶段遗留的内部状态影响测量；
				// benchmarkFresh 把该实例写回 candidate，快照保存的是跑完基准的状态
				record.Benchmark = benchmarkFresh(ctx, runner, registry, &candidate, merged)
				snapshotState(cfg.Persistence, candidate)
			}
		} else {
			harnessLog.Warnf("strategy %s excluded from benchmarking", candidate.ID)
		}

		report.Records = append(report.Records, record)
	}

	harnessLog.Infof("run %s complete: %d strategies, %d validated", report.RunID, len(report.Records), report.Validated())
	return report, nil
}

// benchmarkFresh 用全新实例执行基准，并把该实例写回 candidate
// 后续的状态快照由此保存基准运行后的内部状态，而不是校验阶段遗留的状态
func benchmarkFresh(ctx context.Context, runner *BenchmarkRunner, registry *Registry, candidate *Candidate, cfg StrategyDefaults) *BenchmarkResult {
	instance, err := registry.NewInstance(candidate.ID)
	if err != nil {
		result := &BenchmarkResult{Failed: true}
		result.Issues = append(result.Issues, NewIssue(RuntimeFailure, "instantiation failed: %v", err))
		return result
	}
	strategy := instance.(Strategy)
	candidate.Instance = instance
	return runner.Run(ctx, candidate.ID, strategy, cfg)
}

// mergeOverrides 加载 strategiesDir/<id>.{yaml,yml,json} 并覆盖默认配置
// 对齐原始生态的 "kwargs 覆盖 defaults" 语义；文件缺失不是错误
func mergeOverrides(id string, defaults StrategyDefaults, dir string) StrategyDefaults {
	merged := defaults.Clone()
	if dir == "" {
		return merged
	}

	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, id+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		overrides := make(map[string]any)
		if ext == ".json" {
			err = json.Unmarshal(data, &overrides)
		} else {
			err = yaml.Unmarshal(data, &overrides)
		}
		if err != nil {
			harnessLog.Warnf("ignore malformed overrides %s: %v", path, err)
			continue
		}

		for k, v := range overrides {
			merged[k] = v
		}
		harnessLog.Infof("strategy %s: merged %d override(s) from %s", id, len(overrides), path)
		return merged
	}
	return merged
}

// safeInfo 在恢复 panic 的守护下取 Info（展示信息故障不影响记录）
func safeInfo(provider InfoProvider) (info map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			harnessLog.Warnf("strategy Info panicked: %v", r)
			info = nil
		}
	}()
	return provider.Info()
}

// snapshotState 运行结束后保存策略状态快照（尽力而为）
func snapshotState(service persistence.Service, candidate Candidate) {
	if service == nil {
		return
	}
	store := service.NewStore("strategy", candidate.ID, "state")
	if err := store.Save(candidate.Instance); err != nil {
		harnessLog.Warnf("snapshot strategy %s state failed: %v", candidate.ID, err)
	}
}
