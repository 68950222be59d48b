package harness

import (
	"reflect"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/domain"
)

// 必需的元数据键
const (
	KeyContributorName     = "contributor_name"
	KeyStrategyDescription = "strategy_description"
	KeyBankroll            = "bankroll"
	KeyBaseBet             = "base_bet"
	KeyStochastic          = "stochastic"
)

// 默认配置值（与原始生态一致）
var (
	DefaultBankroll = decimal.NewFromInt(1000)
	DefaultBaseBet  = decimal.NewFromInt(10)
)

// StrategyDefaults 策略默认配置（类型级别，每个策略类型只计算一次）
// 必须包含 contributor_name 与 strategy_description 两个非空文本键，
// 其余键为策略自定义的数值或文本参数
type StrategyDefaults map[string]any

// Strategy 策略契约：校验器和基准运行器只依赖这三个操作，
// 从不依赖具体实现
type Strategy interface {
	// GetDefaults 返回类型级别的默认配置（纯函数，不依赖实例状态）
	GetDefaults() StrategyDefaults
	// InitializeState 在构造后调用一次，基于配置建立内部可变状态；
	// 保证先于任何 PlaceBet 调用执行。配置显式传入，不走全局查找
	InitializeState(cfg StrategyDefaults) error
	// PlaceBet 根据当前可见状态返回决策；对任何合法 GameState 必须是全函数，
	// 内部故障应退化为不下注而不是向外抛出
	PlaceBet(gs *domain.GameState) domain.BetDecision
}

// Resetter 可选能力：把内部状态重置回初始条件
type Resetter interface {
	Reset() error
}

// InfoProvider 可选能力：提供展示用的策略信息
type InfoProvider interface {
	Info() map[string]any
}

// Contributor 返回贡献者名称（缺失或非文本时返回空串）
func (d StrategyDefaults) Contributor() string {
	s, _ := d[KeyContributorName].(string)
	return s
}

// Description 返回策略描述
func (d StrategyDefaults) Description() string {
	s, _ := d[KeyStrategyDescription].(string)
	return s
}

// Stochastic 策略是否声明了随机性（确定性检查豁免标记）
func (d StrategyDefaults) Stochastic() bool {
	b, _ := d[KeyStochastic].(bool)
	return b
}

// Bankroll 返回资金池配置，缺失时使用默认值
func (d StrategyDefaults) Bankroll() decimal.Decimal {
	if v, ok := d.Decimal(KeyBankroll); ok {
		return v
	}
	return DefaultBankroll
}

// BaseBet 返回基础注额配置，缺失时使用默认值
func (d StrategyDefaults) BaseBet() decimal.Decimal {
	if v, ok := d.Decimal(KeyBaseBet); ok {
		return v
	}
	return DefaultBaseBet
}

// Decimal 按键取数值参数，兼容 int / int64 / float64 / decimal.Decimal
func (d StrategyDefaults) Decimal(key string) (decimal.Decimal, bool) {
	switch v := d[key].(type) {
	case decimal.Decimal:
		return v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	default:
		return decimal.Zero, false
	}
}

// Clone 拷贝一份配置（缓存返回前使用，防止调用方改写缓存）
func (d StrategyDefaults) Clone() StrategyDefaults {
	clone := make(StrategyDefaults, len(d))
	for k, v := range d {
		clone[k] = v
	}
	return clone
}

// defaultsCache 类型级别默认配置缓存
// GetDefaults 语义来自原始生态的 classmethod：按策略类型计算一次，之后不再重复调用
var (
	defaultsCache   = make(map[reflect.Type]StrategyDefaults)
	defaultsCacheMu sync.Mutex
)

// DefaultsFor 返回策略类型的默认配置（带缓存）
// 策略的 GetDefaults 发生 panic 时返回错误，故障不向外传播
func DefaultsFor(s Strategy) (defaults StrategyDefaults, err error) {
	typ := reflect.TypeOf(s)

	defaultsCacheMu.Lock()
	if cached, ok := defaultsCache[typ]; ok {
		defaultsCacheMu.Unlock()
		return cached.Clone(), nil
	}
	defaultsCacheMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = errRecovered("GetDefaults", r)
		}
	}()

	defaults = s.GetDefaults()

	defaultsCacheMu.Lock()
	defaultsCache[typ] = defaults.Clone()
	defaultsCacheMu.Unlock()
	return defaults, nil
}

// ResetDefaultsCache 清空默认配置缓存（测试用）
func ResetDefaultsCache() {
	defaultsCacheMu.Lock()
	defer defaultsCacheMu.Unlock()
	defaultsCache = make(map[reflect.Type]StrategyDefaults)
}
