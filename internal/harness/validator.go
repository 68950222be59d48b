package harness

import (
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yss-community/strategyharness/internal/domain"
	"github.com/yss-community/strategyharness/internal/metrics"
)

var validatorLog = logrus.WithField("component", "validator")

// determinismProbes 确定性检查使用的探针状态数量
const determinismProbes = 4

// CheckOutcome 单个类别的检查结果
type CheckOutcome struct {
	Passed bool    `json:"passed"`
	Issues []Issue `json:"issues,omitempty"`
}

// ValidationResult 校验结果：按类别聚合，创建后不再修改
type ValidationResult struct {
	// Checked 实际执行过的类别（按固定顺序；前一类失败则短路后续类别）
	Checked  []Category                 `json:"checked"`
	Outcomes map[Category]*CheckOutcome `json:"outcomes"`
}

// Passed 是否所有类别都通过
func (r *ValidationResult) Passed() bool {
	if len(r.Checked) < len(Categories) {
		return false
	}
	for _, outcome := range r.Outcomes {
		if !outcome.Passed {
			return false
		}
	}
	return true
}

// Issues 汇总所有诊断（按类别顺序）
func (r *ValidationResult) Issues() []Issue {
	var issues []Issue
	for _, cat := range r.Checked {
		if outcome := r.Outcomes[cat]; outcome != nil {
			issues = append(issues, outcome.Issues...)
		}
	}
	return issues
}

// Validator 策略校验器
// 类别按固定顺序执行，首个失败类别之后短路，但类别内部报告全部失败
type Validator struct {
	registry   *Registry
	multiplier decimal.Decimal // "合理注额" 上限倍数（相对 base_bet）
	seed       int64
}

// NewValidator 创建校验器
func NewValidator(registry *Registry, reasonableBetMultiplier decimal.Decimal, seed int64) *Validator {
	if reasonableBetMultiplier.LessThanOrEqual(decimal.Zero) {
		reasonableBetMultiplier = decimal.NewFromInt(10)
	}
	return &Validator{
		registry:   registry,
		multiplier: reasonableBetMultiplier,
		seed:       seed,
	}
}

// Validate 校验一个候选策略
// 任一类别失败的策略会被排除在基准测试与注册表晋升之外，
// 但失败始终会出现在报告里，不会被静默丢弃
func (v *Validator) Validate(c Candidate) *ValidationResult {
	result := &ValidationResult{
		Outcomes: make(map[Category]*CheckOutcome),
	}
	metrics.ValidationsRun.Add(1)

	run := func(cat Category, check func() []Issue) bool {
		issues := check()
		result.Checked = append(result.Checked, cat)
		result.Outcomes[cat] = &CheckOutcome{Passed: len(issues) == 0, Issues: issues}
		if len(issues) > 0 {
			validatorLog.Warnf("strategy %s failed %s check: %d issue(s)", c.ID, cat, len(issues))
			return false
		}
		return true
	}

	if !run(CategoryInterface, func() []Issue { return v.checkInterface(c) }) {
		return result
	}

	strategy := c.Instance.(Strategy)

	var defaults StrategyDefaults
	if !run(CategoryMetadata, func() []Issue {
		var issues []Issue
		defaults, issues = v.checkMetadata(c, strategy)
		return issues
	}) {
		return result
	}

	if !run(CategorySafety, func() []Issue { return v.checkSafety(c, strategy, defaults) }) {
		return result
	}

	// 安全电池探测会推进实例的内部状态；支持 Reset 的策略在类别之间复位，
	// 保证候选实例在校验结束后仍处于初始条件
	if r, ok := strategy.(Resetter); ok {
		if err := safeReset(r); err != nil {
			validatorLog.Warnf("strategy %s reset failed: %v", c.ID, err)
		}
	}

	run(CategoryDeterminism, func() []Issue { return v.checkDeterminism(c, defaults) })
	return result
}

// operationSpec 契约操作的签名描述
type operationSpec struct {
	name string
	in   []reflect.Type
	out  []reflect.Type
}

var contractOperations = []operationSpec{
	{
		name: "GetDefaults",
		out:  []reflect.Type{reflect.TypeOf(StrategyDefaults{})},
	},
	{
		name: "InitializeState",
		in:   []reflect.Type{reflect.TypeOf(StrategyDefaults{})},
		out:  []reflect.Type{reflect.TypeOf((*error)(nil)).Elem()},
	},
	{
		name: "PlaceBet",
		in:   []reflect.Type{reflect.TypeOf((*domain.GameState)(nil))},
		out:  []reflect.Type{reflect.TypeOf(domain.BetDecision{})},
	},
}

// checkInterface 结构化接口检查
// 不要求类型声明实现任何接口（对齐原始生态的 duck typing）：
// 只要三个契约操作的名称与签名齐全即可，缺失/畸形的操作逐一列出
func (v *Validator) checkInterface(c Candidate) []Issue {
	var issues []Issue
	value := reflect.ValueOf(c.Instance)

	for _, op := range contractOperations {
		method := value.MethodByName(op.name)
		if !method.IsValid() {
			issues = append(issues, NewIssue(InterfaceError, "missing operation %s", op.name))
			continue
		}

		typ := method.Type()
		if typ.NumIn() != len(op.in) || typ.NumOut() != len(op.out) {
			issues = append(issues, NewIssue(InterfaceError,
				"operation %s has wrong arity: got %d in / %d out, want %d in / %d out",
				op.name, typ.NumIn(), typ.NumOut(), len(op.in), len(op.out)))
			continue
		}
		for i, want := range op.in {
			if typ.In(i) != want {
				issues = append(issues, NewIssue(InterfaceError,
					"operation %s parameter %d has type %s, want %s", op.name, i, typ.In(i), want))
			}
		}
		for i, want := range op.out {
			if typ.Out(i) != want {
				issues = append(issues, NewIssue(InterfaceError,
					"operation %s result %d has type %s, want %s", op.name, i, typ.Out(i), want))
			}
		}
	}

	if len(issues) == 0 {
		if _, ok := c.Instance.(Strategy); !ok {
			issues = append(issues, NewIssue(InterfaceError, "type %s does not satisfy the strategy contract", c.TypeName))
		}
	}
	return issues
}

// checkMetadata 元数据检查：必需键非空，数值参数为正
func (v *Validator) checkMetadata(c Candidate, strategy Strategy) (StrategyDefaults, []Issue) {
	defaults, err := DefaultsFor(strategy)
	if err != nil {
		return nil, []Issue{NewIssue(MetadataError, "GetDefaults faulted: %v", err)}
	}
	if defaults == nil {
		return nil, []Issue{NewIssue(MetadataError, "GetDefaults returned nil")}
	}

	var issues []Issue
	for _, key := range []string{KeyContributorName, KeyStrategyDescription} {
		raw, present := defaults[key]
		if !present {
			issues = append(issues, NewIssue(MetadataError, "missing required metadata field: %s", key))
			continue
		}
		s, ok := raw.(string)
		if !ok || strings.TrimSpace(s) == "" {
			issues = append(issues, NewIssue(MetadataError, "required metadata field %s must be non-empty text", key))
		}
	}

	for _, key := range []string{KeyBankroll, KeyBaseBet} {
		if _, present := defaults[key]; !present {
			continue
		}
		value, ok := defaults.Decimal(key)
		if !ok {
			issues = append(issues, NewIssue(MetadataError, "metadata field %s must be numeric", key))
			continue
		}
		if value.LessThanOrEqual(decimal.Zero) {
			issues = append(issues, NewIssue(MetadataError, "metadata field %s must be positive, got %s", key, value))
		}
	}
	return defaults, issues
}

// checkSafety 安全检查：在合成状态电池上反复调用 PlaceBet，
// 断言注额非负、总注不超过余额、不超过"合理注额"上限、标签合法
func (v *Validator) checkSafety(c Candidate, strategy Strategy, defaults StrategyDefaults) []Issue {
	var issues []Issue

	if err := safeInitialize(strategy, defaults); err != nil {
		return []Issue{NewIssue(SafetyViolation, "InitializeState faulted: %v", err)}
	}

	ceiling := defaults.BaseBet().Mul(v.multiplier)
	gen := NewGenerator(v.seed)

	for _, battery := range gen.SafetyBattery(defaults.Bankroll(), defaults.BaseBet()) {
		decision, err := safePlaceBet(strategy, battery.State)
		if err != nil {
			issues = append(issues, NewIssue(SafetyViolation,
				"PlaceBet faulted on %s state (spins=%d balance=%s): %v",
				battery.Name, battery.State.SpinCount, battery.State.CurrentBalance, err))
			continue
		}
		issues = append(issues, checkDecision(battery, decision, ceiling)...)
	}

	if len(issues) > 0 {
		metrics.SafetyViolations.Add(int64(len(issues)))
	}
	return issues
}

// checkDecision 校验单次决策的安全约束
func checkDecision(battery BatteryCase, decision domain.BetDecision, ceiling decimal.Decimal) []Issue {
	if decision.IsNoBet() {
		return nil
	}

	var issues []Issue
	for label, stake := range decision {
		if !label.IsValid() {
			issues = append(issues, NewIssue(SafetyViolation,
				"unknown bet label %q on %s state (spins=%d)", label, battery.Name, battery.State.SpinCount))
		}
		if stake.IsNegative() {
			issues = append(issues, NewIssue(SafetyViolation,
				"negative stake %s on %s on %s state (spins=%d)", stake, label, battery.Name, battery.State.SpinCount))
		}
	}

	total := decision.Total()
	if total.GreaterThan(battery.State.CurrentBalance) {
		issues = append(issues, NewIssue(SafetyViolation,
			"total stake %s exceeds balance %s on %s state (spins=%d, decision: %s)",
			total, battery.State.CurrentBalance, battery.Name, battery.State.SpinCount, decision))
	}
	if total.GreaterThan(ceiling) {
		issues = append(issues, NewIssue(SafetyViolation,
			"total stake %s exceeds reasonable-bet ceiling %s on %s state (spins=%d, decision: %s)",
			total, ceiling, battery.Name, battery.State.SpinCount, decision))
	}
	return issues
}

// checkDeterminism 确定性检查
// 同一 GameState、同样的初始化后状态，两次 PlaceBet 必须给出相同决策；
// 声明 stochastic: true 的策略豁免
func (v *Validator) checkDeterminism(c Candidate, defaults StrategyDefaults) []Issue {
	if defaults.Stochastic() {
		validatorLog.Debugf("strategy %s declares stochastic behavior, determinism check exempted", c.ID)
		return nil
	}

	var issues []Issue
	gen := NewGenerator(v.seed)

	for i := 0; i < determinismProbes; i++ {
		probe := gen.stateWithHistory(defaults.Bankroll(), gen.rng.Intn(32))

		first, err := v.probeFreshInstance(c, defaults, probe)
		if err != nil {
			issues = append(issues, NewIssue(NonDeterminismError, "probe %d faulted: %v", i, err))
			continue
		}
		second, err := v.probeFreshInstance(c, defaults, probe)
		if err != nil {
			issues = append(issues, NewIssue(NonDeterminismError, "probe %d faulted: %v", i, err))
			continue
		}

		if !first.Equal(second) {
			issues = append(issues, NewIssue(NonDeterminismError,
				"identical state (spins=%d) produced different decisions: %s vs %s (declare stochastic: true if intentional)",
				probe.SpinCount, first, second))
		}
	}
	return issues
}

// probeFreshInstance 新建实例、初始化后做一次决策
// 新建保证两次调用的"初始化后内部状态"完全一致
func (v *Validator) probeFreshInstance(c Candidate, defaults StrategyDefaults, gs *domain.GameState) (domain.BetDecision, error) {
	instance, err := v.registry.NewInstance(c.ID)
	if err != nil {
		return nil, err
	}
	strategy, ok := instance.(Strategy)
	if !ok {
		return nil, errRecovered("contract", "instance lost conformance")
	}
	if err := safeInitialize(strategy, defaults); err != nil {
		return nil, err
	}
	return safePlaceBet(strategy, gs.Clone())
}

// safeReset 在恢复 panic 的守护下调用 Reset
func safeReset(r Resetter) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errRecovered("Reset", rec)
		}
	}()
	return r.Reset()
}

// safeInitialize 在恢复 panic 的守护下调用 InitializeState
func safeInitialize(s Strategy, defaults StrategyDefaults) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errRecovered("InitializeState", r)
		}
	}()
	return s.InitializeState(defaults.Clone())
}

// safePlaceBet 在恢复 panic 的守护下调用 PlaceBet
// 策略内部故障在此转换为错误，永远不会导致整个运行崩溃
func safePlaceBet(s Strategy, gs *domain.GameState) (decision domain.BetDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = domain.NoBet()
			err = errRecovered("PlaceBet", r)
		}
	}()
	return s.PlaceBet(gs), nil
}
