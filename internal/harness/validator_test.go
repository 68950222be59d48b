package harness

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(registry *Registry) *Validator {
	return NewValidator(registry, decimal.NewFromInt(10), DefaultSeed)
}

func validateOne(t *testing.T, id string, prototype any) *ValidationResult {
	t.Helper()
	ResetDefaultsCache()

	registry, candidates := registerCandidates(map[string]any{id: prototype})
	c, ok := candidateByID(candidates, id)
	require.True(t, ok, "candidate %s not discovered", id)

	return newTestValidator(registry).Validate(c)
}

func hasKind(issues []Issue, kind IssueKind) bool {
	for _, issue := range issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

func TestValidateCompliantStrategy(t *testing.T) {
	result := validateOne(t, "flat_red", &flatRedStrategy{})

	assert.True(t, result.Passed())
	assert.Equal(t, Categories, result.Checked, "all categories must run for a compliant strategy")
	assert.Empty(t, result.Issues())
}

func TestValidateMissingContributorName(t *testing.T) {
	result := validateOne(t, "no_contributor", &noContributorStrategy{})

	assert.False(t, result.Passed())
	require.True(t, hasKind(result.Issues(), MetadataError))

	// 接口检查通过，元数据失败后短路，安全与确定性不再执行
	assert.Equal(t, []Category{CategoryInterface, CategoryMetadata}, result.Checked)
	assert.True(t, result.Outcomes[CategoryInterface].Passed)
	assert.False(t, result.Outcomes[CategoryMetadata].Passed)
	assert.Nil(t, result.Outcomes[CategorySafety])
}

func TestValidateOverbetIsSafetyViolation(t *testing.T) {
	result := validateOne(t, "overbet", &overbetStrategy{})

	assert.False(t, result.Passed())
	assert.True(t, hasKind(result.Issues(), SafetyViolation))
	assert.Equal(t, []Category{CategoryInterface, CategoryMetadata, CategorySafety}, result.Checked)
}

func TestValidatePanicIsContainedAsSafetyViolation(t *testing.T) {
	result := validateOne(t, "panicker", &panicStrategy{})

	assert.False(t, result.Passed())
	require.True(t, hasKind(result.Issues(), SafetyViolation))
	for _, issue := range result.Outcomes[CategorySafety].Issues {
		assert.Contains(t, issue.Message, "PlaceBet faulted")
	}
}

func TestValidateSharedStateFailsDeterminism(t *testing.T) {
	flakyCalls = 0
	result := validateOne(t, "flaky", &flakyStrategy{})

	assert.False(t, result.Passed())
	assert.True(t, hasKind(result.Issues(), NonDeterminismError))
	assert.Equal(t, Categories, result.Checked, "determinism is the last category, nothing short-circuits it")
}

func TestValidateStochasticExemptsDeterminism(t *testing.T) {
	flakyCalls = 0
	result := validateOne(t, "stochastic_flaky", &stochasticFlakyStrategy{})

	assert.True(t, result.Passed(), "stochastic: true exempts the determinism check")
	assert.True(t, result.Outcomes[CategoryDeterminism].Passed)
}

func TestValidateMissingOperations(t *testing.T) {
	result := validateOne(t, "broken", &brokenStrategy{})

	assert.False(t, result.Passed())
	assert.Equal(t, []Category{CategoryInterface}, result.Checked)

	issues := result.Outcomes[CategoryInterface].Issues
	require.Len(t, issues, 2, "both missing operations must be reported, not just the first")
	for _, issue := range issues {
		assert.Equal(t, InterfaceError, issue.Kind)
	}
}

func TestValidateResetsResetterBetweenCategories(t *testing.T) {
	resetCalls = 0
	result := validateOne(t, "resettable", &resettableStrategy{})

	assert.True(t, result.Passed())
	assert.Equal(t, 1, resetCalls, "safety probing leaves state behind, Reset restores initial conditions")
}

func TestValidationResultPassedRequiresAllCategories(t *testing.T) {
	partial := &ValidationResult{
		Checked: []Category{CategoryInterface},
		Outcomes: map[Category]*CheckOutcome{
			CategoryInterface: {Passed: true},
		},
	}
	assert.False(t, partial.Passed(), "a short-circuited run never counts as passed")
}
