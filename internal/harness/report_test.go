package harness

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func passedValidation() *ValidationResult {
	result := &ValidationResult{Outcomes: make(map[Category]*CheckOutcome)}
	for _, cat := range Categories {
		result.Checked = append(result.Checked, cat)
		result.Outcomes[cat] = &CheckOutcome{Passed: true}
	}
	return result
}

func renderFixtureReport() *Report {
	return &Report{
		RunID:       "run-0001",
		GeneratedAt: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Seed:        42,
		Spins:       1000,
		Records: []Record{
			{
				ID:          "flat_red",
				TypeName:    "flatRedStrategy",
				Contributor: "tester",
				Description: "flat bet on red",
				Validation:  passedValidation(),
				Benchmark: &BenchmarkResult{
					Steps:              1000,
					BetCount:           1000,
					NoBetCount:         0,
					TotalStaked:        decimal.NewFromInt(10000),
					MinStake:           decimal.NewFromInt(10),
					MaxStake:           decimal.NewFromInt(10),
					MeanStake:          decimal.NewFromInt(10),
					DistinctLabels:     1,
					Elapsed:            20 * time.Millisecond,
					DecisionsPerSecond: 50000,
				},
			},
			{
				ID:       "no_contributor",
				TypeName: "noContributorStrategy",
				Validation: &ValidationResult{
					Checked: []Category{CategoryInterface, CategoryMetadata},
					Outcomes: map[Category]*CheckOutcome{
						CategoryInterface: {Passed: true},
						CategoryMetadata: {Passed: false, Issues: []Issue{
							NewIssue(MetadataError, "missing required metadata field: %s", KeyContributorName),
						}},
					},
				},
			},
			{
				ID:          "panicker",
				TypeName:    "panicStrategy",
				Contributor: "tester",
				Description: "always panics",
				Validation:  passedValidation(),
				Benchmark: &BenchmarkResult{
					TotalStaked: decimal.Zero,
					MinStake:    decimal.Zero,
					MaxStake:    decimal.Zero,
					MeanStake:   decimal.Zero,
					Failed:      true,
					Issues: []Issue{
						NewIssue(RuntimeFailure, "step 0: strategy PlaceBet panicked: deliberate fault"),
					},
				},
			},
		},
	}
}

func TestReportValidatedCount(t *testing.T) {
	report := renderFixtureReport()

	// panicker 通过了校验（基准失败不改变校验结论），no_contributor 没有
	assert.Equal(t, 2, report.Validated())
	assert.True(t, report.Records[0].Validated())
	assert.False(t, report.Records[1].Validated())
}

func TestReportRenderTextGolden(t *testing.T) {
	report := renderFixtureReport()

	g := goldie.New(t)
	g.Assert(t, "report_render", []byte(report.RenderText()))
}

func TestReportRenderTextDeterministic(t *testing.T) {
	report := renderFixtureReport()
	assert.Equal(t, report.RenderText(), report.RenderText())
}
