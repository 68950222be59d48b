package harness

import (
	"fmt"
	"strings"
	"time"
)

// Record 单个候选策略的报告记录
type Record struct {
	ID          string            `json:"id"`
	TypeName    string            `json:"type_name"`
	Contributor string            `json:"contributor,omitempty"`
	Description string            `json:"description,omitempty"`
	Info        map[string]any    `json:"info,omitempty"` // InfoProvider 策略的自述信息
	Validation  *ValidationResult `json:"validation"`
	Benchmark   *BenchmarkResult  `json:"benchmark,omitempty"` // 校验未通过时为 nil
}

// Validated 是否通过全部校验
func (r *Record) Validated() bool {
	return r.Validation != nil && r.Validation.Passed()
}

// Report 一次完整运行的汇总报告
// 报告对所有发现的候选都会给出记录：单个坏策略不会阻塞其余策略的评估
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Seed        int64     `json:"seed"`
	Spins       int       `json:"spins"`
	Records     []Record  `json:"records"`
}

// Validated 通过校验的记录数
func (r *Report) Validated() int {
	n := 0
	for i := range r.Records {
		if r.Records[i].Validated() {
			n++
		}
	}
	return n
}

// RenderText 渲染为纯文本摘要（报告的结构化形式走 JSON / sqlite）
func (r *Report) RenderText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "strategy harness report %s\n", r.RunID)
	fmt.Fprintf(&b, "spins=%d seed=%d strategies=%d validated=%d\n", r.Spins, r.Seed, len(r.Records), r.Validated())
	b.WriteString(strings.Repeat("-", 72) + "\n")

	for i := range r.Records {
		rec := &r.Records[i]
		fmt.Fprintf(&b, "%s (%s)\n", rec.ID, rec.TypeName)
		if rec.Contributor != "" {
			fmt.Fprintf(&b, "  contributor: %s\n", rec.Contributor)
		}
		if rec.Description != "" {
			fmt.Fprintf(&b, "  description: %s\n", rec.Description)
		}

		if rec.Validation != nil {
			for _, cat := range rec.Validation.Checked {
				outcome := rec.Validation.Outcomes[cat]
				status := "pass"
				if !outcome.Passed {
					status = "FAIL"
				}
				fmt.Fprintf(&b, "  %-12s %s\n", cat, status)
				for _, issue := range outcome.Issues {
					fmt.Fprintf(&b, "    - %s\n", issue)
				}
			}
		}

		if bench := rec.Benchmark; bench != nil {
			if bench.Failed {
				fmt.Fprintf(&b, "  benchmark    FAIL (throughput recorded as 0)\n")
			} else {
				fmt.Fprintf(&b, "  benchmark    %d steps, %d bets, %d no-bet, %.1f decisions/s\n",
					bench.Steps, bench.BetCount, bench.NoBetCount, bench.DecisionsPerSecond)
				fmt.Fprintf(&b, "  stakes       total=%s mean=%s min=%s max=%s labels=%d\n",
					bench.TotalStaked, bench.MeanStake, bench.MinStake, bench.MaxStake, bench.DistinctLabels)
			}
			for _, issue := range bench.Issues {
				fmt.Fprintf(&b, "    - %s\n", issue)
			}
		} else {
			fmt.Fprintf(&b, "  benchmark    skipped (validation failed)\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
