package metrics

import "expvar"

var (
	ValidationsRun   = expvar.NewInt("validations_run")
	SafetyViolations = expvar.NewInt("safety_violations")
	BenchmarkRuns    = expvar.NewInt("benchmark_runs")
	RuntimeFailures  = expvar.NewInt("runtime_failures")
)
