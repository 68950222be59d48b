package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/yss-community/strategyharness/internal/harness"
	"github.com/yss-community/strategyharness/internal/reportstore"
	"github.com/yss-community/strategyharness/pkg/config"
	"github.com/yss-community/strategyharness/pkg/logger"
	"github.com/yss-community/strategyharness/pkg/persistence"

	// 导入策略集合以触发 init() 注册
	_ "github.com/yss-community/strategyharness/internal/strategies/all"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	var (
		configPath    = flag.String("config", "", "yaml config file path (optional)")
		spins         = flag.Int("spins", 0, "benchmark decision steps (overrides config)")
		strategiesDir = flag.String("strategies-dir", "", "per-strategy overrides directory (overrides config)")
		strict        = flag.Bool("strict", false, "treat performance warnings as hard failures")
		failOnInvalid = flag.Bool("fail-on-invalid", false, "exit non-zero when any strategy fails validation")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *spins > 0 {
		cfg.Spins = *spins
	}
	if *strategiesDir != "" {
		cfg.StrategiesDir = *strategiesDir
	}
	if *strict {
		cfg.StrictPerformance = true
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runCfg := harness.RunConfig{
		Spins:                   cfg.Spins,
		StrategiesDir:           cfg.StrategiesDir,
		ReasonableBetMultiplier: decimal.NewFromFloat(cfg.ReasonableBetMultiplier),
		PerformanceThreshold:    cfg.PerformanceThreshold,
		Timeout:                 cfg.Timeout(),
		StrictPerformance:       cfg.StrictPerformance,
		Seed:                    cfg.Seed,
	}
	if cfg.PersistenceDir != "" {
		runCfg.Persistence = persistence.NewJSONFileService(cfg.PersistenceDir)
	}

	report, err := harness.Run(ctx, runCfg)
	if err != nil {
		// 只有编排自身的故障才会走到这里；策略故障都在报告里
		logger.Errorf("harness run failed: %v", err)
		os.Exit(1)
	}

	fmt.Print(report.RenderText())

	if cfg.ReportDBPath != "" {
		store, err := reportstore.Open(cfg.ReportDBPath)
		if err != nil {
			logger.Errorf("open report store failed: %v", err)
		} else {
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := store.SaveReport(saveCtx, report); err != nil {
				logger.Errorf("save report failed: %v", err)
			} else {
				logger.Infof("report %s saved to %s", report.RunID, cfg.ReportDBPath)
			}
			saveCancel()
			_ = store.Close()
		}
	}

	if *failOnInvalid && report.Validated() < len(report.Records) {
		os.Exit(2)
	}
}
