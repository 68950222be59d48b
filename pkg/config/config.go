package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Spins                   int     // 基准决策步数，默认 1000
	StrategiesDir           string  // 每策略配置覆盖文件目录（发现根）
	ReasonableBetMultiplier float64 // 合理注额上限倍数（相对 base_bet），默认 10
	PerformanceThreshold    float64 // 吞吐阈值（决策/秒），默认 100
	TimeoutSeconds          float64 // 单次 PlaceBet 超时（秒），默认 1
	StrictPerformance       bool    // 吞吐不达标是否视为硬失败
	Seed                    int64   // 合成序列种子，默认 42

	ReportDBPath   string // 运行历史 sqlite 数据库路径
	PersistenceDir string // 策略状态快照目录（为空则不保存）

	LogLevel string // 日志级别
	LogFile  string // 日志文件路径（可选）
}

// rawConfig yaml 文件结构
type rawConfig struct {
	Harness struct {
		Spins                   int     `yaml:"spins" json:"spins"`
		StrategiesDir           string  `yaml:"strategies_dir" json:"strategies_dir"`
		ReasonableBetMultiplier float64 `yaml:"reasonable_bet_multiplier" json:"reasonable_bet_multiplier"`
		PerformanceThreshold    float64 `yaml:"performance_threshold" json:"performance_threshold"`
		TimeoutSeconds          float64 `yaml:"timeout_seconds" json:"timeout_seconds"`
		StrictPerformance       bool    `yaml:"strict_performance" json:"strict_performance"`
		Seed                    int64   `yaml:"seed" json:"seed"`
	} `yaml:"harness" json:"harness"`
	Report struct {
		DBPath         string `yaml:"db_path" json:"db_path"`
		PersistenceDir string `yaml:"persistence_dir" json:"persistence_dir"`
	} `yaml:"report" json:"report"`
	Log struct {
		Level string `yaml:"level" json:"level"`
		File  string `yaml:"file" json:"file"`
	} `yaml:"log" json:"log"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Spins:                   1000,
		StrategiesDir:           "strategies.d",
		ReasonableBetMultiplier: 10,
		PerformanceThreshold:    100,
		TimeoutSeconds:          1,
		Seed:                    42,
		ReportDBPath:            "data/harness.db",
		PersistenceDir:          "data/state",
		LogLevel:                "info",
	}
}

// Load 从 yaml 文件加载配置；path 为空时只使用默认值 + 环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}

		var raw rawConfig
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
		applyRaw(cfg, &raw)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyRaw 把文件值覆盖到配置上（零值跳过）
func applyRaw(cfg *Config, raw *rawConfig) {
	if raw.Harness.Spins > 0 {
		cfg.Spins = raw.Harness.Spins
	}
	if raw.Harness.StrategiesDir != "" {
		cfg.StrategiesDir = raw.Harness.StrategiesDir
	}
	if raw.Harness.ReasonableBetMultiplier > 0 {
		cfg.ReasonableBetMultiplier = raw.Harness.ReasonableBetMultiplier
	}
	if raw.Harness.PerformanceThreshold > 0 {
		cfg.PerformanceThreshold = raw.Harness.PerformanceThreshold
	}
	if raw.Harness.TimeoutSeconds > 0 {
		cfg.TimeoutSeconds = raw.Harness.TimeoutSeconds
	}
	if raw.Harness.StrictPerformance {
		cfg.StrictPerformance = true
	}
	if raw.Harness.Seed != 0 {
		cfg.Seed = raw.Harness.Seed
	}
	if raw.Report.DBPath != "" {
		cfg.ReportDBPath = raw.Report.DBPath
	}
	if raw.Report.PersistenceDir != "" {
		cfg.PersistenceDir = raw.Report.PersistenceDir
	}
	if raw.Log.Level != "" {
		cfg.LogLevel = raw.Log.Level
	}
	if raw.Log.File != "" {
		cfg.LogFile = raw.Log.File
	}
}

// applyEnv 环境变量覆盖（YSS_ 前缀）
func applyEnv(cfg *Config) {
	if v := os.Getenv("YSS_SPINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Spins = n
		}
	}
	if v := os.Getenv("YSS_STRATEGIES_DIR"); v != "" {
		cfg.StrategiesDir = v
	}
	if v := os.Getenv("YSS_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
			cfg.Seed = n
		}
	}
	if v := os.Getenv("YSS_REASONABLE_BET_MULTIPLIER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.ReasonableBetMultiplier = f
		}
	}
	if v := os.Getenv("YSS_PERFORMANCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.PerformanceThreshold = f
		}
	}
	if v := os.Getenv("YSS_TIMEOUT_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.TimeoutSeconds = f
		}
	}
	if v := os.Getenv("YSS_STRICT_PERFORMANCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictPerformance = b
		}
	}
	if v := os.Getenv("YSS_REPORT_DB"); v != "" {
		cfg.ReportDBPath = v
	}
	if v := os.Getenv("YSS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("YSS_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Spins <= 0 {
		return fmt.Errorf("spins 必须 > 0")
	}
	if c.ReasonableBetMultiplier <= 0 {
		return fmt.Errorf("reasonable_bet_multiplier 必须 > 0")
	}
	if c.PerformanceThreshold <= 0 {
		return fmt.Errorf("performance_threshold 必须 > 0")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds 必须 > 0")
	}
	return nil
}

// Timeout 单次 PlaceBet 超时时长
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}
