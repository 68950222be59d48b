package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/yss-community/strategyharness/internal/harness"
)

// Store 运行历史存储（sqlite）
type Store struct {
	db *sql.DB
}

// RunSummary 运行摘要（列表接口返回）
type RunSummary struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Spins       int       `json:"spins"`
	Strategies  int       `json:"strategies"`
	Validated   int       `json:"validated"`
}

// Open 打开（或创建）运行历史数据库
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "mkdir db dir")
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  generated_at INTEGER NOT NULL,
  spins INTEGER NOT NULL,
  seed INTEGER NOT NULL,
  strategies INTEGER NOT NULL,
  validated INTEGER NOT NULL,
  report_json TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migrate: %.40s", stmt)
		}
	}
	return nil
}

// SaveReport 保存一次运行报告
// generated_at 以 Unix 纳秒整数存储：文本时间戳会裁掉尾随零，
// 同一秒内的运行按字典序比较会排错
func (s *Store) SaveReport(ctx context.Context, report *harness.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (run_id, generated_at, spins, seed, strategies, validated, report_json)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.GeneratedAt.UTC().UnixNano(),
		report.Spins,
		report.Seed,
		len(report.Records),
		report.Validated(),
		string(payload),
	)
	return errors.Wrap(err, "insert run")
}

// ListRuns 按生成时间倒序列出最近的运行
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, generated_at, spins, strategies, validated
FROM runs ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var summary RunSummary
		var generatedAt int64
		if err := rows.Scan(&summary.RunID, &generatedAt, &summary.Spins, &summary.Strategies, &summary.Validated); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		summary.GeneratedAt = time.Unix(0, generatedAt).UTC()
		out = append(out, summary)
	}
	return out, rows.Err()
}

// ErrRunNotFound 运行不存在
var ErrRunNotFound = errors.New("run not found")

// GetRun 按 ID 取完整报告
func (s *Store) GetRun(ctx context.Context, runID string) (*harness.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query run")
	}

	var report harness.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, errors.Wrapf(err, "unmarshal run %s", runID)
	}
	return &report, nil
}

// LatestRun 最近一次运行的完整报告
func (s *Store) LatestRun(ctx context.Context) (*harness.Report, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM runs ORDER BY generated_at DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query latest run")
	}
	return s.GetRun(ctx, runID)
}
