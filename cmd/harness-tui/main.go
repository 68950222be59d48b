package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/yss-community/strategyharness/internal/harness"
	"github.com/yss-community/strategyharness/internal/reportstore"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type reportMsg struct {
	report *harness.Report
	err    error
}

type model struct {
	store  *reportstore.Store
	report *harness.Report
	err    error
}

func (m model) fetchLatest() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report, err := m.store.LatestRun(ctx)
	return reportMsg{report: report, err: err}
}

func (m model) Init() tea.Cmd {
	return m.fetchLatest
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.fetchLatest
		}
	case reportMsg:
		m.report = msg.report
		m.err = msg.err
	}
	return m, nil
}

func (m model) View() string {
	var b string
	b += titleStyle.Render("YSS strategy harness") + "\n"

	switch {
	case m.err == reportstore.ErrRunNotFound:
		b += dimStyle.Render("no runs recorded yet — run cmd/harness first") + "\n"
	case m.err != nil:
		b += failStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	case m.report == nil:
		b += dimStyle.Render("loading...") + "\n"
	default:
		b += dimStyle.Render(fmt.Sprintf("run %s · %s · spins=%d",
			m.report.RunID, m.report.GeneratedAt.Format("2006-01-02 15:04:05"), m.report.Spins)) + "\n\n"
		b += headerStyle.Render(fmt.Sprintf("%-14s %-12s %-10s %10s %8s %8s",
			"strategy", "contributor", "validation", "dec/s", "bets", "no-bet")) + "\n"

		for i := range m.report.Records {
			rec := &m.report.Records[i]

			status := passStyle.Render("pass")
			if !rec.Validated() {
				status = failStyle.Render("FAIL")
			}

			dps, bets, noBets := "-", "-", "-"
			if bench := rec.Benchmark; bench != nil {
				if bench.Failed {
					dps = failStyle.Render("0.0")
				} else {
					dps = fmt.Sprintf("%.1f", bench.DecisionsPerSecond)
				}
				bets = fmt.Sprintf("%d", bench.BetCount)
				noBets = fmt.Sprintf("%d", bench.NoBetCount)
			}

			b += fmt.Sprintf("%-14s %-12s %-19s %10s %8s %8s\n",
				rec.ID, rec.Contributor, status, dps, bets, noBets)

			if rec.Validation != nil {
				for _, issue := range rec.Validation.Issues() {
					b += dimStyle.Render("  "+issue.String()) + "\n"
				}
			}
		}
	}

	b += "\n" + dimStyle.Render("r refresh · q quit") + "\n"
	return b
}

func main() {
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	dbPath := flag.String("db", getenv("YSS_REPORT_DB", "data/harness.db"), "SQLite db file path")
	flag.Parse()

	store, err := reportstore.Open(*dbPath)
	if err != nil {
		log.Fatalf("open report store failed: %v", err)
	}
	defer store.Close()

	if _, err := tea.NewProgram(model{store: store}).Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
