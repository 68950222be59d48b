package fibonacci

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yss-community/strategyharness/internal/domain"
)

func newInitialized(t *testing.T) *FibonacciStrategy {
	t.Helper()
	s := &FibonacciStrategy{}
	require.NoError(t, s.InitializeState(s.GetDefaults()))
	return s
}

func stateAfter(balance int64, results ...domain.Outcome) *domain.GameState {
	gs := domain.NewGameState(decimal.NewFromInt(balance))
	for _, r := range results {
		gs = gs.WithResult(r)
	}
	return gs
}

func TestStakeFollowsSequence(t *testing.T) {
	s := newInitialized(t)

	// 尾部连输长度 -> 注额：5, 5, 10, 15, 25, 40（base_bet 5）
	cases := []struct {
		history []domain.Outcome
		want    int64
	}{
		{nil, 5},
		{[]domain.Outcome{1}, 5},            // 红算输，streak 1
		{[]domain.Outcome{1, 0}, 10},        // 零也算输
		{[]domain.Outcome{2, 1, 1, 1}, 15},  // 黑截断 streak
		{[]domain.Outcome{1, 1, 1, 1}, 25},  // streak 4
		{[]domain.Outcome{1, 1, 1, 1, 1}, 40},
	}

	for _, tc := range cases {
		decision := s.PlaceBet(stateAfter(500, tc.history...))
		require.False(t, decision.IsNoBet(), "history %v", tc.history)
		assert.True(t, decision[domain.BetBlack].Equal(decimal.NewFromInt(tc.want)),
			"history %v: got %s", tc.history, decision[domain.BetBlack])
	}
}

func TestDeepStreakSitsOut(t *testing.T) {
	s := newInitialized(t)

	history := []domain.Outcome{1, 1, 1, 1, 1, 1}
	assert.True(t, s.PlaceBet(stateAfter(500, history...)).IsNoBet())
}

func TestBlackResetsStreak(t *testing.T) {
	s := newInitialized(t)

	decision := s.PlaceBet(stateAfter(500, 1, 1, 1, 2))
	assert.True(t, decision[domain.BetBlack].Equal(decimal.NewFromInt(5)))
}

func TestNoBetWhenBalanceTooLow(t *testing.T) {
	s := newInitialized(t)

	assert.True(t, s.PlaceBet(stateAfter(3)).IsNoBet())
}

func TestPureFunctionOfState(t *testing.T) {
	s := newInitialized(t)
	gs := stateAfter(500, 1, 1, 0)

	first := s.PlaceBet(gs)
	second := s.PlaceBet(gs.Clone())
	assert.True(t, first.Equal(second), "identical state must yield identical decision")
}

func TestDefaultsStayWithinSafetyCeiling(t *testing.T) {
	s := newInitialized(t)
	d := s.GetDefaults()
	ceiling := d.BaseBet().Mul(decimal.NewFromInt(10))

	for _, stake := range s.sequence {
		assert.True(t, stake.LessThanOrEqual(ceiling), "stake %s over ceiling %s", stake, ceiling)
	}
}
