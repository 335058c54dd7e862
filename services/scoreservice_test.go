package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrantplanner/model"
	"quadrantplanner/store"
)

func newScoreService(m *store.Memory) *ScoreService {
	return NewScoreService(m, DefaultWeights, testLogger())
}

func TestProductivityScoreNoGoals(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	report := newScoreService(m).ProductivityScore(context.Background(), "u1")

	assert.Zero(t, report.GoalCompletionScore)
	assert.Zero(t, report.TaskCompletionScore)
	assert.Zero(t, report.QuadrantBalanceScore)
	assert.Zero(t, report.ConsistencyScore)
	// nothing ever staged means nothing pending
	assert.Equal(t, 100.0, report.StagingEfficiencyScore)
	assert.Equal(t, model.TrendStable, report.ScoreTrend)
	assert.Equal(t, []string{"Create your first goal to start tracking productivity"}, report.Recommendations)
}

func TestProductivityScoreComponents(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Learn Go")

	now := time.Now().UTC()
	done := newTask("u1", "a", model.QuadrantQ2, 0)
	done.GoalID = strPtr("g1")
	done.Completed = true
	done.CompletedAt = &now
	seedTask(t, m, done)

	open := newTask("u1", "b", model.QuadrantQ2, 1)
	open.GoalID = strPtr("g1")
	seedTask(t, m, open)

	report := newScoreService(m).ProductivityScore(context.Background(), "u1")

	assert.InDelta(t, 50.0, report.GoalCompletionScore, 0.001)
	assert.InDelta(t, 50.0, report.TaskCompletionScore, 0.001)
	// one active task, all of it in Q2: deviation 20+40+15+5 halved
	assert.InDelta(t, 60.0, report.QuadrantBalanceScore, 0.001)
	// one active day out of fourteen
	assert.InDelta(t, 100.0/14, report.ConsistencyScore, 0.001)
	assert.Equal(t, 100.0, report.StagingEfficiencyScore)
	// completions only in the recent half of the window
	assert.Equal(t, model.TrendImproving, report.ScoreTrend)
	assert.Contains(t, report.Recommendations, "Increase focus on important but not urgent tasks (Q2) for better long-term results.")
}

func TestProductivityScoreRecommendationThresholds(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Survive the week")
	for i := 0; i < 4; i++ {
		seedTask(t, m, newTask("u1", fmt.Sprintf("q1-%d", i), model.QuadrantQ1, i))
	}
	seedTask(t, m, newTask("u1", "q2-0", model.QuadrantQ2, 0))

	report := newScoreService(m).ProductivityScore(context.Background(), "u1")

	assert.Contains(t, report.Recommendations, "You have too many urgent+important tasks. Focus on prevention and planning.")
	assert.Contains(t, report.Recommendations, "Increase focus on important but not urgent tasks (Q2) for better long-term results.")
	assert.NotContains(t, report.Recommendations, "Great quadrant balance! Maintain this distribution for optimal productivity.")
}

func TestProductivityScoreBalancedAffirmation(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Balance")
	seedTask(t, m, newTask("u1", "q1", model.QuadrantQ1, 0))
	seedTask(t, m, newTask("u1", "q2a", model.QuadrantQ2, 0))
	seedTask(t, m, newTask("u1", "q2b", model.QuadrantQ2, 1))
	seedTask(t, m, newTask("u1", "q2c", model.QuadrantQ2, 2))

	report := newScoreService(m).ProductivityScore(context.Background(), "u1")

	assert.Equal(t, []string{"Great quadrant balance! Maintain this distribution for optimal productivity."}, report.Recommendations)
}

func TestProductivityScoreDegradesOnAggregateFailure(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	m.FailTrends = true
	m.FailStagingAnalytics = true
	seedGoal(t, m, "u1", "g1", "Persist")
	seedTask(t, m, newTask("u1", "a", model.QuadrantQ2, 0))

	report := newScoreService(m).ProductivityScore(context.Background(), "u1")

	assert.Zero(t, report.ConsistencyScore)
	assert.Zero(t, report.StagingEfficiencyScore)
	assert.Equal(t, model.TrendStable, report.ScoreTrend)
	// the rest of the report still computes
	assert.Positive(t, report.QuadrantBalanceScore)
	assert.NotEmpty(t, report.Recommendations)
}

func TestClassifyTrend(t *testing.T) {
	t.Parallel()

	week := func(completions ...int) []model.ProductivityTrend {
		out := make([]model.ProductivityTrend, len(completions))
		for i, n := range completions {
			out[i] = model.ProductivityTrend{TasksCompleted: n}
		}
		return out
	}

	tests := []struct {
		name   string
		trends []model.ProductivityTrend
		want   model.ScoreTrend
	}{
		{name: "no data", trends: nil, want: model.TrendStable},
		{name: "short window", trends: week(1, 2, 3), want: model.TrendStable},
		{
			name:   "improving",
			trends: week(1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2),
			want:   model.TrendImproving,
		},
		{
			name:   "declining",
			trends: week(2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1),
			want:   model.TrendDeclining,
		},
		{
			name:   "steady",
			trends: week(2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2),
			want:   model.TrendStable,
		},
		{
			name:   "from nothing",
			trends: week(0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0),
			want:   model.TrendImproving,
		},
		{
			name:   "nothing at all",
			trends: week(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
			want:   model.TrendStable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyTrend(tt.trends))
		})
	}
}

func TestBalanceScore(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, balanceScore(&model.QuadrantDistribution{}))
	})

	t.Run("ideal spread", func(t *testing.T) {
		t.Parallel()
		dist := &model.QuadrantDistribution{
			TotalActiveTasks: 20,
			Q1Count:          4, Q1Percentage: 20,
			Q2Count: 12, Q2Percentage: 60,
			Q3Count: 3, Q3Percentage: 15,
			Q4Count: 1, Q4Percentage: 5,
		}
		assert.InDelta(t, 100.0, balanceScore(dist), 0.001)
	})

	t.Run("everything urgent", func(t *testing.T) {
		t.Parallel()
		dist := &model.QuadrantDistribution{
			TotalActiveTasks: 10,
			Q1Count:          10, Q1Percentage: 100,
		}
		assert.InDelta(t, 20.0, balanceScore(dist), 0.001)
	})
}

func TestConsistencyScore(t *testing.T) {
	t.Parallel()

	trends := make([]model.ProductivityTrend, consistencyWindow)
	for i := 0; i < 7; i++ {
		trends[i].TasksCreated = 1
	}
	assert.InDelta(t, 50.0, consistencyScore(trends), 0.001)
	assert.Zero(t, consistencyScore(nil))
}

func TestStagingEfficiencyUsesAggregate(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Tidy up")

	// two items passed through staging, one of them organized out;
	// organizing clears staged_at, so the organized row carries only
	// organized_at
	now := time.Now().UTC()
	earlier := now.Add(-4 * time.Hour)
	organized := newTask("u1", "done", model.QuadrantQ2, 0)
	organized.IsStaged = false
	organized.CreatedAt = earlier
	organized.OrganizedAt = &now
	seedTask(t, m, organized)
	seedTask(t, m, newTask("u1", "pending", model.QuadrantStaging, 0))

	sa, err := m.StagingAnalytics(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, sa.TotalStagedItems)
	assert.Equal(t, 1, sa.ItemsOrganizedFromStaging)
	assert.InDelta(t, 50.0, sa.StagingEfficiency, 0.001)
	assert.InDelta(t, 4.0, sa.AverageStagingTime, 0.1)

	report := newScoreService(m).ProductivityScore(context.Background(), "u1")
	assert.InDelta(t, 50.0, report.StagingEfficiencyScore, 0.001)
}
