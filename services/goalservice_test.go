package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

func TestCreateGoal(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	svc := NewGoalService(m, testLogger())

	goal, err := svc.Create(context.Background(), "u1", dto.CreateGoalRequest{
		Title:     "Run a marathon",
		Category:  "health",
		Timeframe: "1_year",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, goal.ID)
	assert.Equal(t, "u1", goal.UserID)
	assert.Equal(t, model.CategoryHealth, goal.Category)
	assert.Equal(t, model.OneYear, goal.Timeframe)
	assert.False(t, goal.Archived)
}

func TestCreateGoalCeiling(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	for i := 0; i < MaxActiveGoalsPerUser; i++ {
		seedGoal(t, m, "u1", fmt.Sprintf("g%d", i), fmt.Sprintf("goal %d", i))
	}

	svc := NewGoalService(m, testLogger())
	_, err := svc.Create(context.Background(), "u1", dto.CreateGoalRequest{
		Title:     "one past the limit",
		Category:  "personal",
		Timeframe: "ongoing",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCapacityExceeded(err))
	assert.Contains(t, err.Error(), "Maximum of 100 active goals")
}

func TestCreateGoalCeilingIgnoresArchived(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	for i := 0; i < MaxActiveGoalsPerUser; i++ {
		goal := seedGoal(t, m, "u1", fmt.Sprintf("g%d", i), fmt.Sprintf("goal %d", i))
		archived := true
		_, err := m.UpdateGoals(context.Background(),
			store.GoalFilter{UserID: "u1", ID: goal.ID},
			store.GoalPatch{Archived: &archived})
		require.NoError(t, err)
	}

	svc := NewGoalService(m, testLogger())
	_, err := svc.Create(context.Background(), "u1", dto.CreateGoalRequest{
		Title:     "fresh start",
		Category:  "personal",
		Timeframe: "ongoing",
	})
	require.NoError(t, err)
}

func TestSearchGoals(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Learn Go")
	seedGoal(t, m, "u1", "g2", "Learn piano")
	seedGoal(t, m, "u1", "g3", "Save money")

	svc := NewGoalService(m, testLogger())
	resp, err := svc.Search(context.Background(), "u1", dto.SearchGoalsQuery{Query: "learn"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Goals, 2)
}

func TestSearchGoalsShortQuery(t *testing.T) {
	t.Parallel()

	svc := NewGoalService(store.NewMemory(), testLogger())

	for _, q := range []string{"", "a", "  x  "} {
		_, err := svc.Search(context.Background(), "u1", dto.SearchGoalsQuery{Query: q})
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
	}
}

func TestDeleteGoalArchivesAndUnlinksTasks(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Learn Go")
	task := newTask("u1", "a", model.QuadrantQ2, 0)
	task.GoalID = strPtr("g1")
	seedTask(t, m, task)

	svc := NewGoalService(m, testLogger())
	require.NoError(t, svc.Delete(context.Background(), "u1", "g1"))

	goals, err := m.SelectGoals(context.Background(), store.GoalFilter{UserID: "u1", ID: "g1"}, nil)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Archived)

	tasks, err := m.SelectTasks(context.Background(), store.TaskFilter{UserID: "u1", ID: "a"}, store.TaskOrderDefault, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].GoalID)
}

func TestDeleteGoalNotFound(t *testing.T) {
	t.Parallel()

	svc := NewGoalService(store.NewMemory(), testLogger())
	err := svc.Delete(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGoalStats(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Learn Go")
	for i := 0; i < 4; i++ {
		task := newTask("u1", fmt.Sprintf("t%d", i), model.QuadrantQ2, i)
		task.GoalID = strPtr("g1")
		if i < 2 {
			task.Completed = true
		}
		seedTask(t, m, task)
	}

	svc := NewGoalService(m, testLogger())
	stats, err := svc.Stats(context.Background(), "u1", "g1")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 2, stats.CompletedTasks)
	assert.Equal(t, 2, stats.ActiveTasks)
	assert.InDelta(t, 50.0, stats.CompletionRate, 0.001)
	require.NotNil(t, stats.AverageTaskAge)
	assert.NotNil(t, stats.LastActivityAt)
}

func TestGoalStatsEmpty(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Untouched")

	svc := NewGoalService(m, testLogger())
	stats, err := svc.Stats(context.Background(), "u1", "g1")
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalTasks)
	assert.Zero(t, stats.CompletionRate)
	assert.Nil(t, stats.AverageTaskAge)
	assert.Nil(t, stats.LastActivityAt)
}

func TestGetGoalWithTasks(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "Learn Go")
	task := newTask("u1", "a", model.QuadrantQ2, 0)
	task.GoalID = strPtr("g1")
	seedTask(t, m, task)

	svc := NewGoalService(m, testLogger())
	goal, err := svc.GetWithTasks(context.Background(), "u1", "g1")
	require.NoError(t, err)

	assert.Equal(t, "Learn Go", goal.Title)
	require.Len(t, goal.Tasks, 1)
	assert.Equal(t, "a", goal.Tasks[0].ID)
	assert.Equal(t, 1, goal.Stats.TotalTasks)
}

func TestListGoalsFiltersArchived(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedGoal(t, m, "u1", "g1", "active goal")
	archivedGoal := seedGoal(t, m, "u1", "g2", "archived goal")
	archived := true
	_, err := m.UpdateGoals(context.Background(),
		store.GoalFilter{UserID: "u1", ID: archivedGoal.ID},
		store.GoalPatch{Archived: &archived})
	require.NoError(t, err)

	svc := NewGoalService(m, testLogger())

	active, err := svc.List(context.Background(), "u1", dto.ListGoalsQuery{})
	require.NoError(t, err)
	require.Len(t, active.Goals, 1)
	assert.Equal(t, "g1", active.Goals[0].ID)

	old, err := svc.List(context.Background(), "u1", dto.ListGoalsQuery{Archived: true})
	require.NoError(t, err)
	require.Len(t, old.Goals, 1)
	assert.Equal(t, "g2", old.Goals[0].ID)
}
