package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quadrantplanner/model"
	"quadrantplanner/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTask(userID, id string, quadrant model.Quadrant, position int) model.Task {
	now := time.Now().UTC()
	task := model.Task{
		ID:        id,
		UserID:    userID,
		Title:     "task " + id,
		Quadrant:  quadrant,
		Priority:  model.PriorityMedium,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if quadrant == model.QuadrantStaging {
		task.IsStaged = true
		task.StagedAt = &now
	}
	return task
}

func seedTask(t *testing.T, m *store.Memory, task model.Task) {
	t.Helper()
	_, err := m.InsertTask(context.Background(), task)
	require.NoError(t, err)
}

func seedGoal(t *testing.T, m *store.Memory, userID, id, title string) model.Goal {
	t.Helper()
	now := time.Now().UTC()
	goal := model.Goal{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Category:  model.CategoryPersonal,
		Timeframe: model.Ongoing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := m.InsertGoal(context.Background(), goal)
	require.NoError(t, err)
	return goal
}

// quadrantPositions maps task ID to position within one quadrant.
func quadrantPositions(t *testing.T, m *store.Memory, userID string, quadrant model.Quadrant) map[string]int {
	t.Helper()
	tasks, err := m.SelectTasks(context.Background(), store.TaskFilter{
		UserID:   userID,
		Quadrant: quadrant,
	}, store.TaskOrderPositionAsc, nil)
	require.NoError(t, err)

	positions := make(map[string]int, len(tasks))
	for _, task := range tasks {
		positions[task.ID] = task.Position
	}
	return positions
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
