package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadrantplanner/apperror"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

func TestNextPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		positions []int
		want      int
	}{
		{name: "empty quadrant", positions: nil, want: 0},
		{name: "single task", positions: []int{0}, want: 1},
		{name: "several tasks", positions: []int{0, 1, 2}, want: 3},
		{name: "gapped positions", positions: []int{0, 4, 7}, want: 8},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := store.NewMemory()
			for i, pos := range tt.positions {
				seedTask(t, m, newTask("u1", string(rune('a'+i)), model.QuadrantQ1, pos))
			}

			svc := NewPositionService(m, testLogger())
			assert.Equal(t, tt.want, svc.NextPosition(context.Background(), "u1", model.QuadrantQ1))
		})
	}
}

func TestInsertAtShiftsLaterTasks(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "a", model.QuadrantQ1, 0))
	seedTask(t, m, newTask("u1", "b", model.QuadrantQ1, 1))
	seedTask(t, m, newTask("u1", "c", model.QuadrantQ1, 2))

	svc := NewPositionService(m, testLogger())
	inserted, err := svc.InsertAt(context.Background(), newTask("u1", "new", model.QuadrantQ1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, inserted.Position)

	positions := quadrantPositions(t, m, "u1", model.QuadrantQ1)
	assert.Equal(t, map[string]int{"a": 0, "new": 1, "b": 2, "c": 3}, positions)
}

func TestInsertAtEndDoesNotShift(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "a", model.QuadrantQ1, 0))
	seedTask(t, m, newTask("u1", "b", model.QuadrantQ1, 1))

	svc := NewPositionService(m, testLogger())
	_, err := svc.InsertAt(context.Background(), newTask("u1", "new", model.QuadrantQ1, 2))
	require.NoError(t, err)

	positions := quadrantPositions(t, m, "u1", model.QuadrantQ1)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "new": 2}, positions)
}

func TestCompactClosesGaps(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "a", model.QuadrantQ2, 0))
	seedTask(t, m, newTask("u1", "b", model.QuadrantQ2, 2))
	seedTask(t, m, newTask("u1", "c", model.QuadrantQ2, 5))

	svc := NewPositionService(m, testLogger())
	require.NoError(t, svc.Compact(context.Background(), "u1", model.QuadrantQ2))

	positions := quadrantPositions(t, m, "u1", model.QuadrantQ2)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, positions)
}

func TestMoveWithinQuadrantInsertsAndShifts(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "a", model.QuadrantQ1, 0))
	seedTask(t, m, newTask("u1", "b", model.QuadrantQ1, 1))
	seedTask(t, m, newTask("u1", "c", model.QuadrantQ1, 2))

	svc := NewPositionService(m, testLogger())
	current, err := m.SelectTasks(context.Background(), store.TaskFilter{UserID: "u1", ID: "c"}, store.TaskOrderDefault, nil)
	require.NoError(t, err)

	pos := 0
	moved, err := svc.Move(context.Background(), current[0], model.QuadrantQ1, 0, store.TaskPatch{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)

	// the occupant of the target slot and everything after it moved up
	positions := quadrantPositions(t, m, "u1", model.QuadrantQ1)
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2}, positions)
}

func TestMoveAcrossQuadrantsCompactsSource(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "a", model.QuadrantQ1, 0))
	seedTask(t, m, newTask("u1", "b", model.QuadrantQ1, 1))
	seedTask(t, m, newTask("u1", "c", model.QuadrantQ1, 2))
	seedTask(t, m, newTask("u1", "x", model.QuadrantQ2, 0))

	svc := NewPositionService(m, testLogger())
	current, err := m.SelectTasks(context.Background(), store.TaskFilter{UserID: "u1", ID: "b"}, store.TaskOrderDefault, nil)
	require.NoError(t, err)

	target := model.QuadrantQ2
	pos := 0
	_, err = svc.Move(context.Background(), current[0], target, 0, store.TaskPatch{Quadrant: &target, Position: &pos})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"b": 0, "x": 1}, quadrantPositions(t, m, "u1", model.QuadrantQ2))
	assert.Equal(t, map[string]int{"a": 0, "c": 1}, quadrantPositions(t, m, "u1", model.QuadrantQ1))
}

func TestMoveUnknownTask(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	svc := NewPositionService(m, testLogger())

	pos := 0
	_, err := svc.Move(context.Background(), newTask("u1", "ghost", model.QuadrantQ1, 0), model.QuadrantQ1, 0, store.TaskPatch{Position: &pos})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
