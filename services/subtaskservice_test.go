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

func newSubtaskService(m *store.Memory) *SubtaskService {
	return NewSubtaskService(m, newTaskService(m), testLogger())
}

func TestCreateSubtaskAppends(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "parent", model.QuadrantQ1, 0))

	svc := newSubtaskService(m)
	first, err := svc.Create(context.Background(), "u1", "parent", "step one")
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "u1", "parent", "step two")
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.False(t, first.Completed)
}

func TestCreateSubtaskParentMissing(t *testing.T) {
	t.Parallel()

	svc := newSubtaskService(store.NewMemory())
	_, err := svc.Create(context.Background(), "u1", "missing", "orphan")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateSubtaskParentOwnedByOtherUser(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u2", "parent", model.QuadrantQ1, 0))

	svc := newSubtaskService(m)
	_, err := svc.Create(context.Background(), "u1", "parent", "sneaky")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestToggleSubtask(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "parent", model.QuadrantQ1, 0))

	svc := newSubtaskService(m)
	created, err := svc.Create(context.Background(), "u1", "parent", "step")
	require.NoError(t, err)

	done, err := svc.ToggleCompletion(context.Background(), "u1", "parent", created.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)

	undone, err := svc.ToggleCompletion(context.Background(), "u1", "parent", created.ID)
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)
}

func TestDeleteSubtask(t *testing.T) {
	t.Parallel()

	m := store.NewMemory()
	seedTask(t, m, newTask("u1", "parent", model.QuadrantQ1, 0))

	svc := newSubtaskService(m)
	created, err := svc.Create(context.Background(), "u1", "parent", "step")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u1", "parent", created.ID))

	list, err := svc.List(context.Background(), "u1", "parent")
	require.NoError(t, err)
	assert.Empty(t, list)

	err = svc.Delete(context.Background(), "u1", "parent", created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
