package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quadrantplanner/apperror"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// SubtaskService manages the ordered checklist items under a task.
// Parent ownership is checked before any subtask operation.
type SubtaskService struct {
	store  store.Store
	tasks  *TaskService
	logger *slog.Logger
}

func NewSubtaskService(st store.Store, tasks *TaskService, logger *slog.Logger) *SubtaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubtaskService{store: st, tasks: tasks, logger: logger}
}

func (s *SubtaskService) List(ctx context.Context, userID, taskID string) ([]model.Subtask, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}

	subtasks, err := s.store.SelectSubtasks(ctx, store.SubtaskFilter{UserID: userID, TaskID: taskID}, nil)
	if err != nil {
		return nil, apperror.Store("failed to retrieve subtasks", err)
	}
	if subtasks == nil {
		subtasks = []model.Subtask{}
	}
	return subtasks, nil
}

// Create appends the subtask at the end of the parent's checklist.
func (s *SubtaskService) Create(ctx context.Context, userID, taskID, title string) (*model.Subtask, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}

	existing, err := s.store.SelectSubtasks(ctx, store.SubtaskFilter{UserID: userID, TaskID: taskID}, nil)
	if err != nil {
		return nil, apperror.Store("failed to create subtask", err)
	}
	position := 0
	for _, st := range existing {
		if st.Position >= position {
			position = st.Position + 1
		}
	}

	now := time.Now().UTC()
	subtask := model.Subtask{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		UserID:    userID,
		Title:     title,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.store.InsertSubtask(ctx, subtask)
	if err != nil {
		return nil, apperror.Store("failed to create subtask", err)
	}
	return created, nil
}

func (s *SubtaskService) ToggleCompletion(ctx context.Context, userID, taskID, subtaskID string) (*model.Subtask, error) {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}

	subtasks, err := s.store.SelectSubtasks(ctx, store.SubtaskFilter{UserID: userID, TaskID: taskID, ID: subtaskID}, nil)
	if err != nil {
		return nil, apperror.Store("failed to retrieve subtask", err)
	}
	if len(subtasks) == 0 {
		return nil, apperror.NotFound("Subtask", subtaskID)
	}

	now := time.Now().UTC()
	completed := !subtasks[0].Completed
	patch := store.SubtaskPatch{Completed: &completed, UpdatedAt: &now}
	if completed {
		patch.CompletedAt = &now
	} else {
		patch.ClearCompletedAt = true
	}

	rows, err := s.store.UpdateSubtasks(ctx, store.SubtaskFilter{UserID: userID, TaskID: taskID, ID: subtaskID}, patch)
	if err != nil {
		return nil, apperror.Store("failed to toggle subtask completion", err)
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("Subtask", subtaskID)
	}
	return &rows[0], nil
}

func (s *SubtaskService) Delete(ctx context.Context, userID, taskID, subtaskID string) error {
	if _, err := s.tasks.Get(ctx, userID, taskID); err != nil {
		return err
	}

	n, err := s.store.DeleteSubtasks(ctx, store.SubtaskFilter{UserID: userID, TaskID: taskID, ID: subtaskID})
	if err != nil {
		return apperror.Store("failed to delete subtask", err)
	}
	if n == 0 {
		return apperror.NotFound("Subtask", subtaskID)
	}
	return nil
}
