package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// MaxTasksPerUser is the per-user task ceiling.
const MaxTasksPerUser = 1000

type TaskService struct {
	store    store.Store
	position *PositionService
	staging  *StagingService
	logger   *slog.Logger
}

func NewTaskService(st store.Store, position *PositionService, staging *StagingService, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{store: st, position: position, staging: staging, logger: logger}
}

func (s *TaskService) List(ctx context.Context, userID string, q dto.ListTasksQuery) (*dto.TasksListResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	filter := store.TaskFilter{
		UserID:    userID,
		GoalID:    q.GoalID,
		Quadrant:  model.Quadrant(q.Quadrant),
		Completed: q.Completed,
		IsStaged:  q.IsStaged,
		Priority:  model.Priority(q.Priority),
		Tags:      q.Tags,
	}

	total, err := s.store.CountTasks(ctx, filter)
	if err != nil {
		return nil, apperror.Store("failed to retrieve tasks", err)
	}

	tasks, err := s.store.SelectTasks(ctx, filter, store.TaskOrderDefault, &store.Page{Limit: limit, Offset: q.Offset})
	if err != nil {
		return nil, apperror.Store("failed to retrieve tasks", err)
	}

	resp := &dto.TasksListResponse{
		Total:   total,
		HasMore: len(tasks) == limit && q.Offset+limit < total,
	}
	if q.IncludeGoal {
		resp.Tasks = s.attachGoals(ctx, userID, tasks)
	} else {
		for _, t := range tasks {
			resp.Tasks = append(resp.Tasks, model.TaskWithGoal{Task: t})
		}
	}
	return resp, nil
}

// attachGoals embeds a goal summary on every task that references one.
// A failed goal read degrades to tasks without summaries.
func (s *TaskService) attachGoals(ctx context.Context, userID string, tasks []model.Task) []model.TaskWithGoal {
	summaries := make(map[string]*model.GoalSummary)
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID}, nil)
	if err != nil {
		s.logger.Warn("failed to load goals for task list", "user_id", userID, "error", err)
	} else {
		for i := range goals {
			summaries[goals[i].ID] = &model.GoalSummary{
				ID:       goals[i].ID,
				Title:    goals[i].Title,
				Category: string(goals[i].Category),
				Color:    goals[i].Color,
			}
		}
	}

	out := make([]model.TaskWithGoal, 0, len(tasks))
	for _, t := range tasks {
		withGoal := model.TaskWithGoal{Task: t}
		if t.GoalID != nil {
			withGoal.Goal = summaries[*t.GoalID]
		}
		out = append(out, withGoal)
	}
	return out
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID, ID: taskID}, store.TaskOrderDefault, nil)
	if err != nil {
		return nil, apperror.Store("failed to retrieve task", err)
	}
	if len(tasks) == 0 {
		return nil, apperror.NotFound("Task", taskID)
	}
	return &tasks[0], nil
}

func (s *TaskService) Create(ctx context.Context, userID string, req dto.CreateTaskRequest) (*model.Task, error) {
	count, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID})
	if err != nil {
		return nil, apperror.Store("failed to create task", err)
	}
	if count >= MaxTasksPerUser {
		return nil, apperror.CapacityExceeded(fmt.Sprintf("Maximum of %d tasks allowed per user", MaxTasksPerUser))
	}

	quadrant := model.Quadrant(req.Quadrant)
	if err := s.staging.Admit(ctx, userID, "", quadrant); err != nil {
		return nil, err
	}
	if req.GoalID != nil {
		if err := s.validateGoalOwnership(ctx, userID, *req.GoalID); err != nil {
			return nil, err
		}
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		position = s.position.NextPosition(ctx, userID, quadrant)
	}

	priority := model.Priority(req.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:               uuid.New().String(),
		UserID:           userID,
		GoalID:           req.GoalID,
		Title:            req.Title,
		Description:      req.Description,
		Quadrant:         quadrant,
		DueDate:          req.DueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		Priority:         priority,
		Tags:             req.Tags,
		Position:         position,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if quadrant == model.QuadrantStaging {
		task.IsStaged = true
		task.StagedAt = &now
	}

	created, err := s.position.InsertAt(ctx, task)
	if err != nil {
		return nil, err
	}
	s.logger.Info("created task", "task_id", created.ID, "user_id", userID, "quadrant", quadrant)
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, req dto.UpdateTaskRequest) (*model.Task, error) {
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if req.GoalID != nil {
		if err := s.validateGoalOwnership(ctx, userID, *req.GoalID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	patch := store.TaskPatch{
		Title:            req.Title,
		Description:      req.Description,
		GoalID:           req.GoalID,
		DueDate:          req.DueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		Tags:             req.Tags,
		Position:         req.Position,
		UpdatedAt:        &now,
	}
	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		patch.Priority = &priority
	}
	if req.Quadrant != nil {
		quadrant := model.Quadrant(*req.Quadrant)
		if err := s.staging.Admit(ctx, userID, existing.Quadrant, quadrant); err != nil {
			return nil, err
		}
		patch.Quadrant = &quadrant
		s.staging.ApplyTransition(&patch, existing.Quadrant, quadrant, now)
	}
	if req.Completed != nil && *req.Completed != existing.Completed {
		patch.Completed = req.Completed
		if *req.Completed {
			patch.CompletedAt = &now
		} else {
			patch.ClearCompletedAt = true
		}
	}

	rows, err := s.store.UpdateTasks(ctx, store.TaskFilter{UserID: userID, ID: taskID}, patch)
	if err != nil {
		return nil, apperror.Store("failed to update task", err)
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("Task", taskID)
	}
	return &rows[0], nil
}

// Delete removes the task and compacts its quadrant. Compaction and
// subtask cleanup are best effort; a failure there leaves gaps that
// heal on the next compacting operation.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}

	n, err := s.store.DeleteTasks(ctx, store.TaskFilter{UserID: userID, ID: taskID})
	if err != nil {
		return apperror.Store("failed to delete task", err)
	}
	if n == 0 {
		return apperror.NotFound("Task", taskID)
	}

	if _, err := s.store.DeleteSubtasks(ctx, store.SubtaskFilter{UserID: userID, TaskID: taskID}); err != nil {
		s.logger.Warn("failed to delete subtasks of deleted task", "task_id", taskID, "error", err)
	}
	if err := s.position.Compact(ctx, userID, existing.Quadrant); err != nil {
		s.logger.Warn("failed to compact quadrant after delete",
			"user_id", userID, "quadrant", existing.Quadrant, "error", err)
	}

	s.logger.Info("deleted task", "task_id", taskID, "user_id", userID)
	return nil
}

func (s *TaskService) ToggleCompletion(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	completed := !task.Completed
	patch := store.TaskPatch{Completed: &completed, UpdatedAt: &now}
	if completed {
		patch.CompletedAt = &now
	} else {
		patch.ClearCompletedAt = true
	}

	rows, err := s.store.UpdateTasks(ctx, store.TaskFilter{UserID: userID, ID: taskID}, patch)
	if err != nil {
		return nil, apperror.Store("failed to toggle task completion", err)
	}
	if len(rows) == 0 {
		return nil, apperror.NotFound("Task", taskID)
	}
	return &rows[0], nil
}

func (s *TaskService) Move(ctx context.Context, userID, taskID string, req dto.MoveTaskRequest) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	target := model.Quadrant(req.Quadrant)
	if err := s.staging.Admit(ctx, userID, task.Quadrant, target); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	position := req.Position
	patch := store.TaskPatch{
		Quadrant:  &target,
		Position:  &position,
		UpdatedAt: &now,
	}
	s.staging.ApplyTransition(&patch, task.Quadrant, target, now)

	moved, err := s.position.Move(ctx, *task, target, position, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("moved task", "task_id", taskID, "user_id", userID,
		"from", task.Quadrant, "to", target, "position", position)
	return moved, nil
}

func (s *TaskService) Stats(ctx context.Context, userID string) (*model.TaskStats, error) {
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID},
		store.TaskOrderDefault, &store.Page{Limit: MaxTasksPerUser})
	if err != nil {
		return nil, apperror.Store("failed to retrieve task statistics", err)
	}

	stats := &model.TaskStats{
		QuadrantDistribution: map[string]int{
			"Q1": 0, "Q2": 0, "Q3": 0, "Q4": 0, "staging": 0,
		},
	}
	now := time.Now().UTC()
	for _, t := range tasks {
		stats.TotalTasks++
		if t.Completed {
			stats.CompletedTasks++
			continue
		}
		stats.ActiveTasks++
		if t.DueDate != nil && t.DueDate.Before(now) {
			stats.OverdueTasks++
		}
		stats.QuadrantDistribution[string(t.Quadrant)]++
		if t.Quadrant == model.QuadrantStaging {
			stats.StagingTasks++
		}
	}
	return stats, nil
}

func (s *TaskService) validateGoalOwnership(ctx context.Context, userID, goalID string) error {
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID, ID: goalID}, nil)
	if err != nil {
		return apperror.Store("failed to validate goal ownership", err)
	}
	if len(goals) == 0 {
		return apperror.NotFound("Goal", goalID)
	}
	return nil
}
