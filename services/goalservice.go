package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// MaxActiveGoalsPerUser is the per-user ceiling on non-archived goals.
const MaxActiveGoalsPerUser = 100

type GoalService struct {
	store  store.Store
	logger *slog.Logger
}

func NewGoalService(st store.Store, logger *slog.Logger) *GoalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoalService{store: st, logger: logger}
}

func (s *GoalService) List(ctx context.Context, userID string, q dto.ListGoalsQuery) (*dto.GoalsListResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	archived := q.Archived
	filter := store.GoalFilter{
		UserID:    userID,
		Category:  model.GoalCategory(q.Category),
		Timeframe: model.GoalTimeframe(q.Timeframe),
		Archived:  &archived,
	}

	total, err := s.store.CountGoals(ctx, filter)
	if err != nil {
		return nil, apperror.Store("failed to retrieve goals", err)
	}
	goals, err := s.store.SelectGoals(ctx, filter, &store.Page{Limit: limit, Offset: q.Offset})
	if err != nil {
		return nil, apperror.Store("failed to retrieve goals", err)
	}

	return s.listResponse(ctx, goals, total, limit, q.Offset, q.IncludeStats), nil
}

// Search matches goals by case-insensitive title substring.
func (s *GoalService) Search(ctx context.Context, userID string, q dto.SearchGoalsQuery) (*dto.GoalsListResponse, error) {
	query := strings.TrimSpace(q.Query)
	if len(query) < 2 {
		return nil, apperror.Validation("Search query must be at least 2 characters long")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	archived := q.Archived
	filter := store.GoalFilter{
		UserID:    userID,
		Category:  model.GoalCategory(q.Category),
		Archived:  &archived,
		TitleLike: query,
	}

	total, err := s.store.CountGoals(ctx, filter)
	if err != nil {
		return nil, apperror.Store("failed to search goals", err)
	}
	goals, err := s.store.SelectGoals(ctx, filter, &store.Page{Limit: limit, Offset: q.Offset})
	if err != nil {
		return nil, apperror.Store("failed to search goals", err)
	}

	return s.listResponse(ctx, goals, total, limit, q.Offset, q.IncludeStats), nil
}

func (s *GoalService) listResponse(ctx context.Context, goals []model.Goal, total, limit, offset int, includeStats bool) *dto.GoalsListResponse {
	resp := &dto.GoalsListResponse{
		Total:   total,
		HasMore: len(goals) == limit && offset+limit < total,
	}
	for _, g := range goals {
		withStats := model.GoalWithStats{Goal: g}
		if includeStats {
			stats, err := s.Stats(ctx, g.UserID, g.ID)
			if err != nil {
				s.logger.Warn("failed to compute goal stats", "goal_id", g.ID, "error", err)
			} else {
				withStats.GoalStats = *stats
			}
		}
		resp.Goals = append(resp.Goals, withStats)
	}
	return resp
}

func (s *GoalService) Get(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goals, err := s.store.SelectGoals(ctx, store.GoalFilter{UserID: userID, ID: goalID}, nil)
	if err != nil {
		return nil, apperror.Store("failed to retrieve goal", err)
	}
	if len(goals) == 0 {
		return nil, apperror.NotFound("Goal", goalID)
	}
	return &goals[0], nil
}

func (s *GoalService) GetWithTasks(ctx context.Context, userID, goalID string) (*model.GoalWithTasks, error) {
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID, GoalID: goalID}, store.TaskOrderDefault, nil)
	if err != nil {
		return nil, apperror.Store("failed to retrieve goal tasks", err)
	}
	stats, err := s.Stats(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &model.GoalWithTasks{Goal: *goal, Tasks: tasks, Stats: *stats}, nil
}

func (s *GoalService) Create(ctx context.Context, userID string, req dto.CreateGoalRequest) (*model.Goal, error) {
	archived := false
	count, err := s.store.CountGoals(ctx, store.GoalFilter{UserID: userID, Archived: &archived})
	if err != nil {
		return nil, apperror.Store("failed to create goal", err)
	}
	if count >= MaxActiveGoalsPerUser {
		return nil, apperror.CapacityExceeded(fmt.Sprintf("Maximum of %d active goals allowed per user", MaxActiveGoalsPerUser))
	}

	now := time.Now().UTC()
	goal := model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    model.GoalCategory(req.Category),
		Timeframe:   model.GoalTimeframe(req.Timeframe),
		Color:       req.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.store.InsertGoal(ctx, goal)
	if err != nil {
		return nil, apperror.Store("failed to create goal", err)
	}
	s.logger.Info("created goal", "goal_id", created.ID, "user_id", userID)
	return created, nil
}

func (s *GoalService) Update(ctx context.Context, userID, goalID string, req dto.UpdateGoalRequest) (*model.Goal, error) {
	if _, err := s.Get(ctx, userID, goalID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patch := store.GoalPatch{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Archived:    req.Archived,
		UpdatedAt:   &now,
	}
	if req.Category != nil {
		category := model.GoalCategory(*req.Category)
		patch.Category = &category
	}
	if req.Timeframe != nil {
		timeframe := model.GoalTimeframe(*req.Timeframe)
		patch.Timeframe = &timeframe
	}

	goals, err := s.store.UpdateGoals(ctx, store.GoalFilter{UserID: userID, ID: goalID}, patch)
	if err != nil {
		return nil, apperror.Store("failed to update goal", err)
	}
	if len(goals) == 0 {
		return nil, apperror.NotFound("Goal", goalID)
	}
	return &goals[0], nil
}

// Delete archives the goal, then re-parents its tasks by clearing
// their goal reference. Re-parenting is best effort: a failure is
// logged and the archive stands.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if _, err := s.Get(ctx, userID, goalID); err != nil {
		return err
	}

	now := time.Now().UTC()
	archived := true
	goals, err := s.store.UpdateGoals(ctx,
		store.GoalFilter{UserID: userID, ID: goalID},
		store.GoalPatch{Archived: &archived, UpdatedAt: &now})
	if err != nil {
		return apperror.Store("failed to delete goal", err)
	}
	if len(goals) == 0 {
		return apperror.NotFound("Goal", goalID)
	}

	_, err = s.store.UpdateTasks(ctx,
		store.TaskFilter{UserID: userID, GoalID: goalID},
		store.TaskPatch{ClearGoalID: true, UpdatedAt: &now})
	if err != nil {
		s.logger.Warn("failed to clear goal reference on tasks", "goal_id", goalID, "error", err)
	}

	s.logger.Info("archived goal", "goal_id", goalID, "user_id", userID)
	return nil
}

func (s *GoalService) Stats(ctx context.Context, userID, goalID string) (*model.GoalStats, error) {
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{UserID: userID, GoalID: goalID}, store.TaskOrderDefault, nil)
	if err != nil {
		return nil, apperror.Store("failed to retrieve goal statistics", err)
	}
	return goalStatsFromTasks(tasks), nil
}

func goalStatsFromTasks(tasks []model.Task) *model.GoalStats {
	stats := &model.GoalStats{}
	now := time.Now().UTC()
	var ageDays float64
	var lastActivity time.Time
	for _, t := range tasks {
		stats.TotalTasks++
		if t.Completed {
			stats.CompletedTasks++
		} else {
			stats.ActiveTasks++
			ageDays += now.Sub(t.CreatedAt).Hours() / 24
		}
		if t.UpdatedAt.After(lastActivity) {
			lastActivity = t.UpdatedAt
		}
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	if stats.ActiveTasks > 0 {
		avg := ageDays / float64(stats.ActiveTasks)
		stats.AverageTaskAge = &avg
	}
	if !lastActivity.IsZero() {
		stats.LastActivityAt = &lastActivity
	}
	return stats
}
