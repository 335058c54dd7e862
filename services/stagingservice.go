package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// MaxStagingItems caps non-completed tasks in the staging zone per user.
const MaxStagingItems = 5

// StagingService enforces staging zone capacity and keeps the staging
// transition timestamps consistent.
type StagingService struct {
	store  store.Store
	logger *slog.Logger
}

func NewStagingService(st store.Store, logger *slog.Logger) *StagingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StagingService{store: st, logger: logger}
}

// Admit rejects any transition that would bring a task into staging
// while the zone already holds MaxStagingItems non-completed tasks.
// Updates inside staging and moves out of staging pass freely.
func (s *StagingService) Admit(ctx context.Context, userID string, from, to model.Quadrant) error {
	if to != model.QuadrantStaging || from == model.QuadrantStaging {
		return nil
	}

	completed := false
	count, err := s.store.CountTasks(ctx, store.TaskFilter{
		UserID:    userID,
		Quadrant:  model.QuadrantStaging,
		Completed: &completed,
	})
	if err != nil {
		return apperror.Store("failed to check staging zone capacity", err)
	}
	if count >= MaxStagingItems {
		return apperror.CapacityExceeded(fmt.Sprintf("Staging zone is full (maximum %d items)", MaxStagingItems))
	}
	return nil
}

// ApplyTransition sets the staging bookkeeping fields on the patch when
// the move crosses the staging boundary. Entering staging stamps
// staged_at and clears organized_at; leaving does the opposite.
func (s *StagingService) ApplyTransition(patch *store.TaskPatch, from, to model.Quadrant, now time.Time) {
	staged := true
	unstaged := false
	switch {
	case to == model.QuadrantStaging && from != model.QuadrantStaging:
		patch.IsStaged = &staged
		patch.StagedAt = &now
		patch.ClearOrganizedAt = true
	case to != model.QuadrantStaging && from == model.QuadrantStaging:
		patch.IsStaged = &unstaged
		patch.OrganizedAt = &now
		patch.ClearStagedAt = true
	}
}

// Zone reports the staging zone contents with processing reminders and
// suggestions.
func (s *StagingService) Zone(ctx context.Context, userID string) (*dto.StagingZoneResponse, error) {
	completed := false
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{
		UserID:    userID,
		Quadrant:  model.QuadrantStaging,
		Completed: &completed,
	}, store.TaskOrderDefault, &store.Page{Limit: MaxStagingItems})
	if err != nil {
		return nil, apperror.Store("failed to retrieve staging zone", err)
	}

	count := len(tasks)
	status := dto.StagingZoneStatus{
		CurrentCount: count,
		MaxCapacity:  MaxStagingItems,
		IsFull:       count >= MaxStagingItems,
	}

	var oldestDays int
	if count > 0 {
		oldest := tasks[0]
		for _, t := range tasks[1:] {
			if stagedTime(t).Before(stagedTime(oldest)) {
				oldest = t
			}
		}
		oldestDays = int(time.Since(stagedTime(oldest)).Hours() / 24)
		status.OldestItem = &dto.StagingOldestItem{
			TaskID:          oldest.ID,
			Title:           oldest.Title,
			DaysSinceStaged: oldestDays,
		}
	}

	if count >= 3 {
		status.ProcessingReminder = fmt.Sprintf("You have %d items staged. Consider organizing them into quadrants.", count)
	} else if status.OldestItem != nil && oldestDays > 5 {
		status.ProcessingReminder = fmt.Sprintf("You have items staged for %d days. Time to organize them!", oldestDays)
	}

	var suggestions []string
	if count >= MaxStagingItems-1 {
		suggestions = append(suggestions, "Your staging zone is almost full. Process some items to make room.")
	}
	if status.OldestItem != nil && oldestDays > 3 {
		suggestions = append(suggestions, "Consider organizing older staged items into appropriate quadrants.")
	}
	if count == 0 {
		suggestions = append(suggestions, "Stage quick thoughts here, then organize into quadrants.")
	}

	return &dto.StagingZoneResponse{
		Status:      status,
		Tasks:       tasks,
		Suggestions: suggestions,
	}, nil
}

func stagedTime(t model.Task) time.Time {
	if t.StagedAt != nil {
		return *t.StagedAt
	}
	return t.CreatedAt
}
