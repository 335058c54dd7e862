// Package services holds the business logic between the controllers
// and the store.
package services

import (
	"context"
	"log/slog"

	"quadrantplanner/apperror"
	"quadrantplanner/model"
	"quadrantplanner/store"
)

// PositionService keeps the zero-based task ordering inside each
// (user, quadrant) partition consistent under insert, move and delete.
// Multi-row updates run inside a single store transaction.
type PositionService struct {
	store  store.Store
	logger *slog.Logger
}

func NewPositionService(st store.Store, logger *slog.Logger) *PositionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PositionService{store: st, logger: logger}
}

// NextPosition returns max position + 1 in the partition, or 0 when it
// is empty or unreadable.
func (s *PositionService) NextPosition(ctx context.Context, userID string, quadrant model.Quadrant) int {
	tasks, err := s.store.SelectTasks(ctx, store.TaskFilter{
		UserID:   userID,
		Quadrant: quadrant,
	}, store.TaskOrderPositionDesc, &store.Page{Limit: 1})
	if err != nil || len(tasks) == 0 {
		return 0
	}
	return tasks[0].Position + 1
}

// InsertAt writes the task at its assigned position and shifts every
// other task in the partition at that position or later up by one.
func (s *PositionService) InsertAt(ctx context.Context, t model.Task) (*model.Task, error) {
	var inserted *model.Task
	err := s.store.WithinTx(ctx, func(st store.Store) error {
		if err := st.SetCurrentUser(ctx, t.UserID); err != nil {
			return apperror.Store("failed to scope transaction", err)
		}
		row, err := st.InsertTask(ctx, t)
		if err != nil {
			return apperror.Store("failed to create task", err)
		}
		inserted = row
		return s.shiftFrom(ctx, st, t.UserID, t.Quadrant, t.Position, t.ID)
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// Move applies the patch to the task, shifts the target partition to
// open the requested slot, and compacts the source partition when the
// task left it. A move within one quadrant is insert-and-shift, not a
// swap: the occupant of the target position and everything after it
// moves up by one.
func (s *PositionService) Move(ctx context.Context, current model.Task, target model.Quadrant, position int, patch store.TaskPatch) (*model.Task, error) {
	var moved *model.Task
	err := s.store.WithinTx(ctx, func(st store.Store) error {
		if err := st.SetCurrentUser(ctx, current.UserID); err != nil {
			return apperror.Store("failed to scope transaction", err)
		}
		rows, err := st.UpdateTasks(ctx, store.TaskFilter{UserID: current.UserID, ID: current.ID}, patch)
		if err != nil {
			return apperror.Store("failed to move task", err)
		}
		if len(rows) == 0 {
			return apperror.NotFound("Task", current.ID)
		}
		moved = &rows[0]

		if err := s.shiftFrom(ctx, st, current.UserID, target, position, current.ID); err != nil {
			return err
		}
		if current.Quadrant != target {
			return s.compact(ctx, st, current.UserID, current.Quadrant)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Compact reassigns positions 0..n-1 in the partition, in position
// order, writing only the rows that change.
func (s *PositionService) Compact(ctx context.Context, userID string, quadrant model.Quadrant) error {
	return s.store.WithinTx(ctx, func(st store.Store) error {
		if err := st.SetCurrentUser(ctx, userID); err != nil {
			return apperror.Store("failed to scope transaction", err)
		}
		return s.compact(ctx, st, userID, quadrant)
	})
}

func (s *PositionService) shiftFrom(ctx context.Context, st store.Store, userID string, quadrant model.Quadrant, from int, excludeID string) error {
	tasks, err := st.SelectTasks(ctx, store.TaskFilter{
		UserID:   userID,
		Quadrant: quadrant,
	}, store.TaskOrderPositionAsc, nil)
	if err != nil {
		return apperror.Store("failed to read quadrant for reorder", err)
	}

	for _, t := range tasks {
		if t.ID == excludeID || t.Position < from {
			continue
		}
		next := t.Position + 1
		_, err := st.UpdateTasks(ctx,
			store.TaskFilter{UserID: userID, ID: t.ID},
			store.TaskPatch{Position: &next})
		if err != nil {
			return apperror.Store("failed to shift task position", err)
		}
	}
	return nil
}

func (s *PositionService) compact(ctx context.Context, st store.Store, userID string, quadrant model.Quadrant) error {
	tasks, err := st.SelectTasks(ctx, store.TaskFilter{
		UserID:   userID,
		Quadrant: quadrant,
	}, store.TaskOrderDefault, nil)
	if err != nil {
		return apperror.Store("failed to read quadrant for compaction", err)
	}

	for i := range tasks {
		if tasks[i].Position == i {
			continue
		}
		pos := i
		_, err := st.UpdateTasks(ctx,
			store.TaskFilter{UserID: userID, ID: tasks[i].ID},
			store.TaskPatch{Position: &pos})
		if err != nil {
			return apperror.Store("failed to compact quadrant", err)
		}
	}
	return nil
}
