package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"quadrantplanner/model"
)

var errAggregateUnavailable = errors.New("aggregate unavailable")

// Memory is an in-memory Store used by tests. Rows are kept per user
// the way the hosted backend partitions them. WithinTx runs the
// function directly; there is no rollback.
type Memory struct {
	mu       sync.RWMutex
	tasks         map[string][]model.Task // userID -> tasks
	goals         map[string][]model.Goal
	subtasks      map[string][]model.Subtask
	refreshTokens map[string]model.RefreshTokenRecord

	currentUser string

	// FailTrends / FailStagingAnalytics force aggregate reads to fail
	// so degraded-report paths can be exercised.
	FailTrends           bool
	FailStagingAnalytics bool
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		tasks:         make(map[string][]model.Task),
		goals:         make(map[string][]model.Goal),
		subtasks:      make(map[string][]model.Subtask),
		refreshTokens: make(map[string]model.RefreshTokenRecord),
	}
}

func (m *Memory) GetRefreshToken(_ context.Context, userID string) (*model.RefreshTokenRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.refreshTokens[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) UpsertRefreshToken(_ context.Context, rec model.RefreshTokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshTokens[rec.UserID] = rec
	return nil
}

func (m *Memory) SetCurrentUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUser = userID
	return nil
}

func (m *Memory) WithinTx(_ context.Context, fn func(Store) error) error {
	return fn(m)
}

func matchTask(t model.Task, f TaskFilter) bool {
	if t.UserID != f.UserID {
		return false
	}
	if f.ID != "" && t.ID != f.ID {
		return false
	}
	if f.GoalID != "" && (t.GoalID == nil || *t.GoalID != f.GoalID) {
		return false
	}
	if f.Quadrant != "" && t.Quadrant != f.Quadrant {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.IsStaged != nil && t.IsStaged != *f.IsStaged {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	for _, want := range f.Tags {
		found := false
		for _, tag := range t.Tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortTasks(tasks []model.Task, order TaskOrder) {
	switch order {
	case TaskOrderPositionAsc:
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position < tasks[j].Position })
	case TaskOrderPositionDesc:
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Position > tasks[j].Position })
	case TaskOrderCreatedDesc:
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	default:
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].Position != tasks[j].Position {
				return tasks[i].Position < tasks[j].Position
			}
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	}
}

func paginate[T any](items []T, page *Page) []T {
	if page == nil {
		return items
	}
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func (m *Memory) SelectTasks(_ context.Context, f TaskFilter, order TaskOrder, page *Page) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Task
	for _, t := range m.tasks[f.UserID] {
		if matchTask(t, f) {
			out = append(out, t)
		}
	}
	sortTasks(out, order)
	return paginate(out, page), nil
}

func (m *Memory) CountTasks(_ context.Context, f TaskFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, t := range m.tasks[f.UserID] {
		if matchTask(t, f) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) InsertTask(_ context.Context, t model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	m.tasks[t.UserID] = append(m.tasks[t.UserID], t)
	return &t, nil
}

func applyTaskPatch(t *model.Task, p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.ClearGoalID {
		t.GoalID = nil
	} else if p.GoalID != nil {
		t.GoalID = p.GoalID
	}
	if p.Quadrant != nil {
		t.Quadrant = *p.Quadrant
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.EstimatedMinutes != nil {
		t.EstimatedMinutes = p.EstimatedMinutes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.IsStaged != nil {
		t.IsStaged = *p.IsStaged
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.ClearStagedAt {
		t.StagedAt = nil
	} else if p.StagedAt != nil {
		t.StagedAt = p.StagedAt
	}
	if p.ClearOrganizedAt {
		t.OrganizedAt = nil
	} else if p.OrganizedAt != nil {
		t.OrganizedAt = p.OrganizedAt
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
	} else if p.CompletedAt != nil {
		t.CompletedAt = p.CompletedAt
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
}

func (m *Memory) UpdateTasks(_ context.Context, f TaskFilter, p TaskPatch) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Task
	rows := m.tasks[f.UserID]
	for i := range rows {
		if matchTask(rows[i], f) {
			applyTaskPatch(&rows[i], p)
			out = append(out, rows[i])
		}
	}
	return out, nil
}

func (m *Memory) DeleteTasks(_ context.Context, f TaskFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tasks[f.UserID][:0]
	deleted := 0
	for _, t := range m.tasks[f.UserID] {
		if matchTask(t, f) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	m.tasks[f.UserID] = kept
	return deleted, nil
}

func matchGoal(g model.Goal, f GoalFilter) bool {
	if g.UserID != f.UserID {
		return false
	}
	if f.ID != "" && g.ID != f.ID {
		return false
	}
	if f.Category != "" && g.Category != f.Category {
		return false
	}
	if f.Timeframe != "" && g.Timeframe != f.Timeframe {
		return false
	}
	if f.Archived != nil && g.Archived != *f.Archived {
		return false
	}
	if f.TitleLike != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(f.TitleLike)) {
		return false
	}
	return true
}

func (m *Memory) SelectGoals(_ context.Context, f GoalFilter, page *Page) ([]model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Goal
	for _, g := range m.goals[f.UserID] {
		if matchGoal(g, f) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), nil
}

func (m *Memory) CountGoals(_ context.Context, f GoalFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, g := range m.goals[f.UserID] {
		if matchGoal(g, f) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) InsertGoal(_ context.Context, g model.Goal) (*model.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	m.goals[g.UserID] = append(m.goals[g.UserID], g)
	return &g, nil
}

func (m *Memory) UpdateGoals(_ context.Context, f GoalFilter, p GoalPatch) ([]model.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Goal
	rows := m.goals[f.UserID]
	for i := range rows {
		if !matchGoal(rows[i], f) {
			continue
		}
		if p.Title != nil {
			rows[i].Title = *p.Title
		}
		if p.Description != nil {
			rows[i].Description = p.Description
		}
		if p.Category != nil {
			rows[i].Category = *p.Category
		}
		if p.Timeframe != nil {
			rows[i].Timeframe = *p.Timeframe
		}
		if p.Color != nil {
			rows[i].Color = p.Color
		}
		if p.Archived != nil {
			rows[i].Archived = *p.Archived
		}
		if p.UpdatedAt != nil {
			rows[i].UpdatedAt = *p.UpdatedAt
		}
		out = append(out, rows[i])
	}
	return out, nil
}

func matchSubtask(st model.Subtask, f SubtaskFilter) bool {
	if st.UserID != f.UserID {
		return false
	}
	if f.TaskID != "" && st.TaskID != f.TaskID {
		return false
	}
	if f.ID != "" && st.ID != f.ID {
		return false
	}
	return true
}

func (m *Memory) SelectSubtasks(_ context.Context, f SubtaskFilter, page *Page) ([]model.Subtask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Subtask
	for _, st := range m.subtasks[f.UserID] {
		if matchSubtask(st, f) {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return paginate(out, page), nil
}

func (m *Memory) InsertSubtask(_ context.Context, st model.Subtask) (*model.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}
	m.subtasks[st.UserID] = append(m.subtasks[st.UserID], st)
	return &st, nil
}

func (m *Memory) UpdateSubtasks(_ context.Context, f SubtaskFilter, p SubtaskPatch) ([]model.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Subtask
	rows := m.subtasks[f.UserID]
	for i := range rows {
		if !matchSubtask(rows[i], f) {
			continue
		}
		if p.Title != nil {
			rows[i].Title = *p.Title
		}
		if p.Completed != nil {
			rows[i].Completed = *p.Completed
		}
		if p.Position != nil {
			rows[i].Position = *p.Position
		}
		if p.ClearCompletedAt {
			rows[i].CompletedAt = nil
		} else if p.CompletedAt != nil {
			rows[i].CompletedAt = p.CompletedAt
		}
		if p.UpdatedAt != nil {
			rows[i].UpdatedAt = *p.UpdatedAt
		}
		out = append(out, rows[i])
	}
	return out, nil
}

func (m *Memory) DeleteSubtasks(_ context.Context, f SubtaskFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.subtasks[f.UserID][:0]
	deleted := 0
	for _, st := range m.subtasks[f.UserID] {
		if matchSubtask(st, f) {
			deleted++
			continue
		}
		kept = append(kept, st)
	}
	m.subtasks[f.UserID] = kept
	return deleted, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (m *Memory) ProductivityTrends(_ context.Context, userID string, from, to time.Time) ([]model.ProductivityTrend, error) {
	if m.FailTrends {
		return nil, errAggregateUnavailable
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var trends []model.ProductivityTrend
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		tr := model.ProductivityTrend{Date: day}
		for _, t := range m.tasks[userID] {
			if t.CompletedAt != nil && sameDay(*t.CompletedAt, day) {
				tr.TasksCompleted++
			}
			if sameDay(t.CreatedAt, day) {
				tr.TasksCreated++
			}
			if !t.Completed && !t.CreatedAt.After(day.AddDate(0, 0, 1)) {
				tr.TotalActiveTasks++
			}
		}
		for _, g := range m.goals[userID] {
			if sameDay(g.CreatedAt, day) {
				tr.GoalsCreated++
			}
		}
		trends = append(trends, tr)
	}
	return trends, nil
}

func (m *Memory) StagingAnalytics(_ context.Context, userID string) (*model.StagingAnalytics, error) {
	if m.FailStagingAnalytics {
		return nil, errAggregateUnavailable
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sa model.StagingAnalytics
	var totalHours float64
	currentStaged := 0
	for _, t := range m.tasks[userID] {
		// staged_at is cleared when a task is organized out, so passage
		// through staging shows as either timestamp.
		if t.StagedAt != nil || t.OrganizedAt != nil {
			sa.TotalStagedItems++
		}
		if t.OrganizedAt != nil {
			sa.ItemsOrganizedFromStaging++
			enteredAt := t.CreatedAt
			if t.StagedAt != nil {
				enteredAt = *t.StagedAt
			}
			totalHours += t.OrganizedAt.Sub(enteredAt).Hours()
		}
		if t.Quadrant == model.QuadrantStaging && !t.Completed {
			currentStaged++
		}
	}
	if sa.ItemsOrganizedFromStaging > 0 {
		sa.AverageStagingTime = totalHours / float64(sa.ItemsOrganizedFromStaging)
	}
	if sa.TotalStagedItems > 0 {
		sa.StagingEfficiency = float64(sa.ItemsOrganizedFromStaging) / float64(sa.TotalStagedItems) * 100
	}
	sa.CurrentStagingUtilization = float64(currentStaged) / 5 * 100
	return &sa, nil
}
