// Package store abstracts the hosted relational backend. All row
// access is scoped by an exact-match user filter; the planner never
// reads across users.
package store

import (
	"context"
	"time"

	"quadrantplanner/model"
)

// Page bounds a select. Limit <= 0 means no limit.
type Page struct {
	Limit  int
	Offset int
}

type TaskOrder int

const (
	// TaskOrderDefault is position ascending, then newest first.
	TaskOrderDefault TaskOrder = iota
	TaskOrderPositionAsc
	TaskOrderPositionDesc
	TaskOrderCreatedDesc
)

// TaskFilter matches tasks by exact fields. Zero values are ignored
// except UserID, which is always required.
type TaskFilter struct {
	UserID    string
	ID        string
	GoalID    string
	Quadrant  model.Quadrant
	Completed *bool
	IsStaged  *bool
	Priority  model.Priority
	Tags      []string // array-contains, all must match
}

// TaskPatch lists the columns to write. Nil pointers are untouched;
// Clear* flags write NULL.
type TaskPatch struct {
	Title            *string
	Description      *string
	GoalID           *string
	ClearGoalID      bool
	Quadrant         *model.Quadrant
	DueDate          *time.Time
	EstimatedMinutes *int
	Priority         *model.Priority
	Tags             []string
	Completed        *bool
	IsStaged         *bool
	Position         *int
	StagedAt         *time.Time
	ClearStagedAt    bool
	OrganizedAt      *time.Time
	ClearOrganizedAt bool
	CompletedAt      *time.Time
	ClearCompletedAt bool
	UpdatedAt        *time.Time
}

type GoalFilter struct {
	UserID    string
	ID        string
	Category  model.GoalCategory
	Timeframe model.GoalTimeframe
	Archived  *bool
	TitleLike string // case-insensitive substring
}

type GoalPatch struct {
	Title       *string
	Description *string
	Category    *model.GoalCategory
	Timeframe   *model.GoalTimeframe
	Color       *string
	Archived    *bool
	UpdatedAt   *time.Time
}

type SubtaskFilter struct {
	UserID string
	TaskID string
	ID     string
}

type SubtaskPatch struct {
	Title            *string
	Completed        *bool
	Position         *int
	CompletedAt      *time.Time
	ClearCompletedAt bool
	UpdatedAt        *time.Time
}

// Store is the boundary with the hosted database. Implementations:
// Postgres for production, Memory for tests.
type Store interface {
	// SetCurrentUser scopes row visibility for subsequent calls on a
	// privileged connection.
	SetCurrentUser(ctx context.Context, userID string) error

	SelectTasks(ctx context.Context, f TaskFilter, order TaskOrder, page *Page) ([]model.Task, error)
	CountTasks(ctx context.Context, f TaskFilter) (int, error)
	InsertTask(ctx context.Context, t model.Task) (*model.Task, error)
	UpdateTasks(ctx context.Context, f TaskFilter, p TaskPatch) ([]model.Task, error)
	DeleteTasks(ctx context.Context, f TaskFilter) (int, error)

	SelectGoals(ctx context.Context, f GoalFilter, page *Page) ([]model.Goal, error)
	CountGoals(ctx context.Context, f GoalFilter) (int, error)
	InsertGoal(ctx context.Context, g model.Goal) (*model.Goal, error)
	UpdateGoals(ctx context.Context, f GoalFilter, p GoalPatch) ([]model.Goal, error)

	SelectSubtasks(ctx context.Context, f SubtaskFilter, page *Page) ([]model.Subtask, error)
	InsertSubtask(ctx context.Context, st model.Subtask) (*model.Subtask, error)
	UpdateSubtasks(ctx context.Context, f SubtaskFilter, p SubtaskPatch) ([]model.Subtask, error)
	DeleteSubtasks(ctx context.Context, f SubtaskFilter) (int, error)

	// Refresh token bookkeeping. One record per user; Get returns nil
	// when the user has never refreshed.
	GetRefreshToken(ctx context.Context, userID string) (*model.RefreshTokenRecord, error)
	UpsertRefreshToken(ctx context.Context, rec model.RefreshTokenRecord) error

	// Aggregate reads used by analytics. Callers substitute zero
	// defaults when these fail; they must not block report generation.
	ProductivityTrends(ctx context.Context, userID string, from, to time.Time) ([]model.ProductivityTrend, error)
	StagingAnalytics(ctx context.Context, userID string) (*model.StagingAnalytics, error)

	// WithinTx runs fn against a transactional view of the store and
	// commits iff fn returns nil.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
