package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"quadrantplanner/model"
)

const taskColumns = `id, user_id, goal_id, title, description, quadrant, due_date,
	estimated_minutes, priority, tags, completed, is_staged, position,
	staged_at, organized_at, completed_at, created_at, updated_at`

const goalColumns = `id, user_id, title, description, category, timeframe, color,
	archived, created_at, updated_at`

const subtaskColumns = `id, task_id, user_id, title, completed, position,
	completed_at, created_at, updated_at`

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	db   querier
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, db: pool}
}

// SetCurrentUser sets the per-transaction user for row policies. The
// local flag scopes it to the open transaction, so pooled connections
// never leak another caller's identity.
func (p *Postgres) SetCurrentUser(ctx context.Context, userID string) error {
	_, err := p.db.Exec(ctx, `SELECT set_config('app.current_user_id', $1, true)`, userID)
	return err
}

// WithinTx runs fn against a transactional store. Nested calls reuse
// the open transaction.
func (p *Postgres) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := p.db.(pgx.Tx); ok {
		return fn(p)
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{pool: p.pool, db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func taskWhere(f TaskFilter, a *args) string {
	conds := []string{"user_id = " + a.add(f.UserID)}
	if f.ID != "" {
		conds = append(conds, "id = "+a.add(f.ID))
	}
	if f.GoalID != "" {
		conds = append(conds, "goal_id = "+a.add(f.GoalID))
	}
	if f.Quadrant != "" {
		conds = append(conds, "quadrant = "+a.add(string(f.Quadrant)))
	}
	if f.Completed != nil {
		conds = append(conds, "completed = "+a.add(*f.Completed))
	}
	if f.IsStaged != nil {
		conds = append(conds, "is_staged = "+a.add(*f.IsStaged))
	}
	if f.Priority != "" {
		conds = append(conds, "priority = "+a.add(string(f.Priority)))
	}
	for _, tag := range f.Tags {
		conds = append(conds, "tags @> ARRAY["+a.add(tag)+"]")
	}
	return strings.Join(conds, " AND ")
}

func taskOrderBy(order TaskOrder) string {
	switch order {
	case TaskOrderPositionAsc:
		return " ORDER BY position ASC"
	case TaskOrderPositionDesc:
		return " ORDER BY position DESC"
	case TaskOrderCreatedDesc:
		return " ORDER BY created_at DESC"
	default:
		return " ORDER BY position ASC, created_at DESC"
	}
}

func pageClause(page *Page, a *args) string {
	if page == nil {
		return ""
	}
	clause := ""
	if page.Limit > 0 {
		clause += " LIMIT " + a.add(page.Limit)
	}
	if page.Offset > 0 {
		clause += " OFFSET " + a.add(page.Offset)
	}
	return clause
}

func scanTask(row pgx.Rows) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.UserID, &t.GoalID, &t.Title, &t.Description,
		&t.Quadrant, &t.DueDate, &t.EstimatedMinutes, &t.Priority, &t.Tags,
		&t.Completed, &t.IsStaged, &t.Position, &t.StagedAt, &t.OrganizedAt,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (p *Postgres) SelectTasks(ctx context.Context, f TaskFilter, order TaskOrder, page *Page) ([]model.Task, error) {
	var a args
	query := "SELECT " + taskColumns + " FROM tasks WHERE " + taskWhere(f, &a) +
		taskOrderBy(order) + pageClause(page, &a)

	rows, err := p.db.Query(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) CountTasks(ctx context.Context, f TaskFilter) (int, error) {
	var a args
	query := "SELECT COUNT(*) FROM tasks WHERE " + taskWhere(f, &a)

	var n int
	if err := p.db.QueryRow(ctx, query, a...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Postgres) InsertTask(ctx context.Context, t model.Task) (*model.Task, error) {
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

	rows, err := p.db.Query(ctx, `
INSERT INTO tasks (`+taskColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING `+taskColumns,
		t.ID, t.UserID, t.GoalID, t.Title, t.Description, string(t.Quadrant),
		t.DueDate, t.EstimatedMinutes, string(t.Priority), t.Tags, t.Completed,
		t.IsStaged, t.Position, t.StagedAt, t.OrganizedAt, t.CompletedAt,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	inserted, err := scanTask(rows)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

func taskSet(patch TaskPatch, a *args) []string {
	var sets []string
	set := func(col string, v any) {
		sets = append(sets, col+" = "+a.add(v))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.ClearGoalID {
		sets = append(sets, "goal_id = NULL")
	} else if patch.GoalID != nil {
		set("goal_id", *patch.GoalID)
	}
	if patch.Quadrant != nil {
		set("quadrant", string(*patch.Quadrant))
	}
	if patch.DueDate != nil {
		set("due_date", *patch.DueDate)
	}
	if patch.EstimatedMinutes != nil {
		set("estimated_minutes", *patch.EstimatedMinutes)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Tags != nil {
		set("tags", patch.Tags)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	if patch.IsStaged != nil {
		set("is_staged", *patch.IsStaged)
	}
	if patch.Position != nil {
		set("position", *patch.Position)
	}
	if patch.ClearStagedAt {
		sets = append(sets, "staged_at = NULL")
	} else if patch.StagedAt != nil {
		set("staged_at", *patch.StagedAt)
	}
	if patch.ClearOrganizedAt {
		sets = append(sets, "organized_at = NULL")
	} else if patch.OrganizedAt != nil {
		set("organized_at", *patch.OrganizedAt)
	}
	if patch.ClearCompletedAt {
		sets = append(sets, "completed_at = NULL")
	} else if patch.CompletedAt != nil {
		set("completed_at", *patch.CompletedAt)
	}
	if patch.UpdatedAt != nil {
		set("updated_at", *patch.UpdatedAt)
	}
	return sets
}

func (p *Postgres) UpdateTasks(ctx context.Context, f TaskFilter, patch TaskPatch) ([]model.Task, error) {
	var a args
	sets := taskSet(patch, &a)
	if len(sets) == 0 {
		return p.SelectTasks(ctx, f, TaskOrderDefault, nil)
	}
	query := "UPDATE tasks SET " + strings.Join(sets, ", ") +
		" WHERE " + taskWhere(f, &a) + " RETURNING " + taskColumns

	rows, err := p.db.Query(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) DeleteTasks(ctx context.Context, f TaskFilter) (int, error) {
	var a args
	tag, err := p.db.Exec(ctx, "DELETE FROM tasks WHERE "+taskWhere(f, &a), a...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func goalWhere(f GoalFilter, a *args) string {
	conds := []string{"user_id = " + a.add(f.UserID)}
	if f.ID != "" {
		conds = append(conds, "id = "+a.add(f.ID))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+a.add(string(f.Category)))
	}
	if f.Timeframe != "" {
		conds = append(conds, "timeframe = "+a.add(string(f.Timeframe)))
	}
	if f.Archived != nil {
		conds = append(conds, "archived = "+a.add(*f.Archived))
	}
	if f.TitleLike != "" {
		conds = append(conds, "title ILIKE "+a.add("%"+f.TitleLike+"%"))
	}
	return strings.Join(conds, " AND ")
}

func scanGoal(rows pgx.Rows) (model.Goal, error) {
	var g model.Goal
	err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Description, &g.Category,
		&g.Timeframe, &g.Color, &g.Archived, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (p *Postgres) SelectGoals(ctx context.Context, f GoalFilter, page *Page) ([]model.Goal, error) {
	var a args
	query := "SELECT " + goalColumns + " FROM goals WHERE " + goalWhere(f, &a) +
		" ORDER BY created_at DESC" + pageClause(page, &a)

	rows, err := p.db.Query(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (p *Postgres) CountGoals(ctx context.Context, f GoalFilter) (int, error) {
	var a args
	var n int
	err := p.db.QueryRow(ctx, "SELECT COUNT(*) FROM goals WHERE "+goalWhere(f, &a), a...).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Postgres) InsertGoal(ctx context.Context, g model.Goal) (*model.Goal, error) {
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}

	rows, err := p.db.Query(ctx, `
INSERT INTO goals (`+goalColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+goalColumns,
		g.ID, g.UserID, g.Title, g.Description, string(g.Category),
		string(g.Timeframe), g.Color, g.Archived, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	inserted, err := scanGoal(rows)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (p *Postgres) UpdateGoals(ctx context.Context, f GoalFilter, patch GoalPatch) ([]model.Goal, error) {
	var a args
	var sets []string
	set := func(col string, v any) {
		sets = append(sets, col+" = "+a.add(v))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.Timeframe != nil {
		set("timeframe", string(*patch.Timeframe))
	}
	if patch.Color != nil {
		set("color", *patch.Color)
	}
	if patch.Archived != nil {
		set("archived", *patch.Archived)
	}
	if patch.UpdatedAt != nil {
		set("updated_at", *patch.UpdatedAt)
	}
	if len(sets) == 0 {
		return p.SelectGoals(ctx, f, nil)
	}

	query := "UPDATE goals SET " + strings.Join(sets, ", ") +
		" WHERE " + goalWhere(f, &a) + " RETURNING " + goalColumns

	rows, err := p.db.Query(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func subtaskWhere(f SubtaskFilter, a *args) string {
	conds := []string{"user_id = " + a.add(f.UserID)}
	if f.TaskID != "" {
		conds = append(conds, "task_id = "+a.add(f.TaskID))
	}
	if f.ID != "" {
		conds = append(conds, "id = "+a.add(f.ID))
	}
	return strings.Join(conds, " AND ")
}

func scanSubtask(rows pgx.Rows) (model.Subtask, error) {
	var st model.Subtask
	err := rows.Scan(&st.ID, &st.TaskID, &st.UserID, &st.Title, &st.Completed,
		&st.Position, &st.CompletedAt, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func (p *Postgres) SelectSubtasks(ctx context.Context, f SubtaskFilter, page *Page) ([]model.Subtask, error) {
	var a args
	query := "SELECT " + subtaskColumns + " FROM subtasks WHERE " + subtaskWhere(f, &a) +
		" ORDER BY position ASC" + pageClause(page, &a)

	rows, err := p.db.Query(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []model.Subtask
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

func (p *Postgres) InsertSubtask(ctx context.Context, st model.Subtask) (*model.Subtask, error) {
	now := time.Now().UTC()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now
	}

	rows, err := p.db.Query(ctx, `
INSERT INTO subtasks (`+subtaskColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+subtaskColumns,
		st.ID, st.TaskID, st.UserID, st.Title, st.Completed, st.Position,
		st.CompletedAt, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	inserted, err := scanSubtask(rows)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (p *Postgres) UpdateSubtasks(ctx context.Context, f SubtaskFilter, patch SubtaskPatch) ([]model.Subtask, error) {
	var a args
	var sets []string
	set := func(col string, v any) {
		sets = append(sets, col+" = "+a.add(v))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	if patch.Position != nil {
		set("position", *patch.Position)
	}
	if patch.ClearCompletedAt {
		sets = append(sets, "completed_at = NULL")
	} else if patch.CompletedAt != nil {
		set("completed_at", *patch.CompletedAt)
	}
	if patch.UpdatedAt != nil {
		set("updated_at", *patch.UpdatedAt)
	}
	if len(sets) == 0 {
		return p.SelectSubtasks(ctx, f, nil)
	}

	query := "UPDATE subtasks SET " + strings.Join(sets, ", ") +
		" WHERE " + subtaskWhere(f, &a) + " RETURNING " + subtaskColumns

	rows, err := p.db.Query(ctx, query, a...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subtasks []model.Subtask
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

func (p *Postgres) DeleteSubtasks(ctx context.Context, f SubtaskFilter) (int, error) {
	var a args
	tag, err := p.db.Exec(ctx, "DELETE FROM subtasks WHERE "+subtaskWhere(f, &a), a...)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) GetRefreshToken(ctx context.Context, userID string) (*model.RefreshTokenRecord, error) {
	var rec model.RefreshTokenRecord
	err := p.db.QueryRow(ctx, `
SELECT user_id, token_hash, created_at, expires_at, revoked
FROM refresh_tokens WHERE user_id = $1`, userID).Scan(
		&rec.UserID, &rec.TokenHash, &rec.CreatedAt, &rec.ExpiresAt, &rec.Revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *Postgres) UpsertRefreshToken(ctx context.Context, rec model.RefreshTokenRecord) error {
	_, err := p.db.Exec(ctx, `
INSERT INTO refresh_tokens (user_id, token_hash, created_at, expires_at, revoked)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET
    token_hash = EXCLUDED.token_hash,
    created_at = EXCLUDED.created_at,
    expires_at = EXCLUDED.expires_at,
    revoked    = EXCLUDED.revoked`,
		rec.UserID, rec.TokenHash, rec.CreatedAt, rec.ExpiresAt, rec.Revoked)
	return err
}

func (p *Postgres) ProductivityTrends(ctx context.Context, userID string, from, to time.Time) ([]model.ProductivityTrend, error) {
	rows, err := p.db.Query(ctx, `
SELECT d.day,
       (SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed_at::date = d.day::date),
       (SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND created_at::date = d.day::date),
       (SELECT COUNT(*) FROM goals WHERE user_id = $1 AND created_at::date = d.day::date),
       (SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed = FALSE AND created_at::date <= d.day::date)
FROM generate_series($2::date, $3::date, interval '1 day') AS d(day)
ORDER BY d.day`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []model.ProductivityTrend
	for rows.Next() {
		var tr model.ProductivityTrend
		if err := rows.Scan(&tr.Date, &tr.TasksCompleted, &tr.TasksCreated,
			&tr.GoalsCreated, &tr.TotalActiveTasks); err != nil {
			return nil, err
		}
		trends = append(trends, tr)
	}
	return trends, rows.Err()
}

// StagingAnalytics aggregates staging throughput. staged_at is cleared
// when a task is organized out, so passage through staging shows as
// either timestamp.
func (p *Postgres) StagingAnalytics(ctx context.Context, userID string) (*model.StagingAnalytics, error) {
	var sa model.StagingAnalytics
	var currentStaged int
	err := p.db.QueryRow(ctx, `
SELECT
    COALESCE(AVG(EXTRACT(EPOCH FROM (organized_at - COALESCE(staged_at, created_at))) / 3600.0)
        FILTER (WHERE organized_at IS NOT NULL), 0),
    COUNT(*) FILTER (WHERE staged_at IS NOT NULL OR organized_at IS NOT NULL),
    COUNT(*) FILTER (WHERE organized_at IS NOT NULL),
    COUNT(*) FILTER (WHERE quadrant = 'staging' AND completed = FALSE)
FROM tasks WHERE user_id = $1`, userID).Scan(
		&sa.AverageStagingTime, &sa.TotalStagedItems,
		&sa.ItemsOrganizedFromStaging, &currentStaged)
	if err != nil {
		return nil, err
	}

	if sa.TotalStagedItems > 0 {
		sa.StagingEfficiency = float64(sa.ItemsOrganizedFromStaging) / float64(sa.TotalStagedItems) * 100
	}
	sa.CurrentStagingUtilization = float64(currentStaged) / 5 * 100
	return &sa, nil
}
