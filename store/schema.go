package store

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS goals (
    id         UUID PRIMARY KEY,
    user_id    TEXT NOT NULL,
    title      VARCHAR(200) NOT NULL,
    description TEXT,
    category   TEXT NOT NULL CHECK (category IN ('career', 'health', 'relationships', 'learning', 'financial', 'personal')),
    timeframe  TEXT NOT NULL CHECK (timeframe IN ('3_months', '6_months', '1_year', 'ongoing')),
    color      VARCHAR(50),
    archived   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS tasks (
    id                UUID PRIMARY KEY,
    user_id           TEXT NOT NULL,
    goal_id           UUID REFERENCES goals(id) ON DELETE SET NULL,
    title             VARCHAR(200) NOT NULL,
    description       TEXT,
    quadrant          TEXT NOT NULL CHECK (quadrant IN ('Q1', 'Q2', 'Q3', 'Q4', 'staging')),
    due_date          TIMESTAMPTZ,
    estimated_minutes INTEGER CHECK (estimated_minutes BETWEEN 1 AND 480),
    priority          TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'urgent')) DEFAULT 'medium',
    tags              TEXT[] NOT NULL DEFAULT '{}',
    completed         BOOLEAN NOT NULL DEFAULT FALSE,
    is_staged         BOOLEAN NOT NULL DEFAULT FALSE,
    position          INTEGER NOT NULL DEFAULT 0,
    staged_at         TIMESTAMPTZ,
    organized_at      TIMESTAMPTZ,
    completed_at      TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS subtasks (
    id           UUID PRIMARY KEY,
    task_id      UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    user_id      TEXT NOT NULL,
    title        VARCHAR(200) NOT NULL,
    completed    BOOLEAN NOT NULL DEFAULT FALSE,
    position     INTEGER NOT NULL DEFAULT 0,
    completed_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
    user_id    TEXT PRIMARY KEY,
    token_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at TIMESTAMPTZ NOT NULL,
    revoked    BOOLEAN NOT NULL DEFAULT FALSE
)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_goals_archived ON goals (user_id, archived)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_goal_id ON tasks (goal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_partition ON tasks (user_id, quadrant, position)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks (due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_subtasks_task ON subtasks (task_id, position)`,
}

// EnsureSchema creates the tables and indexes if they don't exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
