package model

import (
	"time"
)

type Quadrant string

const (
	QuadrantQ1      Quadrant = "Q1"      // urgent + important
	QuadrantQ2      Quadrant = "Q2"      // important, not urgent
	QuadrantQ3      Quadrant = "Q3"      // urgent, not important
	QuadrantQ4      Quadrant = "Q4"      // neither
	QuadrantStaging Quadrant = "staging" // capture zone, capacity limited
)

func (q Quadrant) Valid() bool {
	switch q {
	case QuadrantQ1, QuadrantQ2, QuadrantQ3, QuadrantQ4, QuadrantStaging:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Task struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	GoalID           *string    `json:"goal_id,omitempty"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	Quadrant         Quadrant   `json:"quadrant"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
	Priority         Priority   `json:"priority"`
	Tags             []string   `json:"tags"`
	Completed        bool       `json:"completed"`
	IsStaged         bool       `json:"is_staged"`
	Position         int        `json:"position"`
	StagedAt         *time.Time `json:"staged_at,omitempty"`
	OrganizedAt      *time.Time `json:"organized_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// GoalSummary is the embedded goal shape attached to tasks listed with
// their goal.
type GoalSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Color    *string `json:"color,omitempty"`
}

type TaskWithGoal struct {
	Task
	Goal *GoalSummary `json:"goal,omitempty"`
}

type TaskStats struct {
	TotalTasks           int            `json:"total_tasks"`
	CompletedTasks       int            `json:"completed_tasks"`
	ActiveTasks          int            `json:"active_tasks"`
	OverdueTasks         int            `json:"overdue_tasks"`
	StagingTasks         int            `json:"staging_tasks"`
	QuadrantDistribution map[string]int `json:"quadrant_distribution"`
}
