package model

import "time"

type GoalCategory string

const (
	CategoryCareer        GoalCategory = "career"
	CategoryHealth        GoalCategory = "health"
	CategoryRelationships GoalCategory = "relationships"
	CategoryLearning      GoalCategory = "learning"
	CategoryFinancial     GoalCategory = "financial"
	CategoryPersonal      GoalCategory = "personal"
)

type GoalTimeframe string

const (
	ThreeMonths GoalTimeframe = "3_months"
	SixMonths   GoalTimeframe = "6_months"
	OneYear     GoalTimeframe = "1_year"
	Ongoing     GoalTimeframe = "ongoing"
)

type Goal struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Category    GoalCategory  `json:"category"`
	Timeframe   GoalTimeframe `json:"timeframe"`
	Color       *string       `json:"color,omitempty"`
	Archived    bool          `json:"archived"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type GoalStats struct {
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	ActiveTasks    int        `json:"active_tasks"`
	CompletionRate float64    `json:"completion_rate"`
	AverageTaskAge *float64   `json:"average_task_age,omitempty"` // days, active tasks only
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

type GoalWithStats struct {
	Goal
	GoalStats
}

type GoalWithTasks struct {
	Goal
	Tasks []Task    `json:"tasks"`
	Stats GoalStats `json:"stats"`
}
