package model

import "time"

type QuadrantDistribution struct {
	UserID            string  `json:"user_id"`
	Q1Count           int     `json:"q1_count"`
	Q2Count           int     `json:"q2_count"`
	Q3Count           int     `json:"q3_count"`
	Q4Count           int     `json:"q4_count"`
	StagingCount      int     `json:"staging_count"`
	TotalActiveTasks  int     `json:"total_active_tasks"`
	Q1Percentage      float64 `json:"q1_percentage"`
	Q2Percentage      float64 `json:"q2_percentage"`
	Q3Percentage      float64 `json:"q3_percentage"`
	Q4Percentage      float64 `json:"q4_percentage"`
	StagingPercentage float64 `json:"staging_percentage"`
}

// ProductivityTrend is one day of activity counts.
type ProductivityTrend struct {
	Date             time.Time `json:"date"`
	TasksCompleted   int       `json:"tasks_completed"`
	TasksCreated     int       `json:"tasks_created"`
	GoalsCreated     int       `json:"goals_created"`
	TotalActiveTasks int       `json:"total_active_tasks"`
}

type CompletionVelocity struct {
	Period             string  `json:"period"`
	TasksCompleted     int     `json:"tasks_completed"`
	GoalsCompleted     int     `json:"goals_completed"`
	AverageTasksPerDay float64 `json:"average_tasks_per_day"`
	VelocityTrend      string  `json:"velocity_trend"`
}

type StagingAnalytics struct {
	AverageStagingTime         float64 `json:"average_staging_time"` // hours
	TotalStagedItems           int     `json:"total_staged_items"`
	ItemsOrganizedFromStaging  int     `json:"items_organized_from_staging"`
	StagingEfficiency          float64 `json:"staging_efficiency"`           // 0-100
	CurrentStagingUtilization  float64 `json:"current_staging_utilization"`  // 0-100
}

// TimeframeSummary groups goal progress by timeframe.
type TimeframeSummary struct {
	Timeframe             string  `json:"timeframe"`
	TotalGoals            int     `json:"total_goals"`
	ActiveGoals           int     `json:"active_goals"`
	CompletedGoals        int     `json:"completed_goals"`
	TotalTasks            int     `json:"total_tasks"`
	CompletedTasks        int     `json:"completed_tasks"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}

// CategorySummary groups goal progress by category.
type CategorySummary struct {
	Category              string  `json:"category"`
	TotalGoals            int     `json:"total_goals"`
	ActiveGoals           int     `json:"active_goals"`
	CompletedGoals        int     `json:"completed_goals"`
	TotalTasks            int     `json:"total_tasks"`
	CompletedTasks        int     `json:"completed_tasks"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}

// PriorityAnalysis groups task throughput by priority.
type PriorityAnalysis struct {
	Priority              string   `json:"priority"`
	TotalTasks            int      `json:"total_tasks"`
	CompletedTasks        int      `json:"completed_tasks"`
	OverdueTasks          int      `json:"overdue_tasks"`
	CompletionRate        float64  `json:"completion_rate"`
	AverageCompletionTime *float64 `json:"average_completion_time,omitempty"` // days
}

type OverdueTaskInfo struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Quadrant    string `json:"quadrant"`
	Priority    string `json:"priority"`
	DaysOverdue int    `json:"days_overdue"`
}

type OverdueAnalysis struct {
	TotalOverdue      int              `json:"total_overdue"`
	OverdueByQuadrant map[string]int   `json:"overdue_by_quadrant"`
	OverdueByPriority map[string]int   `json:"overdue_by_priority"`
	OverdueByDays     map[string]int   `json:"overdue_by_days"`
	OldestOverdueTask *OverdueTaskInfo `json:"oldest_overdue_task,omitempty"`
}

type ScoreTrend string

const (
	TrendImproving ScoreTrend = "improving"
	TrendStable    ScoreTrend = "stable"
	TrendDeclining ScoreTrend = "declining"
)

// ProductivityScore is computed on demand, never persisted.
type ProductivityScore struct {
	OverallScore           float64    `json:"overall_score"`
	GoalCompletionScore    float64    `json:"goal_completion_score"`
	TaskCompletionScore    float64    `json:"task_completion_score"`
	QuadrantBalanceScore   float64    `json:"quadrant_balance_score"`
	ConsistencyScore       float64    `json:"consistency_score"`
	StagingEfficiencyScore float64    `json:"staging_efficiency_score"`
	ScoreTrend             ScoreTrend `json:"score_trend"`
	Recommendations        []string   `json:"recommendations"`
}
