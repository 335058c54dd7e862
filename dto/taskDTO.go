package dto

import (
	"time"

	"quadrantplanner/model"
)

type ListTasksQuery struct {
	Limit       int      `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset      int      `form:"offset" binding:"omitempty,gte=0"`
	GoalID      string   `form:"goal_id"`
	Quadrant    string   `form:"quadrant" binding:"omitempty,oneof=Q1 Q2 Q3 Q4 staging"`
	Priority    string   `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Completed   *bool    `form:"completed"`
	IsStaged    *bool    `form:"is_staged"`
	Tags        []string `form:"tags"`
	IncludeGoal bool     `form:"include_goal"`
}

type TasksListResponse struct {
	Tasks   []model.TaskWithGoal `json:"tasks"`
	Total   int                  `json:"total"`
	HasMore bool                 `json:"has_more"`
}

type CreateTaskRequest struct {
	Title            string     `json:"title" binding:"required,max=200"`
	Description      *string    `json:"description" binding:"omitempty,max=1000"`
	GoalID           *string    `json:"goal_id"`
	Quadrant         string     `json:"quadrant" binding:"required,oneof=Q1 Q2 Q3 Q4 staging"`
	DueDate          *time.Time `json:"due_date"`
	EstimatedMinutes *int       `json:"estimated_minutes" binding:"omitempty,min=1,max=480"`
	Priority         string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Tags             []string   `json:"tags" binding:"omitempty,max=10,dive,max=50"`
	Position         *int       `json:"position" binding:"omitempty,gte=0"`
}

type UpdateTaskRequest struct {
	Title            *string    `json:"title" binding:"omitempty,max=200"`
	Description      *string    `json:"description" binding:"omitempty,max=1000"`
	GoalID           *string    `json:"goal_id"`
	Quadrant         *string    `json:"quadrant" binding:"omitempty,oneof=Q1 Q2 Q3 Q4 staging"`
	DueDate          *time.Time `json:"due_date"`
	EstimatedMinutes *int       `json:"estimated_minutes" binding:"omitempty,min=1,max=480"`
	Priority         *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Tags             []string   `json:"tags" binding:"omitempty,max=10,dive,max=50"`
	Completed        *bool      `json:"completed"`
	Position         *int       `json:"position" binding:"omitempty,gte=0"`
}

type MoveTaskRequest struct {
	Quadrant string `json:"quadrant" binding:"required,oneof=Q1 Q2 Q3 Q4 staging"`
	Position int    `json:"position" binding:"gte=0"`
}
