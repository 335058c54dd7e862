package dto

import "quadrantplanner/model"

type ListGoalsQuery struct {
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset       int    `form:"offset" binding:"omitempty,gte=0"`
	Category     string `form:"category" binding:"omitempty,oneof=career health relationships learning financial personal"`
	Timeframe    string `form:"timeframe" binding:"omitempty,oneof=3_months 6_months 1_year ongoing"`
	Archived     bool   `form:"archived"`
	IncludeStats bool   `form:"include_stats"`
}

type SearchGoalsQuery struct {
	Query        string `form:"q" binding:"required"`
	Limit        int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset       int    `form:"offset" binding:"omitempty,gte=0"`
	Category     string `form:"category" binding:"omitempty,oneof=career health relationships learning financial personal"`
	Archived     bool   `form:"archived"`
	IncludeStats bool   `form:"include_stats"`
}

type GoalsListResponse struct {
	Goals   []model.GoalWithStats `json:"goals"`
	Total   int                   `json:"total"`
	HasMore bool                  `json:"has_more"`
}

type CreateGoalRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    string  `json:"category" binding:"required,oneof=career health relationships learning financial personal"`
	Timeframe   string  `json:"timeframe" binding:"required,oneof=3_months 6_months 1_year ongoing"`
	Color       *string `json:"color" binding:"omitempty,max=20"`
}

type UpdateGoalRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    *string `json:"category" binding:"omitempty,oneof=career health relationships learning financial personal"`
	Timeframe   *string `json:"timeframe" binding:"omitempty,oneof=3_months 6_months 1_year ongoing"`
	Color       *string `json:"color" binding:"omitempty,max=20"`
	Archived    *bool   `json:"archived"`
}
