package dto

import "quadrantplanner/model"

type QuadrantAnalysisResponse struct {
	Distribution      model.QuadrantDistribution `json:"distribution"`
	Recommendations   []string                   `json:"recommendations"`
	IdealDistribution map[string]float64         `json:"ideal_distribution"`
}

type InsightsResponse struct {
	Score       model.ProductivityScore   `json:"score"`
	Trends      []model.ProductivityTrend `json:"trends"`
	Velocity    model.CompletionVelocity  `json:"velocity"`
	KeyInsights []string                  `json:"key_insights"`
	ActionItems []string                  `json:"action_items"`
}

type GoalProgressResponse struct {
	Goals                 []model.GoalWithStats `json:"goals"`
	TotalGoals            int                   `json:"total_goals"`
	AverageCompletionRate float64               `json:"average_completion_rate"`
}

type TrendsQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=90"`
}
