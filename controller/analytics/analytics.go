package analytics

import (
	"net/http"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/middleware"
	"quadrantplanner/services"

	"github.com/gin-gonic/gin"
)

func AnalyticsController(router *gin.Engine, analyticsService *services.AnalyticsService, scoreService *services.ScoreService, taskService *services.TaskService) {
	auth := middleware.AccessTokenMiddleware()

	router.GET("/analytics/score", auth, func(c *gin.Context) {
		GetScore(c, scoreService)
	})
	router.GET("/analytics/quadrants", auth, func(c *gin.Context) {
		GetQuadrantAnalysis(c, analyticsService)
	})
	router.GET("/analytics/distribution", auth, func(c *gin.Context) {
		GetDistribution(c, analyticsService)
	})
	router.GET("/analytics/trends", auth, func(c *gin.Context) {
		GetTrends(c, analyticsService)
	})
	router.GET("/analytics/velocity", auth, func(c *gin.Context) {
		GetVelocity(c, analyticsService)
	})
	router.GET("/analytics/staging", auth, func(c *gin.Context) {
		GetStagingAnalytics(c, analyticsService)
	})
	router.GET("/analytics/insights", auth, func(c *gin.Context) {
		GetInsights(c, analyticsService)
	})
	router.GET("/analytics/goals/progress", auth, func(c *gin.Context) {
		GetGoalProgress(c, analyticsService)
	})
	router.GET("/analytics/timeframes", auth, func(c *gin.Context) {
		GetTimeframeAnalysis(c, analyticsService)
	})
	router.GET("/analytics/categories", auth, func(c *gin.Context) {
		GetCategoryAnalysis(c, analyticsService)
	})
	router.GET("/analytics/priorities", auth, func(c *gin.Context) {
		GetPriorityAnalysis(c, analyticsService)
	})
	router.GET("/analytics/overdue", auth, func(c *gin.Context) {
		GetOverdueAnalysis(c, analyticsService)
	})
	router.GET("/analytics/tasks/stats", auth, func(c *gin.Context) {
		GetTaskStats(c, taskService)
	})
}

func GetScore(c *gin.Context, scoreService *services.ScoreService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, scoreService.ProductivityScore(c.Request.Context(), userId))
}

func GetQuadrantAnalysis(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, analyticsService.QuadrantAnalysis(c.Request.Context(), userId))
}

func GetDistribution(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, analyticsService.Distribution(c.Request.Context(), userId))
}

func GetTrends(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	var query dto.TrendsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": analyticsService.Trends(c.Request.Context(), userId, query.Days)})
}

func GetVelocity(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	var query dto.TrendsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	c.JSON(http.StatusOK, analyticsService.Velocity(c.Request.Context(), userId, query.Days))
}

func GetStagingAnalytics(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, analyticsService.StagingReport(c.Request.Context(), userId))
}

func GetInsights(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, analyticsService.Insights(c.Request.Context(), userId))
}

func GetGoalProgress(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, analyticsService.GoalProgress(c.Request.Context(), userId))
}

func GetTimeframeAnalysis(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	timeframes := analyticsService.TimeframeAnalysis(c.Request.Context(), userId)
	c.JSON(http.StatusOK, gin.H{"timeframes": timeframes, "total_timeframes": len(timeframes)})
}

func GetCategoryAnalysis(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	categories := analyticsService.CategoryAnalysis(c.Request.Context(), userId)
	c.JSON(http.StatusOK, gin.H{"categories": categories, "total_categories": len(categories)})
}

func GetPriorityAnalysis(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	priorities := analyticsService.PriorityAnalysis(c.Request.Context(), userId)
	c.JSON(http.StatusOK, gin.H{"priorities": priorities, "total_priorities": len(priorities)})
}

func GetOverdueAnalysis(c *gin.Context, analyticsService *services.AnalyticsService) {
	userId := c.MustGet("userId").(string)
	c.JSON(http.StatusOK, analyticsService.OverdueAnalysis(c.Request.Context(), userId))
}

func GetTaskStats(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)

	stats, err := taskService.Stats(c.Request.Context(), userId)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
