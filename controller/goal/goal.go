package goal

import (
	"net/http"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/middleware"
	"quadrantplanner/services"

	"github.com/gin-gonic/gin"
)

func GoalController(router *gin.Engine, goalService *services.GoalService) {
	auth := middleware.AccessTokenMiddleware()

	router.GET("/goals", auth, func(c *gin.Context) {
		ListGoals(c, goalService)
	})
	router.POST("/goals", auth, func(c *gin.Context) {
		CreateGoal(c, goalService)
	})
	router.GET("/goals/search", auth, func(c *gin.Context) {
		SearchGoals(c, goalService)
	})
	router.GET("/goals/:goalId", auth, func(c *gin.Context) {
		GetGoal(c, goalService)
	})
	router.PATCH("/goals/:goalId", auth, func(c *gin.Context) {
		UpdateGoal(c, goalService)
	})
	router.DELETE("/goals/:goalId", auth, func(c *gin.Context) {
		DeleteGoal(c, goalService)
	})
	router.GET("/goals/:goalId/stats", auth, func(c *gin.Context) {
		GoalStats(c, goalService)
	})
}

func ListGoals(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)
	var query dto.ListGoalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := goalService.List(c.Request.Context(), userId, query)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func SearchGoals(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)
	var query dto.SearchGoalsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := goalService.Search(c.Request.Context(), userId, query)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func CreateGoal(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)
	var req dto.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	goal, err := goalService.Create(c.Request.Context(), userId, req)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

// GetGoal returns the goal with its tasks and stats.
func GetGoal(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)

	goal, err := goalService.GetWithTasks(c.Request.Context(), userId, c.Param("goalId"))
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func UpdateGoal(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)
	var req dto.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	goal, err := goalService.Update(c.Request.Context(), userId, c.Param("goalId"), req)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// DeleteGoal archives the goal and unlinks its tasks.
func DeleteGoal(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)

	if err := goalService.Delete(c.Request.Context(), userId, c.Param("goalId")); err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Goal archived successfully"})
}

func GoalStats(c *gin.Context, goalService *services.GoalService) {
	userId := c.MustGet("userId").(string)

	stats, err := goalService.Stats(c.Request.Context(), userId, c.Param("goalId"))
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
