package task

import (
	"net/http"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/middleware"
	"quadrantplanner/services"

	"github.com/gin-gonic/gin"
)

func SubtaskController(router *gin.Engine, subtaskService *services.SubtaskService) {
	auth := middleware.AccessTokenMiddleware()

	router.GET("/tasks/:taskId/subtasks", auth, func(c *gin.Context) {
		ListSubtasks(c, subtaskService)
	})
	router.POST("/tasks/:taskId/subtasks", auth, func(c *gin.Context) {
		CreateSubtask(c, subtaskService)
	})
	router.PATCH("/tasks/:taskId/subtasks/:subtaskId/toggle", auth, func(c *gin.Context) {
		ToggleSubtask(c, subtaskService)
	})
	router.DELETE("/tasks/:taskId/subtasks/:subtaskId", auth, func(c *gin.Context) {
		DeleteSubtask(c, subtaskService)
	})
}

func ListSubtasks(c *gin.Context, subtaskService *services.SubtaskService) {
	userId := c.MustGet("userId").(string)

	subtasks, err := subtaskService.List(c.Request.Context(), userId, c.Param("taskId"))
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subtasks": subtasks})
}

func CreateSubtask(c *gin.Context, subtaskService *services.SubtaskService) {
	userId := c.MustGet("userId").(string)
	var req dto.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	subtask, err := subtaskService.Create(c.Request.Context(), userId, c.Param("taskId"), req.Title)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func ToggleSubtask(c *gin.Context, subtaskService *services.SubtaskService) {
	userId := c.MustGet("userId").(string)

	subtask, err := subtaskService.ToggleCompletion(c.Request.Context(), userId, c.Param("taskId"), c.Param("subtaskId"))
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func DeleteSubtask(c *gin.Context, subtaskService *services.SubtaskService) {
	userId := c.MustGet("userId").(string)

	if err := subtaskService.Delete(c.Request.Context(), userId, c.Param("taskId"), c.Param("subtaskId")); err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}
