package task

import (
	"net/http"

	"quadrantplanner/apperror"
	"quadrantplanner/dto"
	"quadrantplanner/middleware"
	"quadrantplanner/services"

	"github.com/gin-gonic/gin"
)

func TaskController(router *gin.Engine, taskService *services.TaskService) {
	auth := middleware.AccessTokenMiddleware()

	router.GET("/tasks", auth, func(c *gin.Context) {
		ListTasks(c, taskService)
	})
	router.POST("/tasks", auth, func(c *gin.Context) {
		CreateTask(c, taskService)
	})
	router.GET("/tasks/:taskId", auth, func(c *gin.Context) {
		GetTask(c, taskService)
	})
	router.PATCH("/tasks/:taskId", auth, func(c *gin.Context) {
		UpdateTask(c, taskService)
	})
	router.DELETE("/tasks/:taskId", auth, func(c *gin.Context) {
		DeleteTask(c, taskService)
	})
	router.PATCH("/tasks/:taskId/toggle", auth, func(c *gin.Context) {
		ToggleTask(c, taskService)
	})
	router.PATCH("/tasks/:taskId/move", auth, func(c *gin.Context) {
		MoveTask(c, taskService)
	})
}

func ListTasks(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)
	var query dto.ListTasksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := taskService.List(c.Request.Context(), userId, query)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func CreateTask(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	task, err := taskService.Create(c.Request.Context(), userId, req)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func GetTask(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)

	task, err := taskService.Get(c.Request.Context(), userId, c.Param("taskId"))
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTask(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	task, err := taskService.Update(c.Request.Context(), userId, c.Param("taskId"), req)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)

	if err := taskService.Delete(c.Request.Context(), userId, c.Param("taskId")); err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func ToggleTask(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)

	task, err := taskService.ToggleCompletion(c.Request.Context(), userId, c.Param("taskId"))
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func MoveTask(c *gin.Context, taskService *services.TaskService) {
	userId := c.MustGet("userId").(string)
	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	task, err := taskService.Move(c.Request.Context(), userId, c.Param("taskId"), req)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
