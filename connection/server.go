package connection

import (
	"log"
	"log/slog"
	"os"
	"strings"

	analyticscontroller "quadrantplanner/controller/analytics"
	authcontroller "quadrantplanner/controller/auth"
	goalcontroller "quadrantplanner/controller/goal"
	stagingcontroller "quadrantplanner/controller/staging"
	taskcontroller "quadrantplanner/controller/task"
	"quadrantplanner/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func StartServer() {
	router := gin.Default()

	pg, err := PGConnection()
	if err != nil {
		log.Fatalf("Failed to initialize Postgres store: %v", err)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	router.Use(corsConfig())

	logger := slog.Default()
	position := services.NewPositionService(pg, logger)
	staging := services.NewStagingService(pg, logger)
	tasks := services.NewTaskService(pg, position, staging, logger)
	subtasks := services.NewSubtaskService(pg, tasks, logger)
	goals := services.NewGoalService(pg, logger)
	score := services.NewScoreService(pg, services.DefaultWeights, logger)
	analytics := services.NewAnalyticsService(pg, score, logger)
	auth := services.NewAuthService(pg, logger)

	taskcontroller.TaskController(router, tasks)
	taskcontroller.SubtaskController(router, subtasks)
	goalcontroller.GoalController(router, goals)
	stagingcontroller.StagingController(router, staging)
	analyticscontroller.AnalyticsController(router, analytics, score, tasks)
	authcontroller.RefreshTokenController(router, auth)

	router.Run()
}

func corsConfig() gin.HandlerFunc {
	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		return cors.Default()
	}
	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(origins, ",")
	config.AllowHeaders = append(config.AllowHeaders, "Authorization")
	return cors.New(config)
}
