package staging

import (
	"net/http"

	"quadrantplanner/apperror"
	"quadrantplanner/middleware"
	"quadrantplanner/services"

	"github.com/gin-gonic/gin"
)

func StagingController(router *gin.Engine, stagingService *services.StagingService) {
	auth := middleware.AccessTokenMiddleware()

	router.GET("/staging", auth, func(c *gin.Context) {
		GetStagingZone(c, stagingService)
	})
}

// GetStagingZone returns the staged tasks with capacity status,
// processing reminders and suggestions.
func GetStagingZone(c *gin.Context, stagingService *services.StagingService) {
	userId := c.MustGet("userId").(string)

	zone, err := stagingService.Zone(c.Request.Context(), userId)
	if err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}
