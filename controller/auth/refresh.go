package auth

import (
	"net/http"
	"time"

	"quadrantplanner/apperror"
	"quadrantplanner/middleware"
	"quadrantplanner/services"

	"github.com/gin-gonic/gin"
)

func RefreshTokenController(router *gin.Engine, authService *services.AuthService) {
	refresh := middleware.RefreshTokenMiddleware()

	router.POST("/auth/refresh", refresh, func(c *gin.Context) {
		RefreshToken(c, authService)
	})
	router.POST("/auth/logout", refresh, func(c *gin.Context) {
		Logout(c, authService)
	})
}

// RefreshToken rotates the token pair for the user identified by a
// valid refresh token. The presented token is checked against the
// stored hash, so a superseded token is refused.
func RefreshToken(c *gin.Context, authService *services.AuthService) {
	userId := c.MustGet("userId").(string)
	presented := c.MustGet("refreshToken").(string)

	accessToken, refreshToken, err := authService.Refresh(c.Request.Context(), userId, presented)
	if err != nil {
		apperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"token": gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
			"expiresIn":    int64(services.AccessTokenTTL / time.Second),
		},
	})
}

func Logout(c *gin.Context, authService *services.AuthService) {
	userId := c.MustGet("userId").(string)

	if err := authService.Revoke(c.Request.Context(), userId); err != nil {
		apperror.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
