package handler

import (
	"net/http"

	"github.com/brighthive/brighthive-testing-exercise/internal/middleware"
	"github.com/brighthive/brighthive-testing-exercise/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the current authenticated user (requires AuthMiddleware).
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.ReasonUnauthenticated, "not logged in")
		return
	}

	util.Success(c, util.Response{"user": userPayload(user)})
}
