package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/middleware"
	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

// actorFromContext writes 401 and returns false when no actor was resolved.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return actor, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
