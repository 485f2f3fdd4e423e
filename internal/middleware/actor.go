package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ElCzar/secchub-backend-sub001/internal/models"
	appErrors "github.com/ElCzar/secchub-backend-sub001/pkg/errors"
	"github.com/ElCzar/secchub-backend-sub001/pkg/response"
)

// ContextActorKey is the gin context key storing the resolved planning actor.
const ContextActorKey = "planningActor"

type actorResolver interface {
	Resolve(ctx context.Context, claims *models.JWTClaims) (models.Actor, error)
}

// ResolveActor maps the authenticated claims to a planning actor. Must run after JWT.
func ResolveActor(resolver actorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		actor, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// ActorFromContext returns the actor stored by ResolveActor.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}
