package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-review-api/internal/core/auth"
	"go-review-api/internal/permission"
	resp "go-review-api/internal/transport/http/response"
)

const keyActor = "actor"

func actorFromClaims(c *auth.Claims) permission.Actor {
	return permission.Actor{
		ID:            c.UID,
		Role:          c.Role,
		Superuser:     c.Superuser,
		Authenticated: true,
	}
}

// RequireAuth 必须带合法 Bearer token，否则 401
func RequireAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set(keyActor, actorFromClaims(claims))
		c.Next()
	}
}

// OptionalAuth 公共读接口：没带 token 按匿名放行，带了坏 token 仍然 401
func OptionalAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "malformed authorization header"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set(keyActor, actorFromClaims(claims))
		c.Next()
	}
}

// ActorFrom 取请求身份；没有则匿名
func ActorFrom(c *gin.Context) permission.Actor {
	if v, ok := c.Get(keyActor); ok {
		if a, ok := v.(permission.Actor); ok {
			return a
		}
	}
	return permission.Anonymous()
}
