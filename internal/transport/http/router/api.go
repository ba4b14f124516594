package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-review-api/internal/core/auth"
	"go-review-api/internal/core/server"
	"go-review-api/internal/service"
	mdw "go-review-api/internal/transport/http/middleware"
)

type Deps struct {
	Log     *zap.Logger
	JWT     *auth.JWTer
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Reviews *service.ReviewService
	Users   *service.UserService
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewEngine(d.Log)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 全组可选鉴权：公共读按匿名走，写接口由权限评估器给 401/403
	api := r.Group("/api/v1")
	api.Use(mdw.OptionalAuth(d.JWT))

	reg := NewRegistry()
	reg.Register(
		authModule{d},
		userModule{d},
		catalogModule{d},
		titleModule{d},
		reviewModule{d},
	)
	reg.MountAll(api)

	return r
}

// ---------- 路由层小工具 ----------

type pageQ struct {
	Search string `form:"search"`
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
}

func (q *pageQ) clamp() {
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
