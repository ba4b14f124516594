package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpez "go-review-api/internal/transport/http/ez"
	mdw "go-review-api/internal/transport/http/middleware"
)

// authModule 免密登录：POST /auth/email 发码，POST /auth/token 兑 JWT
type authModule struct{ d Deps }

func (authModule) Priority() int { return 10 }

func (m authModule) MountAPI(api *gin.RouterGroup) {
	// 单独压一层每 IP 限速，防止拿邮箱刷码
	grp := api.Group("/auth", mdw.RateLimitPerIP(5, 10))
	ez := httpez.New(grp)

	type emailIn struct {
		Email string `json:"email" binding:"required,email"`
	}
	type emailOut struct {
		Email string `json:"email"`
	}
	httpez.RegisterAction[emailIn, emailOut](ez, httpez.Action[emailIn, emailOut]{
		Method: http.MethodPost,
		Path:   "/email",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *emailIn) (emailOut, error) {
			email, err := m.d.Auth.RequestCode(c.Request.Context(), in.Email)
			if err != nil {
				return emailOut{}, err
			}
			return emailOut{Email: email}, nil
		},
	})

	type tokenIn struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"confirmation_code" binding:"required"`
	}
	type tokenOut struct {
		Token string `json:"token"`
	}
	httpez.RegisterAction[tokenIn, tokenOut](ez, httpez.Action[tokenIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/token",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *tokenIn) (tokenOut, error) {
			token, err := m.d.Auth.RedeemCode(c.Request.Context(), in.Email, in.Code)
			if err != nil {
				return tokenOut{}, err
			}
			return tokenOut{Token: token}, nil
		},
	})
}
