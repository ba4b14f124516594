package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-review-api/internal/domain"
	"go-review-api/internal/permission"
	"go-review-api/internal/service"
	httpez "go-review-api/internal/transport/http/ez"
	mdw "go-review-api/internal/transport/http/middleware"
	resp "go-review-api/internal/transport/http/response"
)

// userModule /users 管理端按用户名寻址，/users/me 本人档案。
// 管理端一律过权限评估器（admin 或超管位）；本人路径不暴露 role 字段。
type userModule struct{ d Deps }

func (userModule) Priority() int { return 20 }

func (m userModule) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	// ---------- 本人档案 ----------

	httpez.RegisterAction[struct{}, *domain.User](ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			actor := mdw.ActorFrom(c)
			if err := permission.Can(actor, permission.ActRead, permission.ResUser, actor.ID); err != nil {
				return nil, err
			}
			return m.d.Users.GetByID(c.Request.Context(), actor.ID)
		},
	})

	// role 字段不在绑定集合里，提交了也只会被丢弃
	type selfPatch struct {
		Email     *string `json:"email" binding:"omitempty,email"`
		FirstName *string `json:"first_name" binding:"omitempty,max=150"`
		LastName  *string `json:"last_name" binding:"omitempty,max=150"`
		Bio       *string `json:"bio" binding:"omitempty,max=200"`
	}
	httpez.RegisterAction[selfPatch, *domain.User](ez, httpez.Action[selfPatch, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/me",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *selfPatch) (*domain.User, error) {
			actor := mdw.ActorFrom(c)
			if err := permission.Can(actor, permission.ActUpdate, permission.ResUser, actor.ID); err != nil {
				return nil, err
			}
			return m.d.Users.UpdateSelf(c.Request.Context(), actor.ID, service.SelfUpdate{
				Email:     in.Email,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Bio:       in.Bio,
			})
		},
	})

	// ---------- 管理端 ----------

	type listQ struct {
		Offset int `form:"offset,default=0"`
		Limit  int `form:"limit,default=20"`
	}
	httpez.RegisterAction[listQ, resp.Paged](ez, httpez.Action[listQ, resp.Paged]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, q *listQ) (resp.Paged, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActRead, permission.ResUser, 0); err != nil {
				return resp.Paged{}, err
			}
			p := pageQ{Offset: q.Offset, Limit: q.Limit}
			p.clamp()
			items, total, err := m.d.Users.List(c.Request.Context(), p.Offset, p.Limit)
			if err != nil {
				return resp.Paged{}, err
			}
			return resp.Paged{Total: total, Items: items}, nil
		},
	})

	type createIn struct {
		Username  string `json:"username" binding:"required,max=150"`
		Email     string `json:"email" binding:"required,email"`
		FirstName string `json:"first_name" binding:"omitempty,max=150"`
		LastName  string `json:"last_name" binding:"omitempty,max=150"`
		Bio       string `json:"bio" binding:"omitempty,max=200"`
		Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
	}
	httpez.RegisterAction[createIn, *domain.User](ez, httpez.Action[createIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (*domain.User, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActCreate, permission.ResUser, 0); err != nil {
				return nil, err
			}
			return m.d.Users.Create(c.Request.Context(), service.UserCreate{
				Username:  in.Username,
				Email:     in.Email,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Bio:       in.Bio,
				Role:      in.Role,
			})
		},
	})

	httpez.RegisterAction[struct{}, *domain.User](ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:username",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActRead, permission.ResUser, 0); err != nil {
				return nil, err
			}
			return m.d.Users.GetByUsername(c.Request.Context(), c.Param("username"))
		},
	})

	type adminPatch struct {
		Email     *string `json:"email" binding:"omitempty,email"`
		FirstName *string `json:"first_name" binding:"omitempty,max=150"`
		LastName  *string `json:"last_name" binding:"omitempty,max=150"`
		Bio       *string `json:"bio" binding:"omitempty,max=200"`
		Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
	}
	httpez.RegisterAction[adminPatch, *domain.User](ez, httpez.Action[adminPatch, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/:username",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *adminPatch) (*domain.User, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActUpdate, permission.ResUser, 0); err != nil {
				return nil, err
			}
			return m.d.Users.UpdateAsAdmin(c.Request.Context(), c.Param("username"), service.UserUpdate{
				Email:     in.Email,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Bio:       in.Bio,
				Role:      in.Role,
			})
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:username",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActDelete, permission.ResUser, 0); err != nil {
				return nil, err
			}
			username := c.Param("username")
			if err := m.d.Users.Delete(c.Request.Context(), username); err != nil {
				return nil, err
			}
			return gin.H{"username": username}, nil
		},
	})
}
