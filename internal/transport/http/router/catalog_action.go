package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-review-api/internal/domain"
	"go-review-api/internal/permission"
	"go-review-api/internal/service"
	httpez "go-review-api/internal/transport/http/ez"
	mdw "go-review-api/internal/transport/http/middleware"
	resp "go-review-api/internal/transport/http/response"
)

// catalogModule 分类与流派：公共读，管理员写，按 slug 删除
type catalogModule struct{ d Deps }

func (m catalogModule) MountAPI(api *gin.RouterGroup) {
	mountSlugged(api, "/categories", permission.ResCategory, sluggedOps[domain.Category]{
		list:   m.d.Catalog.ListCategories,
		create: m.d.Catalog.CreateCategory,
		del:    m.d.Catalog.DeleteCategory,
	})
	mountSlugged(api, "/genres", permission.ResGenre, sluggedOps[domain.Genre]{
		list:   m.d.Catalog.ListGenres,
		create: m.d.Catalog.CreateGenre,
		del:    m.d.Catalog.DeleteGenre,
	})
}

type sluggedOps[T any] struct {
	list   func(ctx context.Context, search string, offset, limit int) ([]T, int64, error)
	create func(ctx context.Context, in service.SluggedInput) (*T, error)
	del    func(ctx context.Context, slug string) error
}

func mountSlugged[T any](api *gin.RouterGroup, path string, res permission.Resource, ops sluggedOps[T]) {
	ez := httpez.New(api)

	httpez.RegisterAction[pageQ, resp.Paged](ez, httpez.Action[pageQ, resp.Paged]{
		Method: http.MethodGet,
		Path:   path,
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, q *pageQ) (resp.Paged, error) {
			q.clamp()
			items, total, err := ops.list(c.Request.Context(), q.Search, q.Offset, q.Limit)
			if err != nil {
				return resp.Paged{}, err
			}
			return resp.Paged{Total: total, Items: items}, nil
		},
	})

	type createIn struct {
		Name string `json:"name" binding:"required,max=200"`
		Slug string `json:"slug" binding:"omitempty,max=100"`
	}
	httpez.RegisterAction[createIn, *T](ez, httpez.Action[createIn, *T]{
		Method: http.MethodPost,
		Path:   path,
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (*T, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActCreate, res, 0); err != nil {
				return nil, err
			}
			return ops.create(c.Request.Context(), service.SluggedInput{Name: in.Name, Slug: in.Slug})
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   path + "/:slug",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActDelete, res, 0); err != nil {
				return nil, err
			}
			slug := c.Param("slug")
			if err := ops.del(c.Request.Context(), slug); err != nil {
				return nil, err
			}
			return gin.H{"slug": slug}, nil
		},
	})
}
