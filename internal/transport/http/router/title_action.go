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

// titleModule 作品 CRUD；列表/详情带派生评分
type titleModule struct{ d Deps }

type titleIn struct {
	Name        *string   `json:"name" binding:"omitempty,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=1000"`
	Year        *int      `json:"year"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

func (in *titleIn) toInput() service.TitleInput {
	return service.TitleInput{
		Name:        in.Name,
		Description: in.Description,
		Year:        in.Year,
		Category:    in.Category,
		Genres:      in.Genre,
	}
}

func (m titleModule) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	type listQ struct {
		Category string `form:"category"`
		Genre    string `form:"genre"`
		Name     string `form:"name"`
		Year     *int   `form:"year"`
		Offset   int    `form:"offset,default=0"`
		Limit    int    `form:"limit,default=20"`
	}
	httpez.RegisterAction[listQ, resp.Paged](ez, httpez.Action[listQ, resp.Paged]{
		Method: http.MethodGet,
		Path:   "/titles",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, q *listQ) (resp.Paged, error) {
			p := pageQ{Offset: q.Offset, Limit: q.Limit}
			p.clamp()
			f := domain.TitleFilter{Category: q.Category, Genre: q.Genre, Name: q.Name, Year: q.Year}
			items, total, err := m.d.Catalog.ListTitles(c.Request.Context(), f, p.Offset, p.Limit)
			if err != nil {
				return resp.Paged{}, err
			}
			return resp.Paged{Total: total, Items: items}, nil
		},
	})

	httpez.RegisterAction[titleIn, *domain.Title](ez, httpez.Action[titleIn, *domain.Title]{
		Method: http.MethodPost,
		Path:   "/titles",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *titleIn) (*domain.Title, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActCreate, permission.ResTitle, 0); err != nil {
				return nil, err
			}
			return m.d.Catalog.CreateTitle(c.Request.Context(), in.toInput())
		},
	})

	httpez.RegisterAction[struct{}, *domain.Title](ez, httpez.Action[struct{}, *domain.Title]{
		Method: http.MethodGet,
		Path:   "/titles/:title_id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Title, error) {
			id, ok := uintParam(c, "title_id")
			if !ok {
				return nil, httpez.NotFound("title not found")
			}
			return m.d.Catalog.GetTitle(c.Request.Context(), id)
		},
	})

	httpez.RegisterAction[titleIn, *domain.Title](ez, httpez.Action[titleIn, *domain.Title]{
		Method: http.MethodPatch,
		Path:   "/titles/:title_id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *titleIn) (*domain.Title, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActUpdate, permission.ResTitle, 0); err != nil {
				return nil, err
			}
			id, ok := uintParam(c, "title_id")
			if !ok {
				return nil, httpez.NotFound("title not found")
			}
			return m.d.Catalog.UpdateTitle(c.Request.Context(), id, in.toInput())
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/titles/:title_id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := permission.Can(mdw.ActorFrom(c), permission.ActDelete, permission.ResTitle, 0); err != nil {
				return nil, err
			}
			id, ok := uintParam(c, "title_id")
			if !ok {
				return nil, httpez.NotFound("title not found")
			}
			if err := m.d.Catalog.DeleteTitle(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
