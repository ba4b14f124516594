package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-review-api/internal/domain"
	"go-review-api/internal/permission"
	httpez "go-review-api/internal/transport/http/ez"
	mdw "go-review-api/internal/transport/http/middleware"
	resp "go-review-api/internal/transport/http/response"
)

// reviewModule 评价与楼中评论，嵌套在 /titles 下。
// 读公共；写需登录；改/删限作者本人、版主或管理员。
type reviewModule struct{ d Deps }

func (m reviewModule) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	const reviewsPath = "/titles/:title_id/reviews"
	const reviewPath = reviewsPath + "/:review_id"
	const commentsPath = reviewPath + "/comments"
	const commentPath = commentsPath + "/:comment_id"

	// ---------- 评价 ----------

	httpez.RegisterAction[pageQ, resp.Paged](ez, httpez.Action[pageQ, resp.Paged]{
		Method: http.MethodGet,
		Path:   reviewsPath,
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, q *pageQ) (resp.Paged, error) {
			titleID, ok := uintParam(c, "title_id")
			if !ok {
				return resp.Paged{}, httpez.NotFound("title not found")
			}
			q.clamp()
			items, total, err := m.d.Reviews.ListReviews(c.Request.Context(), titleID, q.Offset, q.Limit)
			if err != nil {
				return resp.Paged{}, err
			}
			return resp.Paged{Total: total, Items: items}, nil
		},
	})

	type reviewIn struct {
		Text  string `json:"text" binding:"required"`
		Score int    `json:"score" binding:"required"`
	}
	httpez.RegisterAction[reviewIn, *domain.Review](ez, httpez.Action[reviewIn, *domain.Review]{
		Method: http.MethodPost,
		Path:   reviewsPath,
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *reviewIn) (*domain.Review, error) {
			actor := mdw.ActorFrom(c)
			if err := permission.Can(actor, permission.ActCreate, permission.ResReview, 0); err != nil {
				return nil, err
			}
			titleID, ok := uintParam(c, "title_id")
			if !ok {
				return nil, httpez.NotFound("title not found")
			}
			return m.d.Reviews.CreateReview(c.Request.Context(), actor.ID, titleID, in.Text, in.Score)
		},
	})

	httpez.RegisterAction[struct{}, *domain.Review](ez, httpez.Action[struct{}, *domain.Review]{
		Method: http.MethodGet,
		Path:   reviewPath,
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Review, error) {
			titleID, reviewID, ok := reviewParams(c)
			if !ok {
				return nil, httpez.NotFound("review not found")
			}
			return m.d.Reviews.GetReview(c.Request.Context(), titleID, reviewID)
		},
	})

	type reviewPatch struct {
		Text  *string `json:"text"`
		Score *int    `json:"score"`
	}
	httpez.RegisterAction[reviewPatch, *domain.Review](ez, httpez.Action[reviewPatch, *domain.Review]{
		Method: http.MethodPatch,
		Path:   reviewPath,
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *reviewPatch) (*domain.Review, error) {
			titleID, reviewID, ok := reviewParams(c)
			if !ok {
				return nil, httpez.NotFound("review not found")
			}
			rv, err := m.d.Reviews.GetReview(c.Request.Context(), titleID, reviewID)
			if err != nil {
				return nil, err
			}
			if err := permission.Can(mdw.ActorFrom(c), permission.ActUpdate, permission.ResReview, rv.AuthorID); err != nil {
				return nil, err
			}
			return m.d.Reviews.UpdateReview(c.Request.Context(), titleID, reviewID, in.Text, in.Score)
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   reviewPath,
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			titleID, reviewID, ok := reviewParams(c)
			if !ok {
				return nil, httpez.NotFound("review not found")
			}
			rv, err := m.d.Reviews.GetReview(c.Request.Context(), titleID, reviewID)
			if err != nil {
				return nil, err
			}
			if err := permission.Can(mdw.ActorFrom(c), permission.ActDelete, permission.ResReview, rv.AuthorID); err != nil {
				return nil, err
			}
			if err := m.d.Reviews.DeleteReview(c.Request.Context(), titleID, reviewID); err != nil {
				return nil, err
			}
			return gin.H{"id": reviewID}, nil
		},
	})

	// ---------- 评论 ----------

	httpez.RegisterAction[pageQ, resp.Paged](ez, httpez.Action[pageQ, resp.Paged]{
		Method: http.MethodGet,
		Path:   commentsPath,
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, q *pageQ) (resp.Paged, error) {
			titleID, reviewID, ok := reviewParams(c)
			if !ok {
				return resp.Paged{}, httpez.NotFound("review not found")
			}
			q.clamp()
			items, total, err := m.d.Reviews.ListComments(c.Request.Context(), titleID, reviewID, q.Offset, q.Limit)
			if err != nil {
				return resp.Paged{}, err
			}
			return resp.Paged{Total: total, Items: items}, nil
		},
	})

	type commentIn struct {
		Text string `json:"text" binding:"required"`
	}
	httpez.RegisterAction[commentIn, *domain.Comment](ez, httpez.Action[commentIn, *domain.Comment]{
		Method: http.MethodPost,
		Path:   commentsPath,
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *commentIn) (*domain.Comment, error) {
			actor := mdw.ActorFrom(c)
			if err := permission.Can(actor, permission.ActCreate, permission.ResComment, 0); err != nil {
				return nil, err
			}
			titleID, reviewID, ok := reviewParams(c)
			if !ok {
				return nil, httpez.NotFound("review not found")
			}
			return m.d.Reviews.CreateComment(c.Request.Context(), actor.ID, titleID, reviewID, in.Text)
		},
	})

	httpez.RegisterAction[struct{}, *domain.Comment](ez, httpez.Action[struct{}, *domain.Comment]{
		Method: http.MethodGet,
		Path:   commentPath,
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Comment, error) {
			titleID, reviewID, commentID, ok := commentParams(c)
			if !ok {
				return nil, httpez.NotFound("comment not found")
			}
			return m.d.Reviews.GetComment(c.Request.Context(), titleID, reviewID, commentID)
		},
	})

	httpez.RegisterAction[commentIn, *domain.Comment](ez, httpez.Action[commentIn, *domain.Comment]{
		Method: http.MethodPatch,
		Path:   commentPath,
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *commentIn) (*domain.Comment, error) {
			titleID, reviewID, commentID, ok := commentParams(c)
			if !ok {
				return nil, httpez.NotFound("comment not found")
			}
			cm, err := m.d.Reviews.GetComment(c.Request.Context(), titleID, reviewID, commentID)
			if err != nil {
				return nil, err
			}
			if err := permission.Can(mdw.ActorFrom(c), permission.ActUpdate, permission.ResComment, cm.AuthorID); err != nil {
				return nil, err
			}
			return m.d.Reviews.UpdateComment(c.Request.Context(), titleID, reviewID, commentID, in.Text)
		},
	})

	httpez.RegisterAction[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   commentPath,
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			titleID, reviewID, commentID, ok := commentParams(c)
			if !ok {
				return nil, httpez.NotFound("comment not found")
			}
			cm, err := m.d.Reviews.GetComment(c.Request.Context(), titleID, reviewID, commentID)
			if err != nil {
				return nil, err
			}
			if err := permission.Can(mdw.ActorFrom(c), permission.ActDelete, permission.ResComment, cm.AuthorID); err != nil {
				return nil, err
			}
			if err := m.d.Reviews.DeleteComment(c.Request.Context(), titleID, reviewID, commentID); err != nil {
				return nil, err
			}
			return gin.H{"id": commentID}, nil
		},
	})
}

func reviewParams(c *gin.Context) (titleID, reviewID uint, ok bool) {
	titleID, ok = uintParam(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = uintParam(c, "review_id")
	return titleID, reviewID, ok
}

func commentParams(c *gin.Context) (titleID, reviewID, commentID uint, ok bool) {
	titleID, reviewID, ok = reviewParams(c)
	if !ok {
		return 0, 0, 0, false
	}
	commentID, ok = uintParam(c, "comment_id")
	return titleID, reviewID, commentID, ok
}
