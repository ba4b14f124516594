package ez

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-review-api/internal/domain"
)

func newTestEngine(handlerErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	e := New(r.Group("/"))
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: "GET", Path: "/probe", Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if handlerErr != nil {
				return nil, handlerErr
			}
			return gin.H{"ok": true}, nil
		},
	})
	return r
}

func probe(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	return w
}

func TestActionSuccessEnvelope(t *testing.T) {
	w := probe(newTestEngine(nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"code":0`)
}

func TestDomainErrorsMapToStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		w := probe(newTestEngine(tc.err))
		require.Equal(t, tc.want, w.Code, "error %v", tc.err)
	}

	// 包装过的哨兵错误同样命中映射
	wrapped := fmt.Errorf("%w: score out of range", domain.ErrValidation)
	require.Equal(t, http.StatusBadRequest, probe(newTestEngine(wrapped)).Code)
}

func TestUnknownErrorIsMaskedAs500(t *testing.T) {
	w := probe(newTestEngine(errors.New("pq: connection reset")))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "internal error")
	require.False(t, strings.Contains(body, "connection reset"))
}

func TestAErrKeepsItsCode(t *testing.T) {
	w := probe(newTestEngine(Conflict("one review per title per author")))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "one review per title per author")
}
