package permission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go-review-api/internal/domain"
)

var (
	anon      = Anonymous()
	plain     = Actor{ID: 1, Role: domain.RoleUser, Authenticated: true}
	moderator = Actor{ID: 2, Role: domain.RoleModerator, Authenticated: true}
	admin     = Actor{ID: 3, Role: domain.RoleAdmin, Authenticated: true}
	super     = Actor{ID: 4, Role: domain.RoleUser, Superuser: true, Authenticated: true}
)

func TestCatalogMatrix(t *testing.T) {
	for _, res := range []Resource{ResCategory, ResGenre, ResTitle} {
		require.NoError(t, Can(anon, ActRead, res, 0))
		require.NoError(t, Can(plain, ActRead, res, 0))

		require.ErrorIs(t, Can(anon, ActCreate, res, 0), domain.ErrUnauthenticated)
		require.ErrorIs(t, Can(plain, ActCreate, res, 0), domain.ErrForbidden)
		require.ErrorIs(t, Can(moderator, ActDelete, res, 0), domain.ErrForbidden)

		require.NoError(t, Can(admin, ActCreate, res, 0))
		require.NoError(t, Can(admin, ActDelete, res, 0))
		// 超管位等价于 admin 角色
		require.NoError(t, Can(super, ActCreate, res, 0))
	}
}

func TestReviewMatrix(t *testing.T) {
	for _, res := range []Resource{ResReview, ResComment} {
		require.NoError(t, Can(anon, ActRead, res, 0))

		require.ErrorIs(t, Can(anon, ActCreate, res, 0), domain.ErrUnauthenticated)
		require.NoError(t, Can(plain, ActCreate, res, 0))

		// 改删：作者本人可以，别人不行，版主和管理员越权放行
		require.NoError(t, Can(plain, ActUpdate, res, plain.ID))
		require.NoError(t, Can(plain, ActDelete, res, plain.ID))
		require.ErrorIs(t, Can(plain, ActUpdate, res, 99), domain.ErrForbidden)
		require.ErrorIs(t, Can(anon, ActDelete, res, 99), domain.ErrUnauthenticated)
		require.NoError(t, Can(moderator, ActUpdate, res, 99))
		require.NoError(t, Can(moderator, ActDelete, res, 99))
		require.NoError(t, Can(admin, ActDelete, res, 99))
		require.NoError(t, Can(super, ActDelete, res, 99))
	}
}

func TestUserMatrix(t *testing.T) {
	require.ErrorIs(t, Can(anon, ActRead, ResUser, 0), domain.ErrUnauthenticated)

	// 管理端目录：只有管理员
	require.ErrorIs(t, Can(plain, ActRead, ResUser, 0), domain.ErrForbidden)
	require.ErrorIs(t, Can(moderator, ActCreate, ResUser, 0), domain.ErrForbidden)
	require.NoError(t, Can(admin, ActRead, ResUser, 0))
	require.NoError(t, Can(admin, ActDelete, ResUser, 0))
	require.NoError(t, Can(super, ActCreate, ResUser, 0))

	// 本人档案：读改放行，删不放行
	require.NoError(t, Can(plain, ActRead, ResUser, plain.ID))
	require.NoError(t, Can(plain, ActUpdate, ResUser, plain.ID))
	require.ErrorIs(t, Can(plain, ActDelete, ResUser, plain.ID), domain.ErrForbidden)
	require.ErrorIs(t, Can(plain, ActRead, ResUser, 99), domain.ErrForbidden)
}

func TestFromUser(t *testing.T) {
	u := &domain.User{ID: 7, Role: domain.RoleModerator}
	a := FromUser(u)
	require.True(t, a.Authenticated)
	require.EqualValues(t, 7, a.ID)
	require.True(t, a.IsModerator())
	require.False(t, a.IsAdmin())

	// 超管位独立于角色
	su := FromUser(&domain.User{ID: 8, Role: domain.RoleUser, Superuser: true})
	require.True(t, su.IsAdmin())
}
