package permission

import "go-review-api/internal/domain"

type Action string

const (
	ActRead   Action = "read"
	ActCreate Action = "create"
	ActUpdate Action = "update"
	ActDelete Action = "delete"
)

type Resource string

const (
	ResCategory Resource = "category"
	ResGenre    Resource = "genre"
	ResTitle    Resource = "title"
	ResReview   Resource = "review"
	ResComment  Resource = "comment"
	ResUser     Resource = "user"
)

// Actor 请求身份；匿名请求 Authenticated=false 且其余字段为零值
type Actor struct {
	ID            uint
	Role          string
	Superuser     bool
	Authenticated bool
}

func Anonymous() Actor { return Actor{} }

func FromUser(u *domain.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Superuser: u.Superuser, Authenticated: true}
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Superuser || a.Role == domain.RoleAdmin)
}

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == domain.RoleModerator
}

// Can 纯函数决策：(actor, action, resource, ownerID) → nil / ErrUnauthenticated / ErrForbidden。
// ownerID 为资源作者（或目标用户）的 ID，无归属概念时传 0。
func Can(a Actor, act Action, res Resource, ownerID uint) error {
	switch res {
	case ResCategory, ResGenre, ResTitle:
		if act == ActRead {
			return nil
		}
		if !a.Authenticated {
			return domain.ErrUnauthenticated
		}
		if a.IsAdmin() {
			return nil
		}
		return domain.ErrForbidden

	case ResReview, ResComment:
		switch act {
		case ActRead:
			return nil
		case ActCreate:
			if !a.Authenticated {
				return domain.ErrUnauthenticated
			}
			return nil
		default: // update / delete：作者本人、版主或管理员
			if !a.Authenticated {
				return domain.ErrUnauthenticated
			}
			if a.ID == ownerID || a.IsModerator() || a.IsAdmin() {
				return nil
			}
			return domain.ErrForbidden
		}

	case ResUser:
		if !a.Authenticated {
			return domain.ErrUnauthenticated
		}
		if a.IsAdmin() {
			return nil
		}
		// 自己的档案只放行读和改，角色提升在 service 层单独拦
		if ownerID != 0 && ownerID == a.ID && (act == ActRead || act == ActUpdate) {
			return nil
		}
		return domain.ErrForbidden
	}
	return domain.ErrForbidden
}
