package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-review-api/internal/domain"
)

// UserService 用户目录：管理端 CRUD + 本人档案
type UserService struct {
	users domain.UserRepository
	tx    domain.Transactor
	log   *zap.Logger
}

func NewUserService(r domain.RepoSet, tx domain.Transactor, l *zap.Logger) *UserService {
	return &UserService{users: r.Users, tx: tx, log: l}
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	return s.users.List(ctx, offset, limit)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type UserCreate struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// Create 管理端建号；role=admin 同步点亮超管位（与 UpdateAsAdmin 同一规则）
func (s *UserService) Create(ctx context.Context, in UserCreate) (*domain.User, error) {
	if in.Username == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", domain.ErrValidation)
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if err := validateRole(in.Role); err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
		Superuser: in.Role == domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UserUpdate nil 字段不改
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// UpdateAsAdmin 角色与超管位只在这条路径上保持同步：
// role=admin → 超管位置 true，其余角色 → 置 false
func (s *UserService) UpdateAsAdmin(ctx context.Context, username string, in UserUpdate) (*domain.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	applyProfile(u, in.Email, in.FirstName, in.LastName, in.Bio)
	if in.Role != nil {
		if err := validateRole(*in.Role); err != nil {
			return nil, err
		}
		u.Role = *in.Role
		u.Superuser = *in.Role == domain.RoleAdmin
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// SelfUpdate 本人可改集合里没有 role，非管理员无从提权
type SelfUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
}

func (s *UserService) UpdateSelf(ctx context.Context, userID uint, in SelfUpdate) (*domain.User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyProfile(u, in.Email, in.FirstName, in.LastName, in.Bio)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete 删号连带清掉本人产出，不留悬空 author_id：
// 本人评价下的楼中评论 → 本人评价 → 本人散落在别人评价下的评论 → 登录码 → 用户
func (s *UserService) Delete(ctx context.Context, username string) error {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(r domain.RepoSet) error {
		reviewIDs, err := r.Reviews.IDsByAuthor(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := r.Comments.DeleteByReviews(ctx, reviewIDs); err != nil {
			return err
		}
		if err := r.Reviews.DeleteByAuthor(ctx, u.ID); err != nil {
			return err
		}
		if err := r.Comments.DeleteByAuthor(ctx, u.ID); err != nil {
			return err
		}
		if err := r.Codes.DeleteByUser(ctx, u.ID); err != nil {
			return err
		}
		return r.Users.Delete(ctx, u.ID)
	})
}

func applyProfile(u *domain.User, email, first, last, bio *string) {
	if email != nil && *email != "" {
		u.Email = *email
	}
	if first != nil {
		u.FirstName = *first
	}
	if last != nil {
		u.LastName = *last
	}
	if bio != nil {
		u.Bio = *bio
	}
}

func validateRole(role string) error {
	switch role {
	case domain.RoleUser, domain.RoleModerator, domain.RoleAdmin:
		return nil
	}
	return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
}
