package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-review-api/internal/core/auth"
	"go-review-api/internal/domain"
	"go-review-api/internal/notify"
	"go-review-api/pkg/utils"
)

// AuthService 邮箱免密登录：下发确认码 → 兑换 JWT
type AuthService struct {
	users domain.UserRepository
	tx    domain.Transactor
	jwt   *auth.JWTer
	mail  notify.Sender
	log   *zap.Logger
}

func NewAuthService(r domain.RepoSet, tx domain.Transactor, jwt *auth.JWTer, mail notify.Sender, l *zap.Logger) *AuthService {
	return &AuthService{users: r.Users, tx: tx, jwt: jwt, mail: mail, log: l}
}

// RequestCode 查不到就自动注册，随后旋转该用户的确认码。
// 旋转（删旧+插新）在同一事务内完成，user_id 唯一索引兜底并发双发。
// 邮件投递尽力而为：失败只记日志，请求照样成功。
func (s *AuthService) RequestCode(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.ErrValidation
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		u = &domain.User{
			Username: utils.UsernameFromEmail(email),
			Email:    email,
			Role:     domain.RoleUser,
		}
		if err := s.users.Create(ctx, u); err != nil {
			// 并发兜底：唯一冲突 → 再查一次
			if !errors.Is(err, domain.ErrConflict) {
				return "", err
			}
			if u, err = s.users.FindByEmail(ctx, email); err != nil {
				return "", err
			}
			if u == nil {
				return "", domain.ErrUnavailable
			}
		}
	}

	code := uuid.NewString()
	err = s.tx.InTx(ctx, func(r domain.RepoSet) error {
		if err := r.Codes.Replace(ctx, u.ID, utils.HashCode(code)); err != nil {
			return err
		}
		// 超管位在线但角色不是 admin → 补齐角色
		if u.Superuser && u.Role != domain.RoleAdmin {
			u.Role = domain.RoleAdmin
			return r.Users.Update(ctx, u)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := s.mail.SendCode(ctx, notify.CodeMail{
		Email:       email,
		Code:        code,
		RequestedAt: time.Now(),
	}); err != nil {
		s.log.Warn("confirmation mail enqueue failed",
			zap.String("email", email), zap.Error(err))
	}
	return email, nil
}

// RedeemCode 校验确认码并签发 JWT。码一次有效，兑换成功即作废。
// 码不匹配和码不存在统一报未认证，不向探测方泄露差异。
func (s *AuthService) RedeemCode(ctx context.Context, email, code string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", domain.ErrNotFound
	}

	// 校验与作废在同一事务里，Consume 看命中行数，并发兑换只放行一个
	err = s.tx.InTx(ctx, func(r domain.RepoSet) error {
		cc, err := r.Codes.FindByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if cc == nil || !utils.CheckCode(code, cc.CodeHash) {
			return domain.ErrUnauthenticated
		}
		ok, err := r.Codes.Consume(ctx, cc.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return s.jwt.Issue(u.ID, u.Role, u.Superuser)
}
