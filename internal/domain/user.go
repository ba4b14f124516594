package domain

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	Bio       string    `gorm:"size:200" json:"bio"`
	Role      string    `gorm:"size:16;not null;default:user" json:"role"` // user/moderator/admin
	Superuser bool      `gorm:"not null;default:false" json:"-"`           // 独立于 role 的超管位
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// IsAdmin 超管位或 admin 角色任一即视为管理员
func (u *User) IsAdmin() bool     { return u.Superuser || u.Role == RoleAdmin }
func (u *User) IsModerator() bool { return u.Role == RoleModerator }
func (u *User) IsUser() bool      { return u.Role == RoleUser }

// ConfirmationCode 一次性登录码，每用户最多一条（uniqueIndex 兜底）
type ConfirmationCode struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CodeHash  string    `gorm:"size:100;not null"`
	CreatedAt time.Time
}

func (ConfirmationCode) TableName() string { return "confirmation_codes" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
}

type CodeRepository interface {
	FindByUser(ctx context.Context, userID uint) (*ConfirmationCode, error)
	// Replace 先删后插，必须在同一事务内执行
	Replace(ctx context.Context, userID uint, codeHash string) error
	DeleteByUser(ctx context.Context, userID uint) error
	// Consume 按行删指定码并返回是否真的删到，并发兑换只有一个赢家
	Consume(ctx context.Context, id uint) (bool, error)
}
