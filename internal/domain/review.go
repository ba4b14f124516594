package domain

import (
	"context"
	"time"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Review 每个 (author, title) 至多一条，联合唯一索引兜底并发窗口
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:5000;not null" json:"text"`
	Score     int       `gorm:"not null" json:"score"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_review_author_title" json:"-"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	TitleID   uint      `gorm:"not null;uniqueIndex:idx_review_author_title" json:"-"`
	CreatedAt time.Time `json:"pub_date"`
}

func (Review) TableName() string { return "reviews" }

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"size:2000;not null" json:"text"`
	AuthorID  uint      `gorm:"not null" json:"-"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ReviewID  uint      `gorm:"not null;index" json:"-"`
	CreatedAt time.Time `json:"pub_date"`
}

func (Comment) TableName() string { return "comments" }

type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id uint) (*Review, error)
	ListByTitle(ctx context.Context, titleID uint, offset, limit int) ([]Review, int64, error)
	ExistsByAuthorAndTitle(ctx context.Context, authorID, titleID uint) (bool, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uint) error
	IDsByTitle(ctx context.Context, titleID uint) ([]uint, error)
	DeleteByTitle(ctx context.Context, titleID uint) error
	IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error)
	DeleteByAuthor(ctx context.Context, authorID uint) error
	// AverageScore 无评价返回 nil，绝不返回 0
	AverageScore(ctx context.Context, titleID uint) (*float64, error)
	AverageScores(ctx context.Context, titleIDs []uint) (map[uint]float64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id uint) (*Comment, error)
	ListByReview(ctx context.Context, reviewID uint, offset, limit int) ([]Comment, int64, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id uint) error
	DeleteByReviews(ctx context.Context, reviewIDs []uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
}
