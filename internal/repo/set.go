package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"go-review-api/internal/domain"
)

// NewSet 基于同一个 *gorm.DB 构建全部仓储
func NewSet(db *gorm.DB) domain.RepoSet {
	return domain.RepoSet{
		Users:      NewUserRepo(db),
		Codes:      NewCodeRepo(db),
		Categories: NewCategoryRepo(db),
		Genres:     NewGenreRepo(db),
		Titles:     NewTitleRepo(db),
		Reviews:    NewReviewRepo(db),
		Comments:   NewCommentRepo(db),
	}
}

type GormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) *GormTransactor { return &GormTransactor{db: db} }

func (t *GormTransactor) InTx(ctx context.Context, fn func(domain.RepoSet) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewSet(tx))
	})
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免版本差异导致“undefined”
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}

// translate 唯一冲突统一映射为 domain.ErrConflict
func translate(err error) error {
	if err == nil {
		return nil
	}
	if isDupKey(err) {
		return domain.ErrConflict
	}
	return err
}
