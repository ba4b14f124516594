package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-review-api/internal/domain"
)

type CodeRepo struct{ db *gorm.DB }

func NewCodeRepo(db *gorm.DB) *CodeRepo { return &CodeRepo{db: db} }

func (r *CodeRepo) FindByUser(ctx context.Context, userID uint) (*domain.ConfirmationCode, error) {
	var cc domain.ConfirmationCode
	err := r.db.WithContext(ctx).First(&cc, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &cc, err
}

// Replace 旋转登录码：同一事务内先删旧码再插新码，
// user_id 唯一索引兜底并发下的双写
func (r *CodeRepo) Replace(ctx context.Context, userID uint, codeHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.ConfirmationCode{}).Error; err != nil {
			return err
		}
		return translate(tx.Create(&domain.ConfirmationCode{UserID: userID, CodeHash: codeHash}).Error)
	})
}

func (r *CodeRepo) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.ConfirmationCode{}).Error
}

func (r *CodeRepo) Consume(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ConfirmationCode{})
	return res.RowsAffected > 0, res.Error
}
