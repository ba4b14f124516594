package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-review-api/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return translate(r.db.WithContext(ctx).Create(rv).Error)
}

func (r *ReviewRepo) FindByID(ctx context.Context, id uint) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Preload("Author").First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rv, err
}

func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID uint, offset, limit int) ([]domain.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{}).Where("title_id = ?", titleID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var reviews []domain.Review
	if err := q.Preload("Author").Order("score desc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepo) ExistsByAuthorAndTitle(ctx context.Context, authorID, titleID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepo) Update(ctx context.Context, rv *domain.Review) error {
	return translate(r.db.WithContext(ctx).Omit("Author").Save(rv).Error)
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{}).Error
}

func (r *ReviewRepo) IDsByTitle(ctx context.Context, titleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("title_id = ?", titleID).Pluck("id", &ids).Error
	return ids, err
}

func (r *ReviewRepo) DeleteByTitle(ctx context.Context, titleID uint) error {
	return r.db.WithContext(ctx).Where("title_id = ?", titleID).Delete(&domain.Review{}).Error
}

func (r *ReviewRepo) IDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, err
}

func (r *ReviewRepo) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&domain.Review{}).Error
}

// AverageScore SQL AVG 对空集天然返回 NULL，扫进 *float64 保留该语义
func (r *ReviewRepo) AverageScore(ctx context.Context, titleID uint) (*float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("title_id = ?", titleID).
		Select("AVG(score)").Scan(&avg).Error
	return avg, err
}

func (r *ReviewRepo) AverageScores(ctx context.Context, titleIDs []uint) (map[uint]float64, error) {
	if len(titleIDs) == 0 {
		return map[uint]float64{}, nil
	}
	type row struct {
		TitleID uint
		Avg     float64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("title_id IN ?", titleIDs).
		Select("title_id, AVG(score) AS avg").
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]float64, len(rows))
	for _, r := range rows {
		out[r.TitleID] = r.Avg
	}
	return out, nil
}

type CommentRepo struct{ db *gorm.DB }

func NewCommentRepo(db *gorm.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CommentRepo) FindByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).Preload("Author").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CommentRepo) ListByReview(ctx context.Context, reviewID uint, offset, limit int) ([]domain.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("review_id = ?", reviewID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var comments []domain.Comment
	if err := q.Preload("Author").Order("created_at desc").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *CommentRepo) Update(ctx context.Context, c *domain.Comment) error {
	return translate(r.db.WithContext(ctx).Omit("Author").Save(c).Error)
}

func (r *CommentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{}).Error
}

func (r *CommentRepo) DeleteByReviews(ctx context.Context, reviewIDs []uint) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("review_id IN ?", reviewIDs).Delete(&domain.Comment{}).Error
}

func (r *CommentRepo) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&domain.Comment{}).Error
}
