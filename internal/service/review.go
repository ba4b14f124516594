package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-review-api/internal/core/cache"
	"go-review-api/internal/domain"
)

// ReviewService 作品评价与楼中评论
type ReviewService struct {
	titles   domain.TitleRepository
	reviews  domain.ReviewRepository
	comments domain.CommentRepository
	tx       domain.Transactor
	cache    *cache.Cache
	log      *zap.Logger
}

func NewReviewService(r domain.RepoSet, tx domain.Transactor, c *cache.Cache, l *zap.Logger) *ReviewService {
	return &ReviewService{
		titles:   r.Titles,
		reviews:  r.Reviews,
		comments: r.Comments,
		tx:       tx,
		cache:    c,
		log:      l,
	}
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID uint, offset, limit int) ([]domain.Review, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	return s.reviews.ListByTitle(ctx, titleID, offset, limit)
}

// CreateReview 一人一作品一评价：先查重（快路径），联合唯一索引兜底并发窗口
func (s *ReviewService) CreateReview(ctx context.Context, authorID, titleID uint, text string, score int) (*domain.Review, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if score < domain.MinScore || score > domain.MaxScore {
		return nil, fmt.Errorf("%w: score must be between %d and %d",
			domain.ErrValidation, domain.MinScore, domain.MaxScore)
	}
	exists, err := s.reviews.ExistsByAuthorAndTitle(ctx, authorID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: one review per title per author", domain.ErrConflict)
	}
	rv := &domain.Review{Text: text, Score: score, AuthorID: authorID, TitleID: titleID}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}
	s.invalidateRating(ctx, titleID)
	return s.reviews.FindByID(ctx, rv.ID)
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID uint) (*domain.Review, error) {
	rv, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rv == nil || rv.TitleID != titleID {
		return nil, domain.ErrNotFound
	}
	return rv, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, titleID, reviewID uint, text *string, score *int) (*domain.Review, error) {
	rv, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text != nil {
		if *text == "" {
			return nil, fmt.Errorf("%w: text cannot be empty", domain.ErrValidation)
		}
		rv.Text = *text
	}
	if score != nil {
		if *score < domain.MinScore || *score > domain.MaxScore {
			return nil, fmt.Errorf("%w: score must be between %d and %d",
				domain.ErrValidation, domain.MinScore, domain.MaxScore)
		}
		rv.Score = *score
	}
	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, err
	}
	s.invalidateRating(ctx, titleID)
	return rv, nil
}

// DeleteReview 级联删掉楼中评论，一个事务
func (s *ReviewService) DeleteReview(ctx context.Context, titleID, reviewID uint) error {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(r domain.RepoSet) error {
		if err := r.Comments.DeleteByReviews(ctx, []uint{reviewID}); err != nil {
			return err
		}
		return r.Reviews.Delete(ctx, reviewID)
	})
	if err != nil {
		return err
	}
	s.invalidateRating(ctx, titleID)
	return nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID uint, offset, limit int) ([]domain.Comment, int64, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListByReview(ctx, reviewID, offset, limit)
}

func (s *ReviewService) CreateComment(ctx context.Context, authorID, titleID, reviewID uint, text string) (*domain.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	c := &domain.Comment{Text: text, AuthorID: authorID, ReviewID: reviewID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, c.ID)
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*domain.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.ReviewID != reviewID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *ReviewService) UpdateComment(ctx context.Context, titleID, reviewID, commentID uint, text string) (*domain.Comment, error) {
	c, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", domain.ErrValidation)
	}
	c.Text = text
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, titleID, reviewID, commentID uint) error {
	if _, err := s.GetComment(ctx, titleID, reviewID, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *ReviewService) requireTitle(ctx context.Context, titleID uint) error {
	t, err := s.titles.FindByID(ctx, titleID)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ReviewService) invalidateRating(ctx context.Context, titleID uint) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, ratingKey(titleID))
}
