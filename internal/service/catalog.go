package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-review-api/internal/core/cache"
	"go-review-api/internal/domain"
	"go-review-api/pkg/utils"
)

const ratingTTL = 30 * time.Second

func ratingKey(titleID uint) string { return fmt.Sprintf("title:rating:%d", titleID) }

// CatalogService 分类/流派/作品的读写与派生评分
type CatalogService struct {
	categories domain.CategoryRepository
	genres     domain.GenreRepository
	titles     domain.TitleRepository
	reviews    domain.ReviewRepository
	tx         domain.Transactor
	cache      *cache.Cache // 可为 nil（测试、未配置 redis）
	log        *zap.Logger
}

func NewCatalogService(r domain.RepoSet, tx domain.Transactor, c *cache.Cache, l *zap.Logger) *CatalogService {
	return &CatalogService{
		categories: r.Categories,
		genres:     r.Genres,
		titles:     r.Titles,
		reviews:    r.Reviews,
		tx:         tx,
		cache:      c,
		log:        l,
	}
}

type SluggedInput struct {
	Name string
	Slug string
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, offset, limit int) ([]domain.Category, int64, error) {
	return s.categories.List(ctx, search, offset, limit)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in SluggedInput) (*domain.Category, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Slug == "" {
		in.Slug = utils.Slugify(in.Name)
	}
	c := &domain.Category{Name: in.Name, Slug: in.Slug}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory 分类删除不级联：同一事务内先把作品的 category_id 置空
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return s.tx.InTx(ctx, func(r domain.RepoSet) error {
		if err := r.Titles.DetachCategory(ctx, c.ID); err != nil {
			return err
		}
		return r.Categories.Delete(ctx, c.ID)
	})
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, offset, limit int) ([]domain.Genre, int64, error) {
	return s.genres.List(ctx, search, offset, limit)
}

func (s *CatalogService) CreateGenre(ctx context.Context, in SluggedInput) (*domain.Genre, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Slug == "" {
		in.Slug = utils.Slugify(in.Name)
	}
	g := &domain.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.genres.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	g, err := s.genres.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if g == nil {
		return domain.ErrNotFound
	}
	return s.tx.InTx(ctx, func(r domain.RepoSet) error {
		if err := r.Titles.DetachGenre(ctx, g.ID); err != nil {
			return err
		}
		return r.Genres.Delete(ctx, g.ID)
	})
}

// TitleInput 创建/部分更新共用；nil 字段表示不改
type TitleInput struct {
	Name        *string
	Description *string
	Year        *int
	Category    *string   // category slug，空串表示清除
	Genres      *[]string // genre slugs，整组替换
}

func (s *CatalogService) CreateTitle(ctx context.Context, in TitleInput) (*domain.Title, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := validateYear(in.Year); err != nil {
		return nil, err
	}
	t := &domain.Title{Name: *in.Name, Year: in.Year}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Category != nil && *in.Category != "" {
		c, err := s.categories.FindBySlug(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *in.Category)
		}
		t.CategoryID = &c.ID
	}
	genres, err := s.resolveGenres(ctx, in.Genres)
	if err != nil {
		return nil, err
	}
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, err
	}
	if genres != nil {
		if err := s.titles.ReplaceGenres(ctx, t, genres); err != nil {
			return nil, err
		}
	}
	return s.GetTitle(ctx, t.ID)
}

func (s *CatalogService) GetTitle(ctx context.Context, id uint) (*domain.Title, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	rating, err := s.ratingFor(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Rating = rating
	return t, nil
}

func (s *CatalogService) ListTitles(ctx context.Context, f domain.TitleFilter, offset, limit int) ([]domain.Title, int64, error) {
	titles, total, err := s.titles.List(ctx, f, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, 0, len(titles))
	for i := range titles {
		ids = append(ids, titles[i].ID)
	}
	avgs, err := s.reviews.AverageScores(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range titles {
		if avg, ok := avgs[titles[i].ID]; ok {
			v := avg
			titles[i].Rating = &v
		}
	}
	return titles, total, nil
}

func (s *CatalogService) UpdateTitle(ctx context.Context, id uint, in TitleInput) (*domain.Title, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		t.Name = *in.Name
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Year != nil {
		if err := validateYear(in.Year); err != nil {
			return nil, err
		}
		t.Year = in.Year
	}
	if in.Category != nil {
		if *in.Category == "" {
			t.CategoryID = nil
		} else {
			c, err := s.categories.FindBySlug(ctx, *in.Category)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, *in.Category)
			}
			t.CategoryID = &c.ID
		}
	}
	if err := s.titles.Update(ctx, t); err != nil {
		return nil, err
	}
	if in.Genres != nil {
		genres, err := s.resolveGenres(ctx, in.Genres)
		if err != nil {
			return nil, err
		}
		if err := s.titles.ReplaceGenres(ctx, t, genres); err != nil {
			return nil, err
		}
	}
	return s.GetTitle(ctx, id)
}

// DeleteTitle 级联删除显式落在删除路径里：评论 → 评价 → 作品，一个事务
func (s *CatalogService) DeleteTitle(ctx context.Context, id uint) error {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrNotFound
	}
	err = s.tx.InTx(ctx, func(r domain.RepoSet) error {
		reviewIDs, err := r.Reviews.IDsByTitle(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Comments.DeleteByReviews(ctx, reviewIDs); err != nil {
			return err
		}
		if err := r.Reviews.DeleteByTitle(ctx, id); err != nil {
			return err
		}
		return r.Titles.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateRating(ctx, id)
	return nil
}

func (s *CatalogService) resolveGenres(ctx context.Context, slugs *[]string) ([]domain.Genre, error) {
	if slugs == nil {
		return nil, nil
	}
	genres := make([]domain.Genre, 0, len(*slugs))
	for _, slug := range *slugs {
		g, err := s.genres.FindBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, fmt.Errorf("%w: unknown genre %q", domain.ErrValidation, slug)
		}
		genres = append(genres, *g)
	}
	return genres, nil
}

type titleRating struct {
	Rating *float64 `json:"rating"`
}

// ratingFor 评分走 redis + singleflight，未配置缓存时直查
func (s *CatalogService) ratingFor(ctx context.Context, titleID uint) (*float64, error) {
	if s.cache == nil {
		return s.reviews.AverageScore(ctx, titleID)
	}
	r, err := cache.GetOrLoadJSON[titleRating](s.cache, ctx, ratingKey(titleID), ratingTTL,
		func(ctx context.Context) (*titleRating, error) {
			avg, err := s.reviews.AverageScore(ctx, titleID)
			if err != nil {
				return nil, err
			}
			return &titleRating{Rating: avg}, nil
		})
	if err != nil {
		// 缓存故障降级直查
		s.log.Warn("rating cache degraded", zap.Uint("title_id", titleID), zap.Error(err))
		return s.reviews.AverageScore(ctx, titleID)
	}
	if r == nil {
		return nil, nil
	}
	return r.Rating, nil
}

func (s *CatalogService) invalidateRating(ctx context.Context, titleID uint) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, ratingKey(titleID))
}

func validateYear(year *int) error {
	if year == nil {
		return nil
	}
	if *year < 0 || *year > time.Now().Year() {
		return fmt.Errorf("%w: year %d is out of range", domain.ErrValidation, *year)
	}
	return nil
}
