package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-review-api/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CategoryRepo) List(ctx context.Context, search string, offset, limit int) ([]domain.Category, int64, error) {
	return listSlugged[domain.Category](ctx, r.db, search, offset, limit)
}

func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{}).Error
}

type GenreRepo struct{ db *gorm.DB }

func NewGenreRepo(db *gorm.DB) *GenreRepo { return &GenreRepo{db: db} }

func (r *GenreRepo) Create(ctx context.Context, g *domain.Genre) error {
	return translate(r.db.WithContext(ctx).Create(g).Error)
}

func (r *GenreRepo) FindBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	var g domain.Genre
	err := r.db.WithContext(ctx).First(&g, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &g, err
}

func (r *GenreRepo) List(ctx context.Context, search string, offset, limit int) ([]domain.Genre, int64, error) {
	return listSlugged[domain.Genre](ctx, r.db, search, offset, limit)
}

func (r *GenreRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Genre{}).Error
}

// listSlugged 分类/流派共用：按 name 模糊搜 + 分页
func listSlugged[T any](ctx context.Context, db *gorm.DB, search string, offset, limit int) ([]T, int64, error) {
	var items []T
	var t T
	q := db.WithContext(ctx).Model(&t)
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("name asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type TitleRepo struct{ db *gorm.DB }

func NewTitleRepo(db *gorm.DB) *TitleRepo { return &TitleRepo{db: db} }

func (r *TitleRepo) Create(ctx context.Context, t *domain.Title) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TitleRepo) FindByID(ctx context.Context, id uint) (*domain.Title, error) {
	var t domain.Title
	err := r.db.WithContext(ctx).
		Preload("Category").Preload("Genres").
		First(&t, "titles.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *TitleRepo) List(ctx context.Context, f domain.TitleFilter, offset, limit int) ([]domain.Title, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Title{}).
		Preload("Category").Preload("Genres")
	if f.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Genre != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", f.Genre)
	}
	if f.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE LOWER(?)", "%"+f.Name+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	// Count 用独立 session，Distinct("titles.id") 的 select 不能漏进下面的 Find
	var total int64
	if err := q.Session(&gorm.Session{}).Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var titles []domain.Title
	if err := q.Distinct().Order("titles.id asc").Offset(offset).Limit(limit).Find(&titles).Error; err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *TitleRepo) Update(ctx context.Context, t *domain.Title) error {
	// Save 不动 many2many，流派用 ReplaceGenres 单独替换
	return translate(r.db.WithContext(ctx).Omit("Genres", "Category").Save(t).Error)
}

func (r *TitleRepo) ReplaceGenres(ctx context.Context, t *domain.Title, genres []domain.Genre) error {
	return r.db.WithContext(ctx).Model(t).Association("Genres").Replace(genres)
}

func (r *TitleRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Title{}).Error
	})
}

func (r *TitleRepo) DetachCategory(ctx context.Context, categoryID uint) error {
	return r.db.WithContext(ctx).Model(&domain.Title{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}

func (r *TitleRepo) DetachGenre(ctx context.Context, genreID uint) error {
	return r.db.WithContext(ctx).Exec("DELETE FROM title_genres WHERE genre_id = ?", genreID).Error
}
