package domain

import "context"

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"size:200;index;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:100;not null" json:"slug"`
}

func (Category) TableName() string { return "categories" }

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"size:200;index;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:100;not null" json:"slug"`
}

func (Genre) TableName() string { return "genres" }

type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"size:1000" json:"description,omitempty"`
	Year        *int      `gorm:"index" json:"year,omitempty"`
	CategoryID  *uint     `json:"-"` // 分类删除时置空，不级联
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Genres      []Genre   `gorm:"many2many:title_genres" json:"genre"`
	Rating      *float64  `gorm:"-" json:"rating"` // 派生值：评分均值，无评价时为 null
}

func (Title) TableName() string { return "titles" }

// TitleFilter 列表过滤条件（slug 精确、name 子串不区分大小写、year 精确）
type TitleFilter struct {
	Category string
	Genre    string
	Name     string
	Year     *int
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context, search string, offset, limit int) ([]Category, int64, error)
	Delete(ctx context.Context, id uint) error
}

type GenreRepository interface {
	Create(ctx context.Context, g *Genre) error
	FindBySlug(ctx context.Context, slug string) (*Genre, error)
	List(ctx context.Context, search string, offset, limit int) ([]Genre, int64, error)
	Delete(ctx context.Context, id uint) error
}

type TitleRepository interface {
	Create(ctx context.Context, t *Title) error
	FindByID(ctx context.Context, id uint) (*Title, error)
	List(ctx context.Context, f TitleFilter, offset, limit int) ([]Title, int64, error)
	Update(ctx context.Context, t *Title) error
	ReplaceGenres(ctx context.Context, t *Title, genres []Genre) error
	Delete(ctx context.Context, id uint) error
	// DetachCategory 把引用该分类的作品 category_id 置空
	DetachCategory(ctx context.Context, categoryID uint) error
	// DetachGenre 清掉 many2many 关联行
	DetachGenre(ctx context.Context, genreID uint) error
}
