package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-review-api/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: 库随连接走，锁死单连接保证所有查询看同一份数据
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.ConfirmationCode{},
		&domain.Category{},
		&domain.Genre{},
		&domain.Title{},
		&domain.Review{},
		&domain.Comment{},
	))
	return db
}

func TestTitleListKeepsFields(t *testing.T) {
	db := newTestDB(t)
	titles := NewTitleRepo(db)
	ctx := context.Background()

	year := 1965
	dune := &domain.Title{Name: "Dune", Description: "sand", Year: &year}
	require.NoError(t, titles.Create(ctx, dune))

	// Count 和 Find 共用一条过滤链，列选择不能互相污染
	got, total, err := titles.List(ctx, domain.TitleFilter{}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	require.Equal(t, "Dune", got[0].Name)
	require.Equal(t, "sand", got[0].Description)
	require.NotNil(t, got[0].Year)
	require.Equal(t, 1965, *got[0].Year)
}

func TestTitleListFilters(t *testing.T) {
	db := newTestDB(t)
	titles := NewTitleRepo(db)
	categories := NewCategoryRepo(db)
	genres := NewGenreRepo(db)
	ctx := context.Background()

	books := &domain.Category{Name: "Books", Slug: "books"}
	require.NoError(t, categories.Create(ctx, books))
	epic := &domain.Genre{Name: "Epic", Slug: "epic"}
	require.NoError(t, genres.Create(ctx, epic))

	y1, y2 := 1965, 1979
	dune := &domain.Title{Name: "Dune", Year: &y1, CategoryID: &books.ID}
	require.NoError(t, titles.Create(ctx, dune))
	require.NoError(t, titles.ReplaceGenres(ctx, dune, []domain.Genre{*epic}))
	alien := &domain.Title{Name: "Alien", Year: &y2}
	require.NoError(t, titles.Create(ctx, alien))

	got, total, err := titles.List(ctx, domain.TitleFilter{Category: "books"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Dune", got[0].Name)

	got, total, err = titles.List(ctx, domain.TitleFilter{Genre: "epic"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Dune", got[0].Name)
	require.Len(t, got[0].Genres, 1)

	got, total, err = titles.List(ctx, domain.TitleFilter{Name: "ali"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Alien", got[0].Name)

	got, total, err = titles.List(ctx, domain.TitleFilter{Year: &y2}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Alien", got[0].Name)

	_, total, err = titles.List(ctx, domain.TitleFilter{}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}

func TestDetachCategorySQL(t *testing.T) {
	db := newTestDB(t)
	titles := NewTitleRepo(db)
	categories := NewCategoryRepo(db)
	ctx := context.Background()

	movies := &domain.Category{Name: "Movies", Slug: "movies"}
	require.NoError(t, categories.Create(ctx, movies))
	alien := &domain.Title{Name: "Alien", CategoryID: &movies.ID}
	require.NoError(t, titles.Create(ctx, alien))

	require.NoError(t, titles.DetachCategory(ctx, movies.ID))
	got, err := titles.FindByID(ctx, alien.ID)
	require.NoError(t, err)
	require.Nil(t, got.CategoryID)
}
