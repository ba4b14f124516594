package service

import (
	"context"
	"sync"
	"time"

	"go-review-api/internal/domain"
)

// memStore 内存仓储，只给测试用；同时充当 Transactor（无回滚语义）
type memStore struct {
	mu         sync.Mutex
	nextID     uint
	users      map[uint]*domain.User
	codes      map[uint]*domain.ConfirmationCode // key: userID
	categories map[uint]*domain.Category
	genres     map[uint]*domain.Genre
	titles     map[uint]*domain.Title
	reviews    map[uint]*domain.Review
	comments   map[uint]*domain.Comment
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uint]*domain.User{},
		codes:      map[uint]*domain.ConfirmationCode{},
		categories: map[uint]*domain.Category{},
		genres:     map[uint]*domain.Genre{},
		titles:     map[uint]*domain.Title{},
		reviews:    map[uint]*domain.Review{},
		comments:   map[uint]*domain.Comment{},
	}
}

func (s *memStore) id() uint { s.nextID++; return s.nextID }

func (s *memStore) RepoSet() domain.RepoSet {
	return domain.RepoSet{
		Users:      memUsers{s},
		Codes:      memCodes{s},
		Categories: memCategories{s},
		Genres:     memGenres{s},
		Titles:     memTitles{s},
		Reviews:    memReviews{s},
		Comments:   memComments{s},
	}
}

func (s *memStore) InTx(_ context.Context, fn func(domain.RepoSet) error) error {
	return fn(s.RepoSet())
}

// ---------- users ----------

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.users {
		if ex.Email == u.Email || ex.Username == u.Username {
			return domain.ErrConflict
		}
	}
	u.ID = r.s.id()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memUsers) List(_ context.Context, offset, limit int) ([]domain.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, int64(len(r.s.users)), nil
}

func (r memUsers) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r memUsers) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// ---------- codes ----------

type memCodes struct{ s *memStore }

func (r memCodes) FindByUser(_ context.Context, userID uint) (*domain.ConfirmationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cc, ok := r.s.codes[userID]; ok {
		cp := *cc
		return &cp, nil
	}
	return nil, nil
}

func (r memCodes) Replace(_ context.Context, userID uint, codeHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.codes[userID] = &domain.ConfirmationCode{
		ID: r.s.id(), UserID: userID, CodeHash: codeHash, CreatedAt: time.Now(),
	}
	return nil
}

func (r memCodes) DeleteByUser(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.codes, userID)
	return nil
}

func (r memCodes) Consume(_ context.Context, id uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for uid, cc := range r.s.codes {
		if cc.ID == id {
			delete(r.s.codes, uid)
			return true, nil
		}
	}
	return false, nil
}

// ---------- categories / genres ----------

type memCategories struct{ s *memStore }

func (r memCategories) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.categories {
		if ex.Slug == c.Slug {
			return domain.ErrConflict
		}
	}
	c.ID = r.s.id()
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r memCategories) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memCategories) List(_ context.Context, _ string, _, _ int) ([]domain.Category, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Category
	for _, c := range r.s.categories {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r memCategories) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	return nil
}

type memGenres struct{ s *memStore }

func (r memGenres) Create(_ context.Context, g *domain.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.genres {
		if ex.Slug == g.Slug {
			return domain.ErrConflict
		}
	}
	g.ID = r.s.id()
	cp := *g
	r.s.genres[g.ID] = &cp
	return nil
}

func (r memGenres) FindBySlug(_ context.Context, slug string) (*domain.Genre, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, g := range r.s.genres {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memGenres) List(_ context.Context, _ string, _, _ int) ([]domain.Genre, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Genre
	for _, g := range r.s.genres {
		out = append(out, *g)
	}
	return out, int64(len(out)), nil
}

func (r memGenres) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.genres, id)
	return nil
}

// ---------- titles ----------

type memTitles struct{ s *memStore }

func (r memTitles) Create(_ context.Context, t *domain.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	cp := *t
	r.s.titles[t.ID] = &cp
	return nil
}

func (r memTitles) FindByID(_ context.Context, id uint) (*domain.Title, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.titles[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	if cp.CategoryID != nil {
		if c, ok := r.s.categories[*cp.CategoryID]; ok {
			cc := *c
			cp.Category = &cc
		}
	}
	return &cp, nil
}

func (r memTitles) List(_ context.Context, f domain.TitleFilter, _, _ int) ([]domain.Title, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Title
	for _, t := range r.s.titles {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r memTitles) Update(_ context.Context, t *domain.Title) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	cp.Category = nil
	r.s.titles[t.ID] = &cp
	return nil
}

func (r memTitles) ReplaceGenres(_ context.Context, t *domain.Title, genres []domain.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if ex, ok := r.s.titles[t.ID]; ok {
		ex.Genres = append([]domain.Genre(nil), genres...)
	}
	return nil
}

func (r memTitles) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.titles, id)
	return nil
}

func (r memTitles) DetachCategory(_ context.Context, categoryID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.titles {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			t.CategoryID = nil
		}
	}
	return nil
}

func (r memTitles) DetachGenre(_ context.Context, genreID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.titles {
		kept := t.Genres[:0]
		for _, g := range t.Genres {
			if g.ID != genreID {
				kept = append(kept, g)
			}
		}
		t.Genres = kept
	}
	return nil
}

// ---------- reviews ----------

type memReviews struct{ s *memStore }

func (r memReviews) Create(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.reviews {
		if ex.AuthorID == rv.AuthorID && ex.TitleID == rv.TitleID {
			return domain.ErrConflict
		}
	}
	rv.ID = r.s.id()
	rv.CreatedAt = time.Now()
	cp := *rv
	r.s.reviews[rv.ID] = &cp
	return nil
}

func (r memReviews) FindByID(_ context.Context, id uint) (*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rv, ok := r.s.reviews[id]; ok {
		cp := *rv
		return &cp, nil
	}
	return nil, nil
}

func (r memReviews) ListByTitle(_ context.Context, titleID uint, _, _ int) ([]domain.Review, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.s.reviews {
		if rv.TitleID == titleID {
			out = append(out, *rv)
		}
	}
	return out, int64(len(out)), nil
}

func (r memReviews) ExistsByAuthorAndTitle(_ context.Context, authorID, titleID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.reviews {
		if rv.AuthorID == authorID && rv.TitleID == titleID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReviews) Update(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *rv
	r.s.reviews[rv.ID] = &cp
	return nil
}

func (r memReviews) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reviews, id)
	return nil
}

func (r memReviews) IDsByTitle(_ context.Context, titleID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, rv := range r.s.reviews {
		if rv.TitleID == titleID {
			ids = append(ids, rv.ID)
		}
	}
	return ids, nil
}

func (r memReviews) DeleteByTitle(_ context.Context, titleID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rv := range r.s.reviews {
		if rv.TitleID == titleID {
			delete(r.s.reviews, id)
		}
	}
	return nil
}

func (r memReviews) IDsByAuthor(_ context.Context, authorID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, rv := range r.s.reviews {
		if rv.AuthorID == authorID {
			ids = append(ids, rv.ID)
		}
	}
	return ids, nil
}

func (r memReviews) DeleteByAuthor(_ context.Context, authorID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rv := range r.s.reviews {
		if rv.AuthorID == authorID {
			delete(r.s.reviews, id)
		}
	}
	return nil
}

func (r memReviews) AverageScore(_ context.Context, titleID uint) (*float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum, n int
	for _, rv := range r.s.reviews {
		if rv.TitleID == titleID {
			sum += rv.Score
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (r memReviews) AverageScores(ctx context.Context, titleIDs []uint) (map[uint]float64, error) {
	out := map[uint]float64{}
	for _, id := range titleIDs {
		avg, err := r.AverageScore(ctx, id)
		if err != nil {
			return nil, err
		}
		if avg != nil {
			out[id] = *avg
		}
	}
	return out, nil
}

// ---------- comments ----------

type memComments struct{ s *memStore }

func (r memComments) Create(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	c.CreatedAt = time.Now()
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r memComments) FindByID(_ context.Context, id uint) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r memComments) ListByReview(_ context.Context, reviewID uint, _, _ int) ([]domain.Comment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Comment
	for _, c := range r.s.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r memComments) Update(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r memComments) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.comments, id)
	return nil
}

func (r memComments) DeleteByReviews(_ context.Context, reviewIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rid := range reviewIDs {
		for id, c := range r.s.comments {
			if c.ReviewID == rid {
				delete(r.s.comments, id)
			}
		}
	}
	return nil
}

func (r memComments) DeleteByAuthor(_ context.Context, authorID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.comments {
		if c.AuthorID == authorID {
			delete(r.s.comments, id)
		}
	}
	return nil
}
