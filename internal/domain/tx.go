package domain

import "context"

// RepoSet 同一事务边界内的仓储集合
type RepoSet struct {
	Users      UserRepository
	Codes      CodeRepository
	Categories CategoryRepository
	Genres     GenreRepository
	Titles     TitleRepository
	Reviews    ReviewRepository
	Comments   CommentRepository
}

// Transactor 跨仓储写入的事务边界；fn 返回 error 则整体回滚
type Transactor interface {
	InTx(ctx context.Context, fn func(RepoSet) error) error
}
