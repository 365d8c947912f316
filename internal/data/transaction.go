package data

import (
	"context"

	"Lumen_Blog/internal/repository"

	"gorm.io/gorm"
)

// UnitOfWork 把一段业务逻辑包在一个数据库事务里执行
type UnitOfWork interface {
	// Execute 为fn提供绑定在同一事务上的Repositories；fn返回error则回滚，返回nil则提交
	Execute(ctx context.Context, fn func(repos *TransactionalRepositories) error) error
}

// TransactionalRepositories 持有所有需要在同一个事务中操作的Repository
type TransactionalRepositories struct {
	CommentRepo repository.CommentRepository
}

type gormUnitOfWork struct {
	db          *gorm.DB
	commentRepo repository.CommentRepository
}

// NewUnitOfWork 接收的是原始的、非事务的repositories
func NewUnitOfWork(db *gorm.DB, commentRepo repository.CommentRepository) UnitOfWork {
	return &gormUnitOfWork{
		db:          db,
		commentRepo: commentRepo,
	}
}

func (u *gormUnitOfWork) Execute(ctx context.Context, fn func(repos *TransactionalRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 临时创建绑定了这个事务的Repo副本
		return fn(&TransactionalRepositories{
			CommentRepo: u.commentRepo.WithTx(tx),
		})
	})
}
