package repository

import (
	"context"

	"Lumen_Blog/internal/model"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindLatest(ctx context.Context, limit int) ([]model.Post, error)
	FindByID(ctx context.Context, postID uint64) (*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// 按时间倒序查询最新的文章，并预加载作者
func (r *postRepository) FindLatest(ctx context.Context, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) FindByID(ctx context.Context, postID uint64) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, postID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
