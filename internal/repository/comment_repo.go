package repository

import (
	"context"

	"Lumen_Blog/internal/model"

	"gorm.io/gorm"
)

// CommentRepository 评论的持久化接口，只存取扁平的评论行
type CommentRepository interface {
	// 一篇文章下的全部评论（不区分是否发布），按创建时间排序
	FindBySubject(ctx context.Context, subjectID uint64) ([]model.Comment, error)
	FindByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	Insert(ctx context.Context, comment *model.Comment) error
	// 部分字段更新，评论不存在时返回gorm.ErrRecordNotFound
	Update(ctx context.Context, commentID uint64, fields map[string]interface{}) (*model.Comment, error)
	// 返回是否真的删掉了一行
	Delete(ctx context.Context, commentID uint64) (bool, error)
	// 直接回复，级联删除时用来找子树
	FindChildren(ctx context.Context, commentID uint64) ([]model.Comment, error)

	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx 返回一个绑定事务的commentRepository实例
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) FindBySubject(ctx context.Context, subjectID uint64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", subjectID).
		Order("created_at asc").
		Order("id asc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	if err := r.db.WithContext(ctx).First(&result, commentID).Error; err != nil {
		return nil, err // 包括没找到(gorm.ErrRecordNotFound)
	}
	return &result, nil
}

func (r *commentRepository) Insert(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// 先确认存在再更新：MySQL的RowsAffected只统计真正变化的行，不能拿来判断存在性
func (r *commentRepository) Update(ctx context.Context, commentID uint64, fields map[string]interface{}) (*model.Comment, error) {
	if _, err := r.FindByID(ctx, commentID); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		err := r.db.WithContext(ctx).
			Model(&model.Comment{}).
			Where("id = ?", commentID).
			Updates(fields).Error // map更新时gorm会自动带上updated_at
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, commentID)
}

func (r *commentRepository) Delete(ctx context.Context, commentID uint64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, commentID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) FindChildren(ctx context.Context, commentID uint64) ([]model.Comment, error) {
	var children []model.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", commentID).
		Order("created_at asc").
		Order("id asc").
		Find(&children).Error
	return children, err
}
