package repository

import (
	"context"

	"Lumen_Blog/internal/model"
	"Lumen_Blog/pkg/logger"

	"gorm.io/gorm"
)

type CommentEventRepository interface {
	Create(ctx context.Context, event *model.CommentEvent) error
	FindByComment(ctx context.Context, commentID uint64) ([]model.CommentEvent, error)
}

type commentEventRepository struct {
	db *gorm.DB
}

func NewCommentEventRepository(db *gorm.DB) CommentEventRepository {
	return &commentEventRepository{db: db}
}

func (r *commentEventRepository) Create(ctx context.Context, event *model.CommentEvent) error {
	result := r.db.WithContext(ctx).Create(event)
	if result.Error != nil {
		logger.Log.WithError(result.Error).WithField("event_id", event.EventID).Debug("审核流水写入失败")
		return result.Error
	}
	return nil
}

func (r *commentEventRepository) FindByComment(ctx context.Context, commentID uint64) ([]model.CommentEvent, error) {
	var events []model.CommentEvent
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", commentID).
		Order("occurred_at asc").
		Order("id asc").
		Find(&events).Error
	return events, err
}
