package model

import "time"

const (
	CommentActionSubmitted = "submitted"
	CommentActionModerated = "moderated"
	CommentActionEdited    = "edited"
	CommentActionRemoved   = "removed"
)

// CommentEvent 是审核流水，由consumer从MQ消息落库
// EventID唯一，重复投递的消息会撞上唯一索引
type CommentEvent struct {
	BaseModel
	EventID    string    `gorm:"size:36;uniqueIndex;not null"`
	CommentID  uint64    `gorm:"not null;index"`
	SubjectID  uint64    `gorm:"not null;index"`
	Action     string    `gorm:"size:20;not null"`
	Actor      string    `gorm:"size:80"`
	Published  bool      `gorm:"not null;default:false"`
	Cascade    bool      `gorm:"not null;default:false"`
	OccurredAt time.Time `gorm:"not null"`
}

func (CommentEvent) TableName() string {
	return "comment_events"
}
