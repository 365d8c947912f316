// Package event 评论生命周期事件：service投递到RabbitMQ，consumer落库成审核流水
package event

import (
	"time"

	"Lumen_Blog/internal/model"
)

type CommentEventMessage struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	CommentID  uint64    `json:"comment_id"`
	SubjectID  uint64    `json:"subject_id"`
	Actor      string    `json:"actor"`
	Published  bool      `json:"published"`
	Cascade    bool      `json:"cascade"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Valid 消费端用来识别坏消息
func (m CommentEventMessage) Valid() bool {
	if m.EventID == "" || m.CommentID == 0 {
		return false
	}
	switch m.Action {
	case model.CommentActionSubmitted, model.CommentActionModerated, model.CommentActionEdited, model.CommentActionRemoved:
		return true
	}
	return false
}

func (m CommentEventMessage) ToModel() *model.CommentEvent {
	occurred := m.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return &model.CommentEvent{
		EventID:    m.EventID,
		CommentID:  m.CommentID,
		SubjectID:  m.SubjectID,
		Action:     m.Action,
		Actor:      m.Actor,
		Published:  m.Published,
		Cascade:    m.Cascade,
		OccurredAt: occurred,
	}
}
