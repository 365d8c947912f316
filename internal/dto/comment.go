package dto

import (
	"time"

	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/thread"
)

type AuthorInfo struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
}

// CommentResponse 评论树节点，Replies永远是数组，不会是null
type CommentResponse struct {
	ID        uint64             `json:"id"`
	SubjectID uint64             `json:"subjectId"`
	ParentID  *uint64            `json:"parentId"`
	Author    AuthorInfo         `json:"author"`
	Body      string             `json:"body"`
	Published bool               `json:"published"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Replies   []*CommentResponse `json:"replies"`
}

type AnomalyResponse struct {
	CommentID uint64 `json:"commentId"`
	ParentID  uint64 `json:"parentId"`
}

type CommentTreeResponse struct {
	Roots      []*CommentResponse `json:"roots"`
	TotalCount int                `json:"totalCount"`
	Anomalies  []AnomalyResponse  `json:"anomalies,omitempty"`
}

// ToCommentResponse 单条评论（提交/审核/编辑的返回值），没有回复。
// withEmail为false时不返回作者邮箱，邮箱只给审核员看
func ToCommentResponse(c *model.Comment, withEmail bool) *CommentResponse {
	resp := &CommentResponse{
		ID:        c.ID,
		SubjectID: c.SubjectID,
		ParentID:  c.ParentID,
		Author:    AuthorInfo{Name: c.AuthorName},
		Body:      c.Body,
		Published: c.Published,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Replies:   []*CommentResponse{},
	}
	if withEmail {
		resp.Author.Email = c.AuthorEmail
	}
	return resp
}

// ToCommentTreeResponse 用thread.Walk先序遍历，父节点总是先于子节点转换，深树也不会递归爆栈
func ToCommentTreeResponse(forest *thread.Forest, withEmail bool) *CommentTreeResponse {
	resp := &CommentTreeResponse{
		Roots:      make([]*CommentResponse, 0, len(forest.Roots)),
		TotalCount: forest.TotalCount,
	}
	converted := make(map[*thread.ThreadedComment]*CommentResponse, forest.TotalCount)
	thread.Walk(forest.Roots, func(node, parent *thread.ThreadedComment, _ int) bool {
		item := ToCommentResponse(&node.Comment, withEmail)
		converted[node] = item
		if parent == nil {
			resp.Roots = append(resp.Roots, item)
		} else {
			p := converted[parent]
			p.Replies = append(p.Replies, item)
		}
		return true
	})
	for _, a := range forest.Anomalies {
		resp.Anomalies = append(resp.Anomalies, AnomalyResponse{CommentID: a.CommentID, ParentID: a.ParentID})
	}
	return resp
}

type CommentEventResponse struct {
	EventID    string    `json:"eventId"`
	CommentID  uint64    `json:"commentId"`
	SubjectID  uint64    `json:"subjectId"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	Published  bool      `json:"published"`
	Cascade    bool      `json:"cascade"`
	OccurredAt time.Time `json:"occurredAt"`
}

func ToCommentEventResponses(events []model.CommentEvent) []CommentEventResponse {
	resp := make([]CommentEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, CommentEventResponse{
			EventID:    e.EventID,
			CommentID:  e.CommentID,
			SubjectID:  e.SubjectID,
			Action:     e.Action,
			Actor:      e.Actor,
			Published:  e.Published,
			Cascade:    e.Cascade,
			OccurredAt: e.OccurredAt,
		})
	}
	return resp
}
