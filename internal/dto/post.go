package dto

import (
	"time"

	"Lumen_Blog/internal/model"
)

type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

func ToUserInfo(u *model.User) UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Role: u.Role}
}

type PostResponse struct {
	ID        uint64    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content,omitempty"`
	Author    UserInfo  `json:"author"`
}

// ToPostResponse withContent为false时只给列表页用的摘要
func ToPostResponse(post *model.Post, withContent bool) PostResponse {
	resp := PostResponse{
		ID:        post.ID,
		CreatedAt: post.CreatedAt,
		Title:     post.Title,
		Summary:   post.Summary,
	}
	if withContent {
		resp.Content = post.Content
	}
	// 检查Author是否被成功preload
	if post.Author.ID != 0 {
		resp.Author = UserInfo{ID: post.Author.ID, Username: post.Author.Username}
	} else {
		resp.Author.ID = post.AuthorID
	}
	return resp
}

func ToPostResponses(posts []model.Post) []PostResponse {
	resp := make([]PostResponse, 0, len(posts))
	for i := range posts {
		resp = append(resp, ToPostResponse(&posts[i], false))
	}
	return resp
}
