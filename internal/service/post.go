package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"Lumen_Blog/internal/apperr"
	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultFeedSize = 20
	maxFeedSize     = 100
)

type CreatePostInput struct {
	Title   string
	Summary string
	Content string
}

// 文章服务：评论挂在文章下面，文章只有审核员能写
type PostService interface {
	Create(ctx context.Context, actor auth.Identity, in CreatePostInput) (*model.Post, error)
	Get(ctx context.Context, postID uint64) (*model.Post, error)
	Latest(ctx context.Context, limit int) ([]model.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
	policy   auth.ModeratorPolicy
}

func NewPostService(postRepo repository.PostRepository, policy auth.ModeratorPolicy) PostService {
	return &postService{postRepo: postRepo, policy: policy}
}

// Create 1、权限检查 2、标题/摘要去HTML，正文按UGC策略清洗 3、入库后带着作者查回来
func (s *postService) Create(ctx context.Context, actor auth.Identity, in CreatePostInput) (*model.Post, error) {
	const op = "post.create"
	if !s.policy.IsModerator(actor) {
		return nil, apperr.Forbidden(op, "moderator role required")
	}

	title, err := cleanText(op, "title", in.Title, MaxTitleRunes)
	if err != nil {
		return nil, err
	}
	summary := stripTags(in.Summary)
	if utf8.RuneCountInString(summary) > 500 {
		return nil, apperr.Validation(op, "summary exceeds 500 characters")
	}
	content := strings.TrimSpace(richText.Sanitize(in.Content))
	if content == "" {
		return nil, apperr.Validation(op, "content must not be blank")
	}

	post := &model.Post{
		AuthorID: actor.UserID,
		Title:    title,
		Summary:  summary,
		Content:  content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, apperr.Store(op, err)
	}
	return s.Get(ctx, post.ID)
}

func (s *postService) Get(ctx context.Context, postID uint64) (*model.Post, error) {
	const op = "post.get"
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(op, "post %d not found", postID)
		}
		return nil, apperr.Store(op, err)
	}
	return post, nil
}

// Latest limit不合法时取默认值，最多100条
func (s *postService) Latest(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = defaultFeedSize
	}
	if limit > maxFeedSize {
		limit = maxFeedSize
	}
	posts, err := s.postRepo.FindLatest(ctx, limit)
	if err != nil {
		return nil, apperr.Store("post.latest", err)
	}
	return posts, nil
}
