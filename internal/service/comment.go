package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Lumen_Blog/internal/apperr"
	"Lumen_Blog/internal/auth"
	"Lumen_Blog/internal/data"
	"Lumen_Blog/internal/event"
	"Lumen_Blog/internal/model"
	"Lumen_Blog/internal/repository"
	"Lumen_Blog/internal/thread"
	"Lumen_Blog/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type SubmitInput struct {
	SubjectID   uint64
	ParentID    *uint64
	AuthorName  string
	AuthorEmail *string
	Body        string
}

// EditInput nil字段表示不修改；AuthorEmail指向空串表示清空邮箱
type EditInput struct {
	Body        *string
	AuthorName  *string
	AuthorEmail *string
}

type CommentService interface {
	// 任何人都能提交，新评论一律未发布
	Submit(ctx context.Context, actor auth.Identity, in SubmitInput) (*model.Comment, error)
	// 发布/撤回，只动这一行
	Moderate(ctx context.Context, actor auth.Identity, commentID uint64, published bool) (*model.Comment, error)
	Edit(ctx context.Context, actor auth.Identity, commentID uint64, in EditInput) (*model.Comment, error)
	// 有回复时必须显式cascade，否则返回Conflict且不删任何东西
	Remove(ctx context.Context, actor auth.Identity, commentID uint64, cascade bool) error
	List(ctx context.Context, subjectID uint64, capability thread.Capability, order thread.Order) (*thread.Forest, error)
	// 审核流水
	Events(ctx context.Context, actor auth.Identity, commentID uint64) ([]model.CommentEvent, error)
	CapabilityOf(actor auth.Identity) thread.Capability
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	eventRepo   repository.CommentEventRepository
	uow         data.UnitOfWork
	cache       repository.CommentCache // 可以为nil
	publisher   event.Publisher         // 可以为nil
	policy      auth.ModeratorPolicy

	sf singleflight.Group
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	eventRepo repository.CommentEventRepository,
	uow data.UnitOfWork,
	cache repository.CommentCache,
	publisher event.Publisher,
	policy auth.ModeratorPolicy,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		eventRepo:   eventRepo,
		uow:         uow,
		cache:       cache,
		publisher:   publisher,
		policy:      policy,
	}
}

func (s *commentService) CapabilityOf(actor auth.Identity) thread.Capability {
	if s.policy.IsModerator(actor) {
		return thread.Moderator
	}
	return thread.Public
}

// Submit 1、校验并清洗字段 2、确认文章存在 3、确认父评论存在且属于同一篇文章 4、以未发布状态入库 5、清缓存并投递事件
func (s *commentService) Submit(ctx context.Context, actor auth.Identity, in SubmitInput) (*model.Comment, error) {
	const op = "comment.submit"

	name, err := cleanText(op, "author name", in.AuthorName, MaxAuthorNameRunes)
	if err != nil {
		return nil, err
	}
	body, err := cleanText(op, "body", in.Body, MaxBodyRunes)
	if err != nil {
		return nil, err
	}
	email, err := cleanEmail(op, in.AuthorEmail)
	if err != nil {
		return nil, err
	}

	if err := s.ensurePost(ctx, op, in.SubjectID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.FindByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound(op, "parent comment %d not found", *in.ParentID)
			}
			return nil, apperr.Store(op, err)
		}
		if parent.SubjectID != in.SubjectID {
			return nil, apperr.Validation(op, "parent comment %d belongs to post %d, not %d", parent.ID, parent.SubjectID, in.SubjectID)
		}
	}

	var parentID *uint64
	if in.ParentID != nil {
		pid := *in.ParentID
		parentID = &pid
	}
	comment := &model.Comment{
		SubjectID:   in.SubjectID,
		ParentID:    parentID,
		AuthorName:  name,
		AuthorEmail: email,
		Body:        body,
		Published:   false,
	}
	if err := s.commentRepo.Insert(ctx, comment); err != nil {
		return nil, apperr.Store(op, err)
	}

	s.afterMutation(ctx, model.CommentActionSubmitted, actor, comment, false)
	return comment, nil
}

func (s *commentService) Moderate(ctx context.Context, actor auth.Identity, commentID uint64, published bool) (*model.Comment, error) {
	const op = "comment.moderate"
	if !s.policy.IsModerator(actor) {
		return nil, apperr.Forbidden(op, "moderator role required")
	}

	updated, err := s.commentRepo.Update(ctx, commentID, map[string]interface{}{"published": published})
	if err != nil {
		return nil, s.commentErr(op, commentID, err)
	}

	s.afterMutation(ctx, model.CommentActionModerated, actor, updated, false)
	return updated, nil
}

// Edit 只更新传了值的字段，校验规则和Submit一致
func (s *commentService) Edit(ctx context.Context, actor auth.Identity, commentID uint64, in EditInput) (*model.Comment, error) {
	const op = "comment.edit"
	if !s.policy.IsModerator(actor) {
		return nil, apperr.Forbidden(op, "moderator role required")
	}

	fields := make(map[string]interface{}, 3)
	if in.Body != nil {
		body, err := cleanText(op, "body", *in.Body, MaxBodyRunes)
		if err != nil {
			return nil, err
		}
		fields["body"] = body
	}
	if in.AuthorName != nil {
		name, err := cleanText(op, "author name", *in.AuthorName, MaxAuthorNameRunes)
		if err != nil {
			return nil, err
		}
		fields["author_name"] = name
	}
	if in.AuthorEmail != nil {
		email, err := cleanEmail(op, in.AuthorEmail)
		if err != nil {
			return nil, err
		}
		if email == nil {
			fields["author_email"] = nil
		} else {
			fields["author_email"] = *email
		}
	}
	if len(fields) == 0 {
		return nil, apperr.Validation(op, "nothing to update")
	}

	updated, err := s.commentRepo.Update(ctx, commentID, fields)
	if err != nil {
		return nil, s.commentErr(op, commentID, err)
	}

	s.afterMutation(ctx, model.CommentActionEdited, actor, updated, false)
	return updated, nil
}

// Remove 在一个事务里：1、确认评论存在 2、没有cascade但有回复则Conflict 3、广度优先收集整棵子树 4、从叶子往上逐条删除
func (s *commentService) Remove(ctx context.Context, actor auth.Identity, commentID uint64, cascade bool) error {
	const op = "comment.remove"
	if !s.policy.IsModerator(actor) {
		return apperr.Forbidden(op, "moderator role required")
	}

	var removed []model.Comment
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		target, err := repos.CommentRepo.FindByID(ctx, commentID)
		if err != nil {
			return s.commentErr(op, commentID, err)
		}
		children, err := repos.CommentRepo.FindChildren(ctx, commentID)
		if err != nil {
			return apperr.Store(op, err)
		}
		if len(children) > 0 && !cascade {
			return apperr.Conflict(op, "comment %d has %d replies; remove with cascade to delete them too", commentID, len(children))
		}

		subtree := []model.Comment{*target}
		seen := map[uint64]struct{}{target.ID: {}}
		queue := children
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			subtree = append(subtree, c)

			kids, err := repos.CommentRepo.FindChildren(ctx, c.ID)
			if err != nil {
				return apperr.Store(op, err)
			}
			queue = append(queue, kids...)
		}

		for i := len(subtree) - 1; i >= 0; i-- {
			if _, err := repos.CommentRepo.Delete(ctx, subtree[i].ID); err != nil {
				return apperr.Store(op, err)
			}
		}
		removed = subtree
		return nil
	})
	if err != nil {
		return apperr.Store(op, err)
	}

	for i := range removed {
		s.afterMutation(ctx, model.CommentActionRemoved, actor, &removed[i], cascade)
	}
	return nil
}

// List 1、确认文章存在 2、读全部评论行（缓存优先）3、过审核闸门并建树 4、真正的悬挂父评论打warn日志
func (s *commentService) List(ctx context.Context, subjectID uint64, capability thread.Capability, order thread.Order) (*thread.Forest, error) {
	const op = "comment.list"

	if err := s.ensurePost(ctx, op, subjectID); err != nil {
		return nil, err
	}
	rows, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}

	forest, err := thread.Assemble(rows, capability, order)
	if err != nil {
		// 库里的数据坏了（比如回复成环），不是调用者的输入问题，按存储错误返回
		logger.Log.WithError(err).WithField("post_id", subjectID).Error("评论数据不是一棵合法的森林")
		return nil, &apperr.Error{Kind: apperr.KindStore, Op: op, Msg: "stored comments are not a valid thread: " + err.Error()}
	}
	for _, a := range forest.Anomalies {
		logger.Log.WithFields(logrus.Fields{
			"post_id":    subjectID,
			"comment_id": a.CommentID,
			"parent_id":  a.ParentID,
		}).Warn("评论的父评论不存在，已提升为根评论")
	}
	return forest, nil
}

func (s *commentService) Events(ctx context.Context, actor auth.Identity, commentID uint64) ([]model.CommentEvent, error) {
	const op = "comment.events"
	if !s.policy.IsModerator(actor) {
		return nil, apperr.Forbidden(op, "moderator role required")
	}
	events, err := s.eventRepo.FindByComment(ctx, commentID)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	return events, nil
}

// loadSubject 缓存命中直接返回；未命中时同一篇文章的并发请求只回源一次（防缓存击穿）。
// 缓存里存的是全部行，发布过滤在内存里做
func (s *commentService) loadSubject(ctx context.Context, subjectID uint64) ([]model.Comment, error) {
	logCtx := logger.Log.WithField("post_id", subjectID)

	if s.cache != nil {
		rows, hit, err := s.cache.GetSubject(ctx, subjectID)
		if err != nil {
			logCtx.WithError(err).Warn("读取评论缓存失败，回源数据库")
		} else if hit {
			return rows, nil
		}
	}

	key := fmt.Sprintf("post_comments_%d", subjectID)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		// 共享的回源不跟随任何一个调用者的取消
		loadCtx := context.WithoutCancel(ctx)

		// 回源前记下代数，回源期间被失效过就不写回
		var gen int64
		cacheable := false
		if s.cache != nil {
			g, err := s.cache.Generation(loadCtx, subjectID)
			if err != nil {
				logCtx.WithError(err).Warn("读取评论缓存代数失败，这次结果不写缓存")
			} else {
				gen, cacheable = g, true
			}
		}

		rows, err := s.commentRepo.FindBySubject(loadCtx, subjectID)
		if err != nil {
			return nil, err
		}
		if cacheable {
			stored, err := s.cache.SetSubject(loadCtx, subjectID, gen, rows)
			if err != nil {
				logCtx.WithError(err).Warn("写入评论缓存失败")
			} else if !stored {
				logCtx.Debug("回源期间评论被修改，这次结果不写缓存")
			}
		}
		return rows, nil
	})

	// 每个调用者只等到自己的ctx取消为止
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.Comment), nil
	}
}

func (s *commentService) ensurePost(ctx context.Context, op string, postID uint64) error {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(op, "post %d not found", postID)
		}
		return apperr.Store(op, err)
	}
	return nil
}

func (s *commentService) commentErr(op string, commentID uint64, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, "comment %d not found", commentID)
	}
	return apperr.Store(op, err)
}

// afterMutation 清掉文章的评论缓存并投递审核事件；两者失败都只记日志，不影响本次操作的结果
func (s *commentService) afterMutation(ctx context.Context, action string, actor auth.Identity, c *model.Comment, cascade bool) {
	logCtx := logger.Log.WithFields(logrus.Fields{
		"post_id":    c.SubjectID,
		"comment_id": c.ID,
		"action":     action,
	})

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, c.SubjectID); err != nil {
			logCtx.WithError(err).Error("评论缓存失效失败，读到的数据可能暂时过期")
		}
	}

	if s.publisher == nil {
		return
	}
	msg := event.CommentEventMessage{
		EventID:    uuid.NewString(),
		Action:     action,
		CommentID:  c.ID,
		SubjectID:  c.SubjectID,
		Actor:      actor.Actor(),
		Published:  c.Published,
		Cascade:    cascade,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishCommentEvent(ctx, msg); err != nil {
		logCtx.WithError(err).Error("评论事件投递失败，审核流水会缺这一条")
	}
}
