package handler

import (
	"net/http"
	"strconv"

	"Lumen_Blog/internal/dto"
	"Lumen_Blog/internal/middleware"
	"Lumen_Blog/internal/service"
	"Lumen_Blog/internal/thread"
	"Lumen_Blog/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CommentHandler interface {
	ListComments(c *gin.Context)
	SubmitComment(c *gin.Context)
	ModerateComment(c *gin.Context)
	EditComment(c *gin.Context)
	RemoveComment(c *gin.Context)
	ListCommentEvents(c *gin.Context)
}

type commentHandler struct {
	CommentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) CommentHandler {
	return &commentHandler{CommentService: commentService}
}

type SubmitCommentRequest struct {
	ParentID    *uint64 `json:"parentId"`
	AuthorName  string  `json:"authorName" binding:"required"`
	AuthorEmail *string `json:"authorEmail"`
	Body        string  `json:"body" binding:"required"`
}

type ModerateCommentRequest struct {
	// 指针类型，才能区分false和没传
	Published *bool `json:"published" binding:"required"`
}

type EditCommentRequest struct {
	Body        *string `json:"body"`
	AuthorName  *string `json:"authorName"`
	AuthorEmail *string `json:"authorEmail"`
}

// 评论列表：1、解析post_id和order 2、按调用者身份决定能看到什么 3、建树后转成DTO返回
func (h *commentHandler) ListComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的文章ID")
		return
	}
	order, err := thread.ParseOrder(c.Query("order"))
	if err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "order只能是asc或desc")
		return
	}

	identity := middleware.IdentityFrom(c)
	capability := h.CommentService.CapabilityOf(identity)

	logCtx := logger.Log.WithField("post_id", postID).WithField("capability", capability.String())
	forest, err := h.CommentService.List(c.Request.Context(), postID, capability, order)
	if err != nil {
		logCtx.WithError(err).Error("获取评论列表失败")
		sendAppError(c, err, "获取评论失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "获取评论成功",
		"data":    dto.ToCommentTreeResponse(forest, capability == thread.Moderator),
	})
}

// 提交评论：1、解析post_id 2、绑定请求体 3、以未发布状态创建，等待审核
func (h *commentHandler) SubmitComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var req SubmitCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("评论参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数") // 400
		return
	}

	identity := middleware.IdentityFrom(c)
	// 正式进入业务前，将logger格式整理好
	logCtx := logger.Log.WithField("post_id", postID).WithField("user_id", identity.UserID)
	logCtx.Info("开始提交评论")

	comment, err := h.CommentService.Submit(c.Request.Context(), identity, service.SubmitInput{
		SubjectID:   postID,
		ParentID:    req.ParentID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
	})
	if err != nil {
		logCtx.WithError(err).Error("提交评论失败")
		sendAppError(c, err, "评论失败")
		return
	}

	// 业务成功，打上返回的comment的ID
	logCtx.WithField("comment_id", comment.ID).Info("评论提交成功，等待审核")
	c.JSON(http.StatusCreated, gin.H{ //201
		"message": "评论已提交，审核通过后可见",
		"data":    dto.ToCommentResponse(comment, true),
	})
}

func (h *commentHandler) ModerateComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的评论ID")
		return
	}
	var req ModerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	identity := middleware.IdentityFrom(c)
	logCtx := logger.Log.WithField("comment_id", commentID).WithField("user_id", identity.UserID).WithField("published", *req.Published)
	logCtx.Info("开始审核评论")

	comment, err := h.CommentService.Moderate(c.Request.Context(), identity, commentID, *req.Published)
	if err != nil {
		logCtx.WithError(err).Error("审核评论失败")
		sendAppError(c, err, "审核失败")
		return
	}

	logCtx.Info("审核评论成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "审核成功",
		"data":    dto.ToCommentResponse(comment, true),
	})
}

func (h *commentHandler) EditComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的评论ID")
		return
	}
	var req EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	identity := middleware.IdentityFrom(c)
	logCtx := logger.Log.WithField("comment_id", commentID).WithField("user_id", identity.UserID)
	logCtx.Info("开始编辑评论")

	comment, err := h.CommentService.Edit(c.Request.Context(), identity, commentID, service.EditInput{
		Body:        req.Body,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
	})
	if err != nil {
		logCtx.WithError(err).Error("编辑评论失败")
		sendAppError(c, err, "编辑失败")
		return
	}

	logCtx.Info("编辑评论成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "编辑成功",
		"data":    dto.ToCommentResponse(comment, true),
	})
}

// 删除评论：有回复时必须带?cascade=true，否则409
func (h *commentHandler) RemoveComment(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的评论ID")
		return
	}
	cascade := false
	if raw := c.Query("cascade"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			sendErrorResponse(c, http.StatusBadRequest, "cascade只能是true或false")
			return
		}
		cascade = v
	}

	identity := middleware.IdentityFrom(c)
	logCtx := logger.Log.WithField("comment_id", commentID).WithField("user_id", identity.UserID).WithField("cascade", cascade)
	logCtx.Info("开始删除评论")

	if err := h.CommentService.Remove(c.Request.Context(), identity, commentID, cascade); err != nil {
		logCtx.WithError(err).Error("删除评论失败")
		sendAppError(c, err, "删除失败")
		return
	}

	logCtx.Info("删除评论成功")
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

func (h *commentHandler) ListCommentEvents(c *gin.Context) {
	commentID, ok := parseIDParam(c, "comment_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的评论ID")
		return
	}

	events, err := h.CommentService.Events(c.Request.Context(), middleware.IdentityFrom(c), commentID)
	if err != nil {
		logger.Log.WithError(err).WithField("comment_id", commentID).Error("获取审核流水失败")
		sendAppError(c, err, "获取审核流水失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "获取审核流水成功",
		"data":    dto.ToCommentEventResponses(events),
	})
}
