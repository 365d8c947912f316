package handler

import (
	"net/http"
	"strconv"

	"Lumen_Blog/internal/dto"
	"Lumen_Blog/internal/middleware"
	"Lumen_Blog/internal/service"
	"Lumen_Blog/pkg/logger"

	"github.com/gin-gonic/gin"
)

type PostHandler interface {
	CreatePost(c *gin.Context)
	GetPost(c *gin.Context)
	ListPosts(c *gin.Context)
}

type postHandler struct {
	PostService service.PostService
}

func NewPostHandler(postService service.PostService) PostHandler {
	return &postHandler{PostService: postService}
}

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
	Content string `json:"content" binding:"required"`
}

// 发文章：1、绑定请求体 2、从context取出作者身份 3、创建并返回完整文章
func (h *postHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("文章参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	identity := middleware.IdentityFrom(c)
	logCtx := logger.Log.WithField("user_id", identity.UserID)
	logCtx.Info("开始创建文章")

	post, err := h.PostService.Create(c.Request.Context(), identity, service.CreatePostInput{
		Title:   req.Title,
		Summary: req.Summary,
		Content: req.Content,
	})
	if err != nil {
		logCtx.WithError(err).Error("创建文章失败")
		sendAppError(c, err, "创建文章失败")
		return
	}

	logCtx.WithField("post_id", post.ID).Info("文章创建成功")
	c.JSON(http.StatusCreated, gin.H{
		"message": "文章创建成功",
		"data":    dto.ToPostResponse(post, true),
	})
}

func (h *postHandler) GetPost(c *gin.Context) {
	postID, ok := parseIDParam(c, "post_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的文章ID")
		return
	}
	post, err := h.PostService.Get(c.Request.Context(), postID)
	if err != nil {
		sendAppError(c, err, "获取文章失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "获取文章成功",
		"data":    dto.ToPostResponse(post, true),
	})
}

// 最新文章列表，?limit=默认20
func (h *postHandler) ListPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	posts, err := h.PostService.Latest(c.Request.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("获取文章列表失败")
		sendAppError(c, err, "获取文章列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "获取文章列表成功",
		"data":    dto.ToPostResponses(posts),
	})
}
