package handler

import (
	"errors"
	"net/http"

	"Lumen_Blog/internal/dto"
	"Lumen_Blog/internal/middleware"
	"Lumen_Blog/internal/service"
	"Lumen_Blog/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	GetProfile(c *gin.Context)
	SetRole(c *gin.Context)
}

// 对Service进行封装
type userHandler struct {
	UserService service.UserService
}

// 封装函数
func NewUserHandler(userService service.UserService) UserHandler {
	return &userHandler{UserService: userService}
}

// 用处：接收http发来的全部注册信息，用户名+密码
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// 注册：1、请求体解析为注册请求结构体 2、service层利用Username和Password进行注册 3、返回注册成功后的User
func (h *userHandler) Register(c *gin.Context) {
	var req RegisterRequest
	// c.ShouldBindJSON，绑定和校验，如果context中不包含req的“required”字段，则会返回错误
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.WithError(err).Error("请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("username", req.Username)
	logCtx.Info("开始处理用户注册请求")

	user, err := h.UserService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logCtx.WithError(err).Error("用户注册业务逻辑处理失败")
		sendAppError(c, err, "注册失败")
		return
	}

	logCtx.WithField("user_id", user.ID).Info("用户注册成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "注册成功",
		"data":    dto.ToUserInfo(user),
	})
}

// 登录：1、请求体解析为登录结构体 2、Username和Password传给service层，登录服务 3、成功则返回token
func (h *userHandler) Login(c *gin.Context) {
	var login LoginRequest
	if err := c.ShouldBindJSON(&login); err != nil {
		logger.Log.WithError(err).Error("登录请求参数解析失败")
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	logCtx := logger.Log.WithField("username", login.Username)
	logCtx.Info("开始处理用户登录请求")

	token, user, err := h.UserService.Login(c.Request.Context(), login.Username, login.Password)
	if err != nil {
		logCtx.WithError(err).Error("用户登录业务逻辑处理失败")
		if errors.Is(err, service.ErrInvalidCredentials) {
			// 模糊的错误提示，更安全
			sendErrorResponse(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		sendAppError(c, err, "登录失败")
		return
	}

	logCtx.Info("用户登录成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"data": gin.H{
			"token": token,
			"user":  dto.ToUserInfo(user),
		},
	})
}

// 获取用户个人信息：以数据库为准，角色刚被修改时也能看到最新值
func (h *userHandler) GetProfile(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if !identity.Authenticated() {
		sendErrorResponse(c, http.StatusUnauthorized, "用户未认证")
		return
	}

	user, err := h.UserService.Profile(c.Request.Context(), identity.UserID)
	if err != nil {
		sendAppError(c, err, "获取用户信息失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "成功获取用户信息",
		"data":    dto.ToUserInfo(user),
	})
}

// 管理员修改用户角色
func (h *userHandler) SetRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		sendErrorResponse(c, http.StatusBadRequest, "无效的用户ID")
		return
	}
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
		return
	}

	identity := middleware.IdentityFrom(c)
	logCtx := logger.Log.WithField("user_id", userID).WithField("operator_id", identity.UserID).WithField("role", req.Role)
	logCtx.Info("开始修改用户角色")

	user, err := h.UserService.SetRole(c.Request.Context(), identity, userID, req.Role)
	if err != nil {
		logCtx.WithError(err).Error("修改用户角色失败")
		sendAppError(c, err, "修改角色失败")
		return
	}

	logCtx.Info("修改用户角色成功")
	c.JSON(http.StatusOK, gin.H{
		"message": "角色修改成功",
		"data":    dto.ToUserInfo(user),
	})
}
