package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Lumen_Blog/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 定义了标准的API错误响应结构
type ErrorResponse struct {
	Error string `json:"error"`
}

// sendErrorResponse 是一个辅助函数，用于发送标准格式的错误响应
func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}

// sendAppError 按apperr的Kind选状态码；存储错误不把底层细节暴露给客户端
func sendAppError(c *gin.Context, err error, internalMsg string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		sendErrorResponse(c, http.StatusBadRequest, clientMessage(err))
	case apperr.KindNotFound:
		sendErrorResponse(c, http.StatusNotFound, clientMessage(err))
	case apperr.KindConflict:
		sendErrorResponse(c, http.StatusConflict, clientMessage(err))
	case apperr.KindForbidden:
		sendErrorResponse(c, http.StatusForbidden, clientMessage(err))
	default:
		sendErrorResponse(c, http.StatusInternalServerError, internalMsg)
	}
}

// clientMessage 去掉Op前缀，只把Msg给客户端
func clientMessage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		return ae.Msg
	}
	return err.Error()
}

// parseIDParam 把URL里的ID参数转成uint64
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
