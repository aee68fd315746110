package shared

import (
	"errors"

	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/logger"
	"github.com/promolink-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// serviceErrorCodes 服务层哨兵错误到业务码的映射
var serviceErrorCodes = []struct {
	err  error
	code int
}{
	{service.ErrNotFound, response.CodeNotFound},
	{service.ErrInvalidCredentials, response.CodeUnauthorized},
	{service.ErrSessionExpired, response.CodeUnauthorized},
	{service.ErrTokenInvalid, response.CodeUnauthorized},
	{service.ErrAccountDisabled, response.CodeForbidden},
	{service.ErrPermissionDenied, response.CodeForbidden},
	{service.ErrDuplicateEmail, response.CodeConflict},
	{service.ErrDuplicateUsername, response.CodeConflict},
	{service.ErrDuplicateReference, response.CodeConflict},
	{service.ErrInvalidTransition, response.CodeConflict},
	{service.ErrInvalidInput, response.CodeBadRequest},
	{service.ErrInvalidPassword, response.CodeBadRequest},
	{service.ErrWeakPassword, response.CodeBadRequest},
	{service.ErrCaptchaRequired, response.CodeBadRequest},
	{service.ErrCaptchaInvalid, response.CodeBadRequest},
	{service.ErrLedgerUnavailable, response.CodeUnavailable},
	{service.ErrEmailNotConfigured, response.CodeUnavailable},
	{service.ErrSettingsMissing, response.CodeInternal},
}

// RespondServiceError 将服务层错误映射为统一响应
// 未识别的错误按内部错误处理并记录原始错误
func RespondServiceError(c *gin.Context, err error) {
	for _, entry := range serviceErrorCodes {
		if errors.Is(err, entry.err) {
			response.Error(c, entry.code, err.Error())
			return
		}
	}
	RespondError(c, response.CodeInternal, "服务器内部错误", err)
}
