package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// 服务层通用错误，由 HTTP 层映射为业务码
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrDuplicateEmail     = errors.New("邮箱已被使用")
	ErrDuplicateUsername  = errors.New("用户名已被使用")
	ErrDuplicateReference = errors.New("推广编码已被使用")
	ErrAccountDisabled    = errors.New("账号已被禁用")
	ErrSessionExpired     = errors.New("会话已过期")
	ErrTokenInvalid       = errors.New("令牌无效或已过期")
	ErrInvalidTransition  = errors.New("账单状态不允许该变更")
	ErrInvalidInput       = errors.New("参数无效")
	ErrLedgerUnavailable  = errors.New("订单台账暂不可用")
	ErrEmailNotConfigured = errors.New("邮件服务未配置")
	ErrSettingsMissing    = errors.New("账单设置未初始化")
	ErrCaptchaRequired    = errors.New("请输入验证码")
	ErrCaptchaInvalid     = errors.New("验证码错误")
	ErrPermissionDenied   = errors.New("没有权限执行该操作")
)

// mapDuplicateError 将唯一索引冲突转为对应的业务冲突错误
// 并发写入时唯一性预检存在时间窗，落库冲突需与预检返回同样的 409
func mapDuplicateError(err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) && !isUniqueViolation(err) {
		return err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "reference"):
		return ErrDuplicateReference
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
