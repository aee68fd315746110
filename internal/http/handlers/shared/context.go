package shared

import (
	"github.com/promolink-next/internal/http/response"
	"github.com/promolink-next/internal/models"

	"github.com/gin-gonic/gin"
)

// GetAdminID 从上下文读取当前管理员 ID
func GetAdminID(c *gin.Context) (uint, bool) {
	return getContextUint(c, "admin_id")
}

// GetInfluencer 从上下文读取当前达人
func GetInfluencer(c *gin.Context) (*models.Influencer, bool) {
	value, exists := c.Get("influencer")
	if !exists {
		response.Unauthorized(c, "请先登录")
		return nil, false
	}
	influencer, ok := value.(*models.Influencer)
	if !ok || influencer == nil {
		response.Error(c, response.CodeInternal, "会话状态异常")
		return nil, false
	}
	return influencer, true
}

// GetSessionToken 从上下文读取当前会话令牌
func GetSessionToken(c *gin.Context) string {
	if value, ok := c.Get("session_token"); ok {
		if token, ok := value.(string); ok {
			return token
		}
	}
	return ""
}

func getContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, "请先登录")
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			response.BadRequest(c, "参数无效")
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			response.BadRequest(c, "参数无效")
			return 0, false
		}
		return uint(v), true
	default:
		response.Error(c, response.CodeInternal, "会话状态异常")
		return 0, false
	}
}
