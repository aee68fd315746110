package admin

import (
	handlershared "github.com/promolink-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetAdminID(c)
}

func isSuperAdmin(c *gin.Context) bool {
	value, ok := c.Get("admin_is_super")
	if !ok {
		return false
	}
	isSuper, ok := value.(bool)
	return ok && isSuper
}
