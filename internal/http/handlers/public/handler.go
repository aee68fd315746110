package public

import "github.com/promolink-next/internal/provider"

// Handler 达人端接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建达人端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
