package public

import "github.com/bazar-next/internal/provider"

// Handler 前台/公开接口处理器入口
// 说明：购物车与分片上传接口均为匿名访问。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
