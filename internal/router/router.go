package router

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	publichandlers "github.com/bazar-next/internal/http/handlers/public"
	handlershared "github.com/bazar-next/internal/http/handlers/shared"
	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = cache.Prefix()
	}
	redisClient := cache.Client()
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart_write", redisPrefix),
		WindowSeconds: cfg.Security.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	uploadRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:upload", redisPrefix),
		WindowSeconds: cfg.Security.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}
	cartWriteLimit := RateLimitMiddleware(redisClient, writeRule, KeyByIPAndParam("id"))
	uploadLimit := RateLimitMiddleware(redisClient, uploadRule, KeyByIP)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 合并完成的上传文件
	if root := strings.TrimSpace(cfg.Media.DiskRoot); root != "" {
		r.Static("/media", filepath.Join(root, "media"))
	}
	if cfg.Media.ChunkMaxSize > 0 {
		// multipart 解析内存上限与分片上限保持一致
		r.MaxMultipartMemory = cfg.Media.ChunkMaxSize
	}

	apiV1 := r.Group("/api/v1")
	{
		carts := apiV1.Group("/carts")
		{
			carts.POST("", cartWriteLimit, publicHandler.CreateCart)
			carts.GET("/:id", publicHandler.GetCart)
			carts.DELETE("/:id", cartWriteLimit, publicHandler.DeleteCart)
			carts.POST("/:id/items", cartWriteLimit, publicHandler.AttachItem)
			carts.DELETE("/:id/items/:product_id", cartWriteLimit, publicHandler.DetachItem)
			carts.PUT("/:id/discount", cartWriteLimit, publicHandler.SetDiscount)
			carts.PUT("/:id/address", cartWriteLimit, publicHandler.SaveAddress)
			carts.PUT("/:id/shipping", cartWriteLimit, publicHandler.SaveShipping)
			carts.PUT("/:id/user", cartWriteLimit, publicHandler.AssociateUser)
			carts.DELETE("/:id/user", cartWriteLimit, publicHandler.DissociateUser)
		}

		uploads := apiV1.Group("/uploads")
		{
			uploads.POST("/chunks", uploadLimit, publicHandler.UploadChunk)
			uploads.GET("/chunks/sweep", publicHandler.GetLastChunkSweep)
			uploads.POST("/chunks/sweep", uploadLimit, publicHandler.TriggerChunkSweep)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, handlershared.Message("error.route_not_found"))
	})

	return r
}
