package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/bazar-next/internal/http/handlers/shared"
	"github.com/bazar-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// RateLimitMiddleware Redis 固定窗口限流中间件，未启用 Redis 时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		count, ttl, err := hitWindow(c.Request.Context(), client, key, time.Duration(rule.WindowSeconds)*time.Second)
		if err != nil {
			handlershared.RequestLog(c).Warnw("rate_limit_unavailable", "key", key, "error", err)
			response.Error(c, response.CodeInternal, handlershared.Message("error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if count > int64(rule.MaxRequests) {
			wait := retryAfterSeconds(ttl, rule.WindowSeconds)
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.rate_limited"
			}
			c.Header("Retry-After", strconv.Itoa(wait))
			response.Error(c, response.CodeTooManyRequests, fmt.Sprintf("%s (%ds)", handlershared.Message(msgKey), wait))
			c.Abort()
			return
		}

		c.Next()
	}
}

// hitWindow 计数加一并返回窗口剩余时间；SETNX 只在窗口开始时设置过期
func hitWindow(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

func retryAfterSeconds(ttl time.Duration, windowSeconds int) int {
	wait := int(ttl / time.Second)
	if wait < 1 {
		wait = windowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return wait
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 使用 IP + 路径参数作为限流 key
func KeyByIPAndParam(param string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.TrimSpace(c.Param(param))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}
