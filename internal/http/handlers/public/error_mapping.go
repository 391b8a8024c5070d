package public

import (
	"errors"

	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrCartNotFound, code: response.CodeNotFound, key: "error.cart_not_found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrInvalidDiscount, code: response.CodeBadRequest, key: "error.discount_invalid"},
}

var chunkErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidChunk, code: response.CodeBadRequest, key: "error.chunk_invalid"},
	{target: service.ErrChunkTooLarge, code: response.CodeTooLarge, key: "error.chunk_too_large"},
}
