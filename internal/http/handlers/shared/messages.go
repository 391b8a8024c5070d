package shared

var messages = map[string]string{
	"error.bad_request":                "bad request",
	"error.internal":                   "internal server error",
	"error.rate_limited":               "too many requests, please retry later",
	"error.rate_limit_unavailable":     "rate limiter unavailable",
	"error.route_not_found":            "route not found",
	"error.cart_not_found":             "cart not found",
	"error.cart_fetch_failed":          "failed to fetch cart",
	"error.cart_update_failed":         "failed to update cart",
	"error.cart_delete_failed":         "failed to delete cart",
	"error.cart_item_invalid":          "invalid cart item",
	"error.discount_invalid":           "invalid discount",
	"error.product_not_found":          "product not found",
	"error.user_not_found":             "user not found",
	"error.chunk_invalid":              "invalid chunk",
	"error.chunk_too_large":            "chunk too large",
	"error.chunk_store_failed":         "failed to store chunk",
	"error.chunk_sweep_fetch":          "failed to fetch chunk sweep report",
	"error.chunk_sweep_failed":         "failed to clear chunks",
	"error.chunk_sweep_enqueue_failed": "failed to schedule chunk sweep",
}

// Message 返回消息 key 对应的文案，未登记的 key 原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
