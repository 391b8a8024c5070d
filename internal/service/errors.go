package service

import "errors"

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidCartItem  = errors.New("invalid cart item")
	ErrInvalidDiscount  = errors.New("invalid discount")
	ErrCartDeleteFailed = errors.New("cart delete failed")
	ErrCartFetchFailed  = errors.New("cart fetch failed")
	ErrCartUpdateFailed = errors.New("cart update failed")
	ErrInvalidChunk     = errors.New("invalid chunk")
	ErrChunkTooLarge    = errors.New("chunk too large")
	ErrChunkStoreFailed = errors.New("chunk store failed")
	ErrChunkListFailed  = errors.New("chunk list failed")
)
