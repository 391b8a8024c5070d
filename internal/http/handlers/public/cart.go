package public

import (
	"github.com/bazar-next/internal/http/response"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCartRequest 创建购物车请求
type CreateCartRequest struct {
	UserID   *uint        `json:"user_id"`
	Discount models.Money `json:"discount"`
	Currency string       `json:"currency"`
}

// AttachItemRequest 加入商品请求
type AttachItemRequest struct {
	ProductID uint         `json:"product_id" binding:"required"`
	Price     models.Money `json:"price"`
	Tax       models.Money `json:"tax"`
	Quantity  int          `json:"quantity" binding:"required"`
}

// DiscountRequest 设置优惠请求
type DiscountRequest struct {
	Discount models.Money `json:"discount"`
}

// AssociateUserRequest 关联用户请求
type AssociateUserRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// AddressRequest 地址请求
type AddressRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Company          string `json:"company"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Country          string `json:"country"`
	State            string `json:"state"`
	City             string `json:"city"`
	Postcode         string `json:"postcode"`
	Address          string `json:"address"`
	AddressSecondary string `json:"address_secondary"`
}

// ShippingRequest 配送请求
type ShippingRequest struct {
	Driver string       `json:"driver"`
	Cost   models.Money `json:"cost"`
	Tax    models.Money `json:"tax"`
}

// CartResponse 购物车响应（金额实时计算）
type CartResponse struct {
	*models.Cart
	Total    models.Money `json:"total"`
	NetTotal models.Money `json:"net_total"`
	Tax      models.Money `json:"tax"`
}

func toCartResponse(summary *service.CartSummary) CartResponse {
	return CartResponse{
		Cart:     summary.Cart,
		Total:    summary.Total,
		NetTotal: summary.NetTotal,
		Tax:      summary.Tax,
	}
}

// CreateCart 创建购物车
func (h *Handler) CreateCart(c *gin.Context) {
	var req CreateCartRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	cart, err := h.CartService.Create(service.CreateCartInput{
		UserID:   req.UserID,
		Discount: req.Discount,
		Currency: req.Currency,
	})
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cart.ID)
}

// GetCart 获取购物车及金额
func (h *Handler) GetCart(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	h.respondCart(c, cartID)
}

// DeleteCart 删除购物车（级联删除地址、配送与明细）
func (h *Handler) DeleteCart(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CartService.Delete(cartID); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_delete_failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// AttachItem 加入商品快照
func (h *Handler) AttachItem(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AttachItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if _, err := h.CartService.Attach(service.AttachItemInput{
		CartID:    cartID,
		ProductID: req.ProductID,
		Price:     req.Price,
		Tax:       req.Tax,
		Quantity:  req.Quantity,
	}); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

// DetachItem 移除商品明细
func (h *Handler) DetachItem(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	productID, ok := parseUintParam(c, "product_id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}
	if err := h.CartService.Detach(cartID, productID); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

// SetDiscount 设置整单优惠
func (h *Handler) SetDiscount(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.SetDiscount(cartID, req.Discount); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

// SaveAddress 保存收货地址
func (h *Handler) SaveAddress(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	address := &models.Address{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Company:          req.Company,
		Email:            req.Email,
		Phone:            req.Phone,
		Country:          req.Country,
		State:            req.State,
		City:             req.City,
		Postcode:         req.Postcode,
		Address:          req.Address,
		AddressSecondary: req.AddressSecondary,
	}
	if _, err := h.CartService.SaveAddress(cartID, address); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

// SaveShipping 保存配送信息
func (h *Handler) SaveShipping(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	shipping := &models.Shipping{Driver: req.Driver, Cost: req.Cost, Tax: req.Tax}
	if _, err := h.CartService.SaveShipping(cartID, shipping); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

// AssociateUser 关联所属用户
func (h *Handler) AssociateUser(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AssociateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.AssociateUser(cartID, req.UserID); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

// DissociateUser 解除所属用户
func (h *Handler) DissociateUser(c *gin.Context) {
	cartID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CartService.DissociateUser(cartID); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, cartID)
}

func (h *Handler) respondCart(c *gin.Context, cartID uint) {
	summary, err := h.CartService.Summary(cartID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_fetch_failed")
		return
	}
	response.Success(c, toCartResponse(summary))
}
