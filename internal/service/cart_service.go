package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"gorm.io/gorm"
)

const defaultCartCurrency = "USD"

// CreateCartInput 创建购物车输入
type CreateCartInput struct {
	UserID   *uint
	Discount models.Money
	Currency string
}

// AttachItemInput 加入商品明细输入
// Price/Tax 为调用方给出的快照，不读取商品当前价格。
type AttachItemInput struct {
	CartID    uint
	ProductID uint
	Price     models.Money
	Tax       models.Money
	Quantity  int
}

// CartSummary 购物车详情及计算金额
type CartSummary struct {
	Cart     *models.Cart
	Total    models.Money
	NetTotal models.Money
	Tax      models.Money
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	ownedRepo   repository.OwnedRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, ownedRepo repository.OwnedRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		ownedRepo:   ownedRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// Create 创建购物车
func (s *CartService) Create(input CreateCartInput) (*models.Cart, error) {
	if input.Discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}
	if input.UserID != nil {
		if err := s.ensureUser(*input.UserID); err != nil {
			return nil, err
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCartCurrency
	}
	cart := &models.Cart{
		UserID:   input.UserID,
		Discount: models.NewMoneyFromDecimal(input.Discount.Decimal),
		Currency: currency,
	}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return cart, nil
}

// Get 获取购物车（含用户、地址、配送与明细）
func (s *CartService) Get(cartID uint) (*models.Cart, error) {
	if cartID == 0 {
		return nil, ErrCartNotFound
	}
	cart, err := s.cartRepo.GetWithRelations(cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartFetchFailed, err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// Summary 获取购物车及实时计算的金额，金额不落库
func (s *CartService) Summary(cartID uint) (*CartSummary, error) {
	cart, err := s.Get(cartID)
	if err != nil {
		return nil, err
	}
	return &CartSummary{
		Cart:     cart,
		Total:    cart.Total(),
		NetTotal: cart.NetTotal(),
		Tax:      cart.TaxTotal(),
	}, nil
}

// Total 含税合计
func (s *CartService) Total(cartID uint) (models.Money, error) {
	cart, err := s.Get(cartID)
	if err != nil {
		return models.Money{}, err
	}
	return cart.Total(), nil
}

// NetTotal 不含税合计
func (s *CartService) NetTotal(cartID uint) (models.Money, error) {
	cart, err := s.Get(cartID)
	if err != nil {
		return models.Money{}, err
	}
	return cart.NetTotal(), nil
}

// Attach 写入商品明细快照
func (s *CartService) Attach(input AttachItemInput) (*models.Item, error) {
	if input.ProductID == 0 || input.Quantity <= 0 || input.Price.IsNegative() || input.Tax.IsNegative() {
		return nil, ErrInvalidCartItem
	}
	cart, err := s.requireCart(input.CartID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartFetchFailed, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	now := time.Now()
	item := &models.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     models.NewMoneyFromDecimal(input.Price.Decimal),
		Tax:       models.NewMoneyFromDecimal(input.Tax.Decimal),
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := models.OwnerOf(cart)
	if err := s.ownedRepo.UpsertItem(owner, item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	// 合并后的数量以库中记录为准
	stored, err := s.ownedRepo.GetItem(owner, product.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartFetchFailed, err)
	}
	if stored == nil {
		return nil, ErrCartUpdateFailed
	}
	return stored, nil
}

// Detach 删除商品明细
func (s *CartService) Detach(cartID, productID uint) error {
	if productID == 0 {
		return ErrInvalidCartItem
	}
	cart, err := s.requireCart(cartID)
	if err != nil {
		return err
	}
	if _, err := s.ownedRepo.DeleteItem(models.OwnerOf(cart), productID); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return nil
}

// SetDiscount 设置整单优惠
func (s *CartService) SetDiscount(cartID uint, discount models.Money) error {
	if discount.IsNegative() {
		return ErrInvalidDiscount
	}
	cart, err := s.requireCart(cartID)
	if err != nil {
		return err
	}
	cart.Discount = models.NewMoneyFromDecimal(discount.Decimal)
	cart.UpdatedAt = time.Now()
	if err := s.cartRepo.Update(cart); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return nil
}

// AssociateUser 关联所属用户
func (s *CartService) AssociateUser(cartID, userID uint) error {
	if _, err := s.requireCart(cartID); err != nil {
		return err
	}
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	if err := s.cartRepo.SetUser(cartID, &userID); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return nil
}

// DissociateUser 解除所属用户
func (s *CartService) DissociateUser(cartID uint) error {
	if _, err := s.requireCart(cartID); err != nil {
		return err
	}
	if err := s.cartRepo.SetUser(cartID, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return nil
}

// SaveAddress 保存收货地址（一对一）
func (s *CartService) SaveAddress(cartID uint, address *models.Address) (*models.Address, error) {
	if address == nil {
		return nil, ErrInvalidCartItem
	}
	cart, err := s.requireCart(cartID)
	if err != nil {
		return nil, err
	}
	if err := s.ownedRepo.SaveAddress(models.OwnerOf(cart), address); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return address, nil
}

// SaveShipping 保存配送信息（一对一）
func (s *CartService) SaveShipping(cartID uint, shipping *models.Shipping) (*models.Shipping, error) {
	if shipping == nil || shipping.Cost.IsNegative() || shipping.Tax.IsNegative() {
		return nil, ErrInvalidCartItem
	}
	cart, err := s.requireCart(cartID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(shipping.Driver) == "" {
		shipping.Driver = "local-pickup"
	}
	if err := s.ownedRepo.SaveShipping(models.OwnerOf(cart), shipping); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartUpdateFailed, err)
	}
	return shipping, nil
}

// Delete 在同一事务内删除购物车及其地址、配送与全部明细
func (s *CartService) Delete(cartID uint) error {
	cart, err := s.requireCart(cartID)
	if err != nil {
		return err
	}
	owner := models.OwnerOf(cart)
	err = s.cartRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.ownedRepo.WithTx(tx).DeleteByOwner(owner); err != nil {
			return err
		}
		affected, err := s.cartRepo.WithTx(tx).Delete(cart.ID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrCartNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCartDeleteFailed, err)
	}
	return nil
}

func (s *CartService) requireCart(cartID uint) (*models.Cart, error) {
	if cartID == 0 {
		return nil, ErrCartNotFound
	}
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartFetchFailed, err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) ensureUser(userID uint) error {
	if userID == 0 || s.userRepo == nil {
		return ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCartFetchFailed, err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
