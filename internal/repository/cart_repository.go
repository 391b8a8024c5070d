package repository

import (
	"errors"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	Create(cart *models.Cart) error
	GetByID(id uint) (*models.Cart, error)
	GetWithRelations(id uint) (*models.Cart, error)
	Update(cart *models.Cart) error
	SetUser(id uint, userID *uint) error
	Delete(id uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCartRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Omit("User", "Address", "Shipping", "Items").Create(cart).Error
}

// GetByID 获取购物车（不含关联）
func (r *GormCartRepository) GetByID(id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetWithRelations 获取购物车及其用户、地址、配送与明细
func (r *GormCartRepository) GetWithRelations(id uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.
		Preload("User").
		Preload("Address").
		Preload("Shipping").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		First(&cart, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Update 更新购物车基础字段
func (r *GormCartRepository) Update(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	return r.db.Model(&models.Cart{ID: cart.ID}).Updates(map[string]interface{}{
		"discount":   cart.Discount,
		"currency":   cart.Currency,
		"updated_at": cart.UpdatedAt,
	}).Error
}

// SetUser 关联或解除所属用户
func (r *GormCartRepository) SetUser(id uint, userID *uint) error {
	return r.db.Model(&models.Cart{ID: id}).Update("user_id", userID).Error
}

// Delete 物理删除购物车本身，关联数据由调用方在同一事务内清理
func (r *GormCartRepository) Delete(id uint) (int64, error) {
	result := r.db.Delete(&models.Cart{}, id)
	return result.RowsAffected, result.Error
}
