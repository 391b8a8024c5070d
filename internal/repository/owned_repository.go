package repository

import (
	"errors"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnedRepository 多态归属数据（地址、配送、明细）访问接口
type OwnedRepository interface {
	GetAddress(owner models.Owner) (*models.Address, error)
	SaveAddress(owner models.Owner, address *models.Address) error
	GetShipping(owner models.Owner) (*models.Shipping, error)
	SaveShipping(owner models.Owner, shipping *models.Shipping) error
	ListItems(owner models.Owner) ([]models.Item, error)
	GetItem(owner models.Owner, productID uint) (*models.Item, error)
	UpsertItem(owner models.Owner, item *models.Item) error
	DeleteItem(owner models.Owner, productID uint) (int64, error)
	DeleteByOwner(owner models.Owner) error
	CountByOwner(owner models.Owner) (OwnedCounts, error)
	WithTx(tx *gorm.DB) OwnedRepository
}

// OwnedCounts 归属方名下的记录数量
type OwnedCounts struct {
	Addresses int64
	Shippings int64
	Items     int64
}

// GormOwnedRepository GORM 实现
type GormOwnedRepository struct {
	db *gorm.DB
}

// NewOwnedRepository 创建多态归属仓库
func NewOwnedRepository(db *gorm.DB) *GormOwnedRepository {
	return &GormOwnedRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOwnedRepository) WithTx(tx *gorm.DB) OwnedRepository {
	if tx == nil {
		return r
	}
	return &GormOwnedRepository{db: tx}
}

// GetAddress 获取归属方地址
func (r *GormOwnedRepository) GetAddress(owner models.Owner) (*models.Address, error) {
	var address models.Address
	err := r.db.Where("addressable_type = ? AND addressable_id = ?", owner.Type, owner.ID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// SaveAddress 保存归属方地址（一对一，已存在则覆盖）
func (r *GormOwnedRepository) SaveAddress(owner models.Owner, address *models.Address) error {
	if address == nil {
		return nil
	}
	existing, err := r.GetAddress(owner)
	if err != nil {
		return err
	}
	address.AddressableType = owner.Type
	address.AddressableID = owner.ID
	if existing == nil {
		address.ID = 0
		return r.db.Create(address).Error
	}
	address.ID = existing.ID
	address.CreatedAt = existing.CreatedAt
	return r.db.Save(address).Error
}

// GetShipping 获取归属方配送信息
func (r *GormOwnedRepository) GetShipping(owner models.Owner) (*models.Shipping, error) {
	var shipping models.Shipping
	err := r.db.Where("shippable_type = ? AND shippable_id = ?", owner.Type, owner.ID).First(&shipping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipping, nil
}

// SaveShipping 保存归属方配送信息（一对一，已存在则覆盖）
func (r *GormOwnedRepository) SaveShipping(owner models.Owner, shipping *models.Shipping) error {
	if shipping == nil {
		return nil
	}
	existing, err := r.GetShipping(owner)
	if err != nil {
		return err
	}
	shipping.ShippableType = owner.Type
	shipping.ShippableID = owner.ID
	if existing == nil {
		shipping.ID = 0
		return r.db.Create(shipping).Error
	}
	shipping.ID = existing.ID
	shipping.CreatedAt = existing.CreatedAt
	return r.db.Save(shipping).Error
}

// ListItems 获取归属方明细
func (r *GormOwnedRepository) ListItems(owner models.Owner) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Where("itemable_type = ? AND itemable_id = ?", owner.Type, owner.ID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 获取归属方的某个商品明细
func (r *GormOwnedRepository) GetItem(owner models.Owner, productID uint) (*models.Item, error) {
	var item models.Item
	err := r.db.Where("itemable_type = ? AND itemable_id = ? AND product_id = ?", owner.Type, owner.ID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpsertItem 写入明细快照
// 同一商品重复加入时累加数量，并以最新的价格/税额快照为准。
func (r *GormOwnedRepository) UpsertItem(owner models.Owner, item *models.Item) error {
	if item == nil {
		return nil
	}
	item.ID = 0
	item.ItemableType = owner.Type
	item.ItemableID = owner.ID
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "itemable_type"}, {Name: "itemable_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("items.quantity + excluded.quantity"),
			"price":      gorm.Expr("excluded.price"),
			"tax":        gorm.Expr("excluded.tax"),
			"name":       gorm.Expr("excluded.name"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(item).Error
}

// DeleteItem 删除归属方的某个商品明细
func (r *GormOwnedRepository) DeleteItem(owner models.Owner, productID uint) (int64, error) {
	result := r.db.
		Where("itemable_type = ? AND itemable_id = ? AND product_id = ?", owner.Type, owner.ID, productID).
		Delete(&models.Item{})
	return result.RowsAffected, result.Error
}

// DeleteByOwner 删除归属方名下的地址、配送与全部明细
func (r *GormOwnedRepository) DeleteByOwner(owner models.Owner) error {
	if !owner.Valid() {
		return errors.New("owner is invalid")
	}
	if err := r.db.Where("addressable_type = ? AND addressable_id = ?", owner.Type, owner.ID).Delete(&models.Address{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("shippable_type = ? AND shippable_id = ?", owner.Type, owner.ID).Delete(&models.Shipping{}).Error; err != nil {
		return err
	}
	return r.db.Where("itemable_type = ? AND itemable_id = ?", owner.Type, owner.ID).Delete(&models.Item{}).Error
}

// CountByOwner 统计归属方名下的记录数量
func (r *GormOwnedRepository) CountByOwner(owner models.Owner) (OwnedCounts, error) {
	var counts OwnedCounts
	if err := r.db.Model(&models.Address{}).Where("addressable_type = ? AND addressable_id = ?", owner.Type, owner.ID).Count(&counts.Addresses).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&models.Shipping{}).Where("shippable_type = ? AND shippable_id = ?", owner.Type, owner.ID).Count(&counts.Shippings).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&models.Item{}).Where("itemable_type = ? AND itemable_id = ?", owner.Type, owner.ID).Count(&counts.Items).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
