package models

import "time"

// Item 明细快照（购物车/订单 与 商品 的关联记录）
// price/tax 为加入时的快照，不随商品价格变化。
type Item struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	ItemableType string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_item_owner_product" json:"-"` // 归属类型
	ItemableID   uint      `gorm:"not null;uniqueIndex:idx_item_owner_product" json:"-"`                  // 归属ID
	ProductID    uint      `gorm:"not null;uniqueIndex:idx_item_owner_product;index" json:"product_id"`   // 商品ID
	Name         string    `gorm:"type:varchar(255);not null;default:''" json:"name"`                     // 商品名称快照
	Price        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`                    // 单价快照
	Tax          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`                      // 单件税额快照
	Quantity     int       `gorm:"not null" json:"quantity"`                                              // 数量
	CreatedAt    time.Time `json:"created_at"`                                                            // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                            // 更新时间
}

// TableName 指定表名
func (Item) TableName() string {
	return "items"
}

// Owner 返回明细归属
func (i Item) Owner() Owner {
	return Owner{Type: i.ItemableType, ID: i.ItemableID}
}

// Total 含税小计
func (i Item) Total() Money {
	return i.Price.Add(i.Tax).Times(i.Quantity)
}

// NetTotal 不含税小计
func (i Item) NetTotal() Money {
	return i.Price.Times(i.Quantity)
}

// TaxTotal 税额小计
func (i Item) TaxTotal() Money {
	return i.Tax.Times(i.Quantity)
}
