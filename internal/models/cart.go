package models

import "time"

// Cart 购物车表
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	UserID    *uint     `gorm:"index" json:"user_id"`                                    // 所属用户（可空，游客购物车）
	Discount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`   // 整单优惠
	Currency  string    `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"` // 币种
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                              // 更新时间

	// 关联
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`                                // 所属用户
	Address  *Address  `gorm:"polymorphic:Addressable;polymorphicValue:cart" json:"address,omitempty"` // 收货地址
	Shipping *Shipping `gorm:"polymorphic:Shippable;polymorphicValue:cart" json:"shipping,omitempty"`  // 配送信息
	Items    []Item    `gorm:"polymorphic:Itemable;polymorphicValue:cart" json:"items,omitempty"`      // 商品明细快照
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// OwnerType 多态归属类型
func (Cart) OwnerType() string {
	return OwnerTypeCart
}

// OwnerKey 多态归属 ID
func (c Cart) OwnerKey() uint {
	return c.ID
}

// Total 含税合计：Σ(price+tax)×quantity − discount
func (c Cart) Total() Money {
	sum := ZeroMoney()
	for _, item := range c.Items {
		sum = sum.Add(item.Total())
	}
	return sum.Sub(c.Discount)
}

// NetTotal 不含税合计：Σ price×quantity − discount
func (c Cart) NetTotal() Money {
	sum := ZeroMoney()
	for _, item := range c.Items {
		sum = sum.Add(item.NetTotal())
	}
	return sum.Sub(c.Discount)
}

// TaxTotal 税额合计：Σ tax×quantity
func (c Cart) TaxTotal() Money {
	sum := ZeroMoney()
	for _, item := range c.Items {
		sum = sum.Add(item.TaxTotal())
	}
	return sum
}
