package models

import "time"

// Shipping 配送表（多态归属，一个归属方至多一条）
type Shipping struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                              // 主键
	ShippableType string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_shipping_owner" json:"-"` // 归属类型
	ShippableID   uint      `gorm:"not null;uniqueIndex:idx_shipping_owner" json:"-"`                  // 归属ID
	Driver        string    `gorm:"type:varchar(50);not null;default:'local-pickup'" json:"driver"`    // 配送方式
	Cost          Money     `gorm:"type:decimal(20,2);not null;default:0" json:"cost"`                 // 运费
	Tax           Money     `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`                  // 运费税额
	CreatedAt     time.Time `json:"created_at"`                                                        // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                                        // 更新时间
}

// TableName 指定表名
func (Shipping) TableName() string {
	return "shippings"
}

// Owner 返回配送归属
func (s Shipping) Owner() Owner {
	return Owner{Type: s.ShippableType, ID: s.ShippableID}
}
