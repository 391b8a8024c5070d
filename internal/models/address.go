package models

import "time"

// Address 地址表（多态归属，一个归属方至多一条）
type Address struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                             // 主键
	AddressableType  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_address_owner" json:"-"` // 归属类型
	AddressableID    uint      `gorm:"not null;uniqueIndex:idx_address_owner" json:"-"`                  // 归属ID
	FirstName        string    `gorm:"type:varchar(100);default:''" json:"first_name"`                   // 名
	LastName         string    `gorm:"type:varchar(100);default:''" json:"last_name"`                    // 姓
	Company          string    `gorm:"type:varchar(255);default:''" json:"company"`                      // 公司
	Email            string    `gorm:"type:varchar(255);default:''" json:"email"`                        // 邮箱
	Phone            string    `gorm:"type:varchar(50);default:''" json:"phone"`                         // 电话
	Country          string    `gorm:"type:varchar(2);default:''" json:"country"`                        // 国家代码
	State            string    `gorm:"type:varchar(100);default:''" json:"state"`                        // 州/省
	City             string    `gorm:"type:varchar(100);default:''" json:"city"`                         // 城市
	Postcode         string    `gorm:"type:varchar(20);default:''" json:"postcode"`                      // 邮编
	Address          string    `gorm:"type:varchar(255);default:''" json:"address"`                      // 地址第一行
	AddressSecondary string    `gorm:"type:varchar(255);default:''" json:"address_secondary"`            // 地址第二行
	CreatedAt        time.Time `json:"created_at"`                                                       // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                       // 更新时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}

// Owner 返回地址归属
func (a Address) Owner() Owner {
	return Owner{Type: a.AddressableType, ID: a.AddressableID}
}

// Name 返回完整姓名
func (a Address) Name() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}
