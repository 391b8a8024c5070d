package models

// 多态归属类型
const (
	OwnerTypeCart  = "cart"
	OwnerTypeOrder = "order"
)

// Ownable 可拥有地址、配送与明细的实体
type Ownable interface {
	OwnerType() string
	OwnerKey() uint
}

// Owner 显式的 (类型, ID) 归属对
type Owner struct {
	Type string
	ID   uint
}

// OwnerOf 取实体的归属对
func OwnerOf(o Ownable) Owner {
	if o == nil {
		return Owner{}
	}
	return Owner{Type: o.OwnerType(), ID: o.OwnerKey()}
}

// Valid 判断归属对是否完整
func (o Owner) Valid() bool {
	return o.Type != "" && o.ID != 0
}
