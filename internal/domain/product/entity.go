package product

import "time"

// Status 商品状态
type Status string

const (
	StatusActive   Status = "ACTIVE"   // 已上架，可售
	StatusInactive Status = "INACTIVE" // 已下架
	StatusDraft    Status = "DRAFT"    // 草稿
)

// Product 商品实体
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. 库存不在商品上，由inventory聚合单独管理（下单路径只读商品）
// 3. CategoryID/ChannelID仅保存外键，类目与渠道由外部协作方维护
type Product struct {
	ID          uint
	Name        string
	Description string
	SKU         string // 库存单位编码，全局唯一
	Price       int64  // 售价(分)
	CostPrice   int64  // 成本价(分)
	Avatar      string // 商品图URL
	Status      Status
	CategoryID  uint // 所属类目(0表示未分类)
	CreatedBy   uint // 创建人用户ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive 是否可售
// 下单校验只认ACTIVE，其他状态一律拒绝
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}
