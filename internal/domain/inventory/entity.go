package inventory

import "time"

// Inventory 库存实体
// 设计说明:
// 1. 每个商品一行，Quantity是当前在库数量
// 2. 写路径上唯一被并发修改的共享资源：读-校验-扣减必须在行锁
//    （SELECT FOR UPDATE）保护下进行，否则并发下单会把库存打成负数
// 3. 任何数量变更都必须伴随一条History流水，禁止裸UPDATE
type Inventory struct {
	ID              uint
	ProductID       uint
	Quantity        int
	LastRestockDate time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanDeduct 判断是否可以扣减
func (i *Inventory) CanDeduct(quantity int) bool {
	return quantity > 0 && i.Quantity >= quantity
}

// IsLowStock 是否达到低库存告警线（≤阈值即触发）
func (i *Inventory) IsLowStock(threshold int) bool {
	return i.Quantity <= threshold
}

// 流水原因常量
const (
	ReasonOrderPlaced = "Order placed" // 下单扣减
	ReasonRestock     = "Restock"      // 补货
)

// History 库存变更流水（只增不改）
// 每次库存变更恰好产生一条：previous_quantity - new_quantity = 本次扣减量
type History struct {
	ID               uint
	InventoryID      uint
	PreviousQuantity int
	NewQuantity      int
	ChangeReason     string
	ChangedBy        uint // 操作人（登录用户ID）
	CreatedAt        time.Time
}
