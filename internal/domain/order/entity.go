package order

import (
	"time"
)

// Status 订单状态
// 管道内订单一经提交即不可变，状态流转由外部履约流程负责
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order是聚合根，OrderItem是子实体，必须在同一事务中创建
// 2. 四个金额字段各自独立计算并落库（不在读取时推导），
//    下游快照聚合直接累加这些快照值
// 3. 提交后不可变：管道的所有消费者都只读订单
type Order struct {
	ID              uint
	OrderNo         string // 订单号(业务主键，日期+随机后缀)
	ChannelID       uint   // 销售渠道ID（渠道本身由外部协作方维护）
	OrderDate       time.Time
	TotalAmount     int64 // 商品总额(分) = Σ(单价×数量)
	TaxAmount       int64 // 税费(分)，定价策略求值
	ShippingAmount  int64 // 运费(分)
	DiscountAmount  int64 // 折扣(分)
	Status          Status
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	BillingAddress  string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem 订单明细项
// UnitPrice/Subtotal记录下单时的价格快照，防止商家改价后历史订单金额变化
type OrderItem struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Quantity  int
	UnitPrice int64 // 下单时单价(分)
	Subtotal  int64 // 单价×数量(分)
}

// NewOrder 创建新订单(工厂方法)
func NewOrder(orderNo string, channelID uint, items []OrderItem, totals Totals, meta CustomerInfo) *Order {
	now := time.Now()
	return &Order{
		OrderNo:         orderNo,
		ChannelID:       channelID,
		OrderDate:       now,
		TotalAmount:     totals.Amount,
		TaxAmount:       totals.Tax,
		ShippingAmount:  totals.Shipping,
		DiscountAmount:  totals.Discount,
		Status:          StatusPending,
		CustomerName:    meta.Name,
		CustomerEmail:   meta.Email,
		ShippingAddress: meta.ShippingAddress,
		BillingAddress:  meta.BillingAddress,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CustomerInfo 下单客户信息
type CustomerInfo struct {
	Name            string
	Email           string
	ShippingAddress string
	BillingAddress  string
}

// TotalQuantity 订单内商品总件数
func (o *Order) TotalQuantity() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
