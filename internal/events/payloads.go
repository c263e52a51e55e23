// Package events 实现订单履约的异步事件管道
//
// 管道拓扑：
//
//	下单事务提交 → Emitter → broker(order.placed / sale.recorded)
//	  order.placed → OrderConsumer → Redis频道(incoming-order)
//	                               → Redis工作队列(快照聚合)
//	                               → 低库存复查 → Redis频道(low-stock)
//	  sale.recorded → SaleConsumer → sales表(逐条落库)
//	  工作队列 → Aggregator → sales_snapshots表(固定批量)
//
// 一致性模型：订单事务是唯一的强一致边界；事务提交后的所有环节
// 都是最终一致的，单个环节失败只影响自己的下游。
package events

import "time"

// OrderPlacedEvent 订单创建事件
// payload即订单完整快照：下游消费者（含管道外的订阅方）不需要回查数据库
type OrderPlacedEvent struct {
	EventID         string             `json:"event_id"`
	OrderID         uint               `json:"order_id"`
	OrderNo         string             `json:"order_no"`
	ChannelID       uint               `json:"channel_id"`
	OrderDate       time.Time          `json:"order_date"`
	TotalAmount     int64              `json:"total_amount"`
	TaxAmount       int64              `json:"tax_amount"`
	ShippingAmount  int64              `json:"shipping_amount"`
	DiscountAmount  int64              `json:"discount_amount"`
	Status          string             `json:"status"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []OrderItemPayload `json:"items"`
}

// OrderItemPayload 事件内的订单明细
type OrderItemPayload struct {
	OrderItemID uint  `json:"order_item_id"`
	ProductID   uint  `json:"product_id"`
	Quantity    int   `json:"quantity"`
	UnitPrice   int64 `json:"unit_price"`
	Subtotal    int64 `json:"subtotal"`
}

// SaleEvent 销售事件
// 粒度是"售出一件"：一行买3件发3条，每条Amount=单价
type SaleEvent struct {
	EventID     string    `json:"event_id"`
	OrderID     uint      `json:"order_id"`
	OrderItemID uint      `json:"order_item_id"`
	ProductID   uint      `json:"product_id"`
	CategoryID  uint      `json:"category_id"`
	ChannelID   uint      `json:"channel_id"`
	SaleDate    time.Time `json:"sale_date"`
	Amount      int64     `json:"amount"`
}

// LowStockAlert 低库存告警（发往Redis低库存频道，SSE桥原样转发）
type LowStockAlert struct {
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	OrderNo   string    `json:"order_no"`
	AlertedAt time.Time `json:"alerted_at"`
}
