package sales

import "time"

// SaleRecord 销售记录
// 粒度是"售出一件"而非"订单一行"：一行买3件会产生3条记录。
// 由销售事件消费者从broker消息异步落库，与订单事务解耦，
// sales表对orders表是最终一致的。
type SaleRecord struct {
	ID          uint
	OrderID     uint
	OrderItemID uint
	ProductID   uint
	CategoryID  uint // 0表示商品未分类
	ChannelID   uint
	SaleDate    time.Time
	Amount      int64 // 单件金额(分)
	CreatedAt   time.Time
}

// SnapshotIntervalBatch 快照的固定聚合窗口标识
// 固定按10条订单事件为一批，不做时间窗口
const SnapshotIntervalBatch = "batch-10"

// Snapshot 销售快照（固定批量的聚合统计，只增不改）
type Snapshot struct {
	ID             uint
	SnapshotDate   time.Time
	TotalSales     int   // 批内订单数
	TotalRevenue   int64 // Σ total_amount(分)
	AverageSales   int64 // 历史字段，与TotalSales同值落库
	AverageRevenue int64 // TotalRevenue / TotalSales(分)
	TotalQuantity  int   // Σ 明细数量
	TotalProducts  int   // 去重商品数
	TotalTax       int64
	TotalShipping  int64
	TotalDiscount  int64
	Interval       string // 固定为batch-10
	CreatedAt      time.Time
}
