package sales

import "context"

// Repository 销售数据仓储接口
// CreateSale/CreateSnapshot各自在独立事务中执行（由消费者开启）
type Repository interface {
	// CreateSale 插入一条销售记录
	CreateSale(ctx context.Context, sale *SaleRecord) error

	// CreateSnapshot 插入一条销售快照
	CreateSnapshot(ctx context.Context, snap *Snapshot) error

	// ListSales 分页查询销售记录
	ListSales(ctx context.Context, page, pageSize int) ([]*SaleRecord, int64, error)

	// ListSnapshots 分页查询销售快照
	ListSnapshots(ctx context.Context, page, pageSize int) ([]*Snapshot, int64, error)
}
