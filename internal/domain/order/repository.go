package order

import (
	"context"
)

// Repository 订单仓储接口
// Create必须在事务context中调用（与库存扣减同一事务）
type Repository interface {
	// Create 创建订单(包含订单明细)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)
}
