package product

import "context"

// Repository 商品仓储接口(依赖倒置原则)
// 由domain层定义接口，infrastructure层实现
type Repository interface {
	// Create 创建商品
	Create(ctx context.Context, p *Product) error

	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindByIDs 批量查找商品
	// 下单校验用：一次查出购物车引用的全部商品，避免N+1
	// 返回map便于按ID定位；不存在的ID不在map中（由调用方判定ProductNotFound）
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)
}
