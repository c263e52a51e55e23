package inventory

import "context"

// Repository 库存仓储接口
// 扣减相关方法必须在事务context中调用（tx经context传递）
type Repository interface {
	// Create 创建库存记录（同时写一条Restock流水）
	Create(ctx context.Context, inv *Inventory, actor uint) error

	// FindByProductID 查询商品当前库存（普通读，消费者低库存复查用）
	FindByProductID(ctx context.Context, productID uint) (*Inventory, error)

	// FindByProductIDs 批量查询（下单校验的第一次批量读）
	// 缺少库存行的商品不在map中，调用方按"可用=0"处理
	FindByProductIDs(ctx context.Context, productIDs []uint) (map[uint]*Inventory, error)

	// LockByProductID 行锁查询（SELECT ... FOR UPDATE）
	// 必须在事务中调用；锁住读-校验-扣减的整个窗口
	LockByProductID(ctx context.Context, productID uint) (*Inventory, error)

	// Deduct 扣减库存并写流水
	// 以条件UPDATE（quantity = quantity - ? WHERE quantity >= ?）执行，
	// RowsAffected=0时返回ErrInsufficientStock；必须在事务中调用
	Deduct(ctx context.Context, productID uint, quantity int, actor uint) error

	// Restock 补货并写流水
	Restock(ctx context.Context, productID uint, quantity int, actor uint) error

	// ListLowStock 查询库存≤阈值的记录
	ListLowStock(ctx context.Context, threshold int) ([]*Inventory, error)
}
