package inventory

import (
	"context"
	"errors"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
	"github.com/xiebiao/fulfillment/internal/domain/product"
)

// Transactor 事务边界端口（*mysql.TxManager实现）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ManageInventoryUseCase 库存管理用例（建档/补货/低库存查询）
// 建档与补货走同一个入口：商品没有库存行时建档，已有则累加补货，
// 两种路径都会写一条Restock流水。
// 与下单扣减一样，数量变更和流水必须在同一事务内：要么都落库，
// 要么都回滚，不允许出现"改了数量没有流水"的记录。
type ManageInventoryUseCase struct {
	inventoryRepo inventory.Repository
	productRepo   product.Repository
	txManager     Transactor
}

// NewManageInventoryUseCase 创建库存管理用例
func NewManageInventoryUseCase(
	inventoryRepo inventory.Repository,
	productRepo product.Repository,
	txManager Transactor,
) *ManageInventoryUseCase {
	return &ManageInventoryUseCase{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		txManager:     txManager,
	}
}

// RestockRequest 补货请求DTO
type RestockRequest struct {
	UserID    uint // 操作人(从JWT提取)，写入流水的changed_by
	ProductID uint
	Quantity  int
}

// InventoryResponse 库存响应DTO
type InventoryResponse struct {
	ID              uint   `json:"id"`
	ProductID       uint   `json:"product_id"`
	Quantity        int    `json:"quantity"`
	LastRestockDate string `json:"last_restock_date"`
}

// Restock 执行建档/补货
//
// 事务内先FOR UPDATE锁行再累加：并发的下单扣减同样持这把锁，
// 保证流水的previous/new快照与实际变更一致
func (uc *ManageInventoryUseCase) Restock(ctx context.Context, req RestockRequest) (*InventoryResponse, error) {
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	// 商品必须存在（库存行不能指向幽灵商品）
	if _, err := uc.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	var result *inventory.Inventory
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		_, err := uc.inventoryRepo.LockByProductID(txCtx, req.ProductID)
		if err != nil {
			if !errors.Is(err, inventory.ErrInventoryNotFound) {
				return err
			}
			// 建档路径
			created := &inventory.Inventory{ProductID: req.ProductID, Quantity: req.Quantity}
			if err := uc.inventoryRepo.Create(txCtx, created, req.UserID); err != nil {
				return err
			}
			result = created
			return nil
		}

		// 补货路径
		if err := uc.inventoryRepo.Restock(txCtx, req.ProductID, req.Quantity, req.UserID); err != nil {
			return err
		}
		result, err = uc.inventoryRepo.FindByProductID(txCtx, req.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return toInventoryResponse(result), nil
}

// ListLowStock 查询库存≤阈值的记录
func (uc *ManageInventoryUseCase) ListLowStock(ctx context.Context, threshold int) ([]*InventoryResponse, error) {
	items, err := uc.inventoryRepo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}

	result := make([]*InventoryResponse, len(items))
	for i, inv := range items {
		result[i] = toInventoryResponse(inv)
	}
	return result, nil
}

// toInventoryResponse 领域实体 → 应用层DTO
func toInventoryResponse(inv *inventory.Inventory) *InventoryResponse {
	return &InventoryResponse{
		ID:              inv.ID,
		ProductID:       inv.ProductID,
		Quantity:        inv.Quantity,
		LastRestockDate: inv.LastRestockDate.Format("2006-01-02 15:04:05"),
	}
}
