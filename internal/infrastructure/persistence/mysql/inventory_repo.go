package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// inventoryRepository 库存仓储实现(MySQL)
// 写路径的并发安全靠两道保险:
// 1. LockByProductID的SELECT FOR UPDATE锁住读-校验-扣减窗口
// 2. Deduct的条件UPDATE(quantity >= ?)兜底，RowsAffected=0即库存不足
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

// Create 创建库存记录（同时写一条Restock流水）
func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory, actor uint) error {
	db := getDB(ctx, r.db)

	model := &InventoryModel{
		ProductID:       inv.ProductID,
		Quantity:        inv.Quantity,
		LastRestockDate: time.Now(),
	}
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "该商品已有库存记录")
		}
		return apperrors.Wrap(err, "创建库存记录失败")
	}

	history := &InventoryHistoryModel{
		InventoryID:      model.ID,
		PreviousQuantity: 0,
		NewQuantity:      model.Quantity,
		ChangeReason:     inventory.ReasonRestock,
		ChangedBy:        actor,
	}
	if err := db.Create(history).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}

	inv.ID = model.ID
	inv.LastRestockDate = model.LastRestockDate
	inv.CreatedAt = model.CreatedAt
	inv.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByProductID 查询商品当前库存（普通读，事务context内走事务连接）
func (r *inventoryRepository) FindByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error) {
	var model InventoryModel
	err := getDB(ctx, r.db).Where("product_id = ?", productID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "查询库存失败")
	}

	return toInventoryEntity(&model), nil
}

// FindByProductIDs 批量查询库存
// 缺少库存行的商品不出现在结果map中，调用方按"可用=0"处理
func (r *inventoryRepository) FindByProductIDs(ctx context.Context, productIDs []uint) (map[uint]*inventory.Inventory, error) {
	if len(productIDs) == 0 {
		return map[uint]*inventory.Inventory{}, nil
	}

	var models []InventoryModel
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询库存失败")
	}

	result := make(map[uint]*inventory.Inventory, len(models))
	for i := range models {
		result[models[i].ProductID] = toInventoryEntity(&models[i])
	}
	return result, nil
}

// LockByProductID 悲观锁查询库存(SELECT ... FOR UPDATE)
// 必须在事务context中调用，否则锁在语句结束时即释放，起不到保护作用
func (r *inventoryRepository) LockByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error) {
	var model InventoryModel
	db := getDB(ctx, r.db)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "锁定库存失败")
	}

	return toInventoryEntity(&model), nil
}

// Deduct 扣减库存并写流水
// UPDATE inventories SET quantity = quantity - ? WHERE product_id = ? AND quantity >= ?
// RowsAffected=0说明并发下被人抢先扣完，返回库存不足
func (r *inventoryRepository) Deduct(ctx context.Context, productID uint, quantity int, actor uint) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	db := getDB(ctx, r.db)

	// 先读当前数量，流水需要previous/new快照
	var model InventoryModel
	if err := db.Where("product_id = ?", productID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.ErrInventoryNotFound
		}
		return apperrors.Wrap(err, "查询库存失败")
	}

	result := db.Model(&InventoryModel{}).
		Where("product_id = ?", productID).
		Where("quantity >= ?", quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "扣减库存失败")
	}
	if result.RowsAffected == 0 {
		return inventory.ErrInsufficientStock
	}

	history := &InventoryHistoryModel{
		InventoryID:      model.ID,
		PreviousQuantity: model.Quantity,
		NewQuantity:      model.Quantity - quantity,
		ChangeReason:     inventory.ReasonOrderPlaced,
		ChangedBy:        actor,
	}
	if err := db.Create(history).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}

	return nil
}

// Restock 补货并写流水
// 与Deduct一样必须在事务context中调用（调用方先LockByProductID），
// 数量变更和流水在同一事务内提交
func (r *inventoryRepository) Restock(ctx context.Context, productID uint, quantity int, actor uint) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	db := getDB(ctx, r.db)

	var model InventoryModel
	if err := db.Where("product_id = ?", productID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return inventory.ErrInventoryNotFound
		}
		return apperrors.Wrap(err, "查询库存失败")
	}

	result := db.Model(&InventoryModel{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"quantity":          gorm.Expr("quantity + ?", quantity),
			"last_restock_date": time.Now(),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "补货失败")
	}

	history := &InventoryHistoryModel{
		InventoryID:      model.ID,
		PreviousQuantity: model.Quantity,
		NewQuantity:      model.Quantity + quantity,
		ChangeReason:     inventory.ReasonRestock,
		ChangedBy:        actor,
	}
	if err := db.Create(history).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}

	return nil
}

// ListLowStock 查询库存≤阈值的记录
func (r *inventoryRepository) ListLowStock(ctx context.Context, threshold int) ([]*inventory.Inventory, error) {
	var models []InventoryModel
	err := r.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("quantity ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询低库存列表失败")
	}

	result := make([]*inventory.Inventory, len(models))
	for i := range models {
		result[i] = toInventoryEntity(&models[i])
	}
	return result, nil
}

// toInventoryEntity GORM模型 → 领域实体
func toInventoryEntity(model *InventoryModel) *inventory.Inventory {
	return &inventory.Inventory{
		ID:              model.ID,
		ProductID:       model.ProductID,
		Quantity:        model.Quantity,
		LastRestockDate: model.LastRestockDate,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
