package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/fulfillment/internal/domain/sales"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// salesRepository 销售数据仓储实现(MySQL)
// 两张表都是追加型：消费者逐条写sales，聚合器按批写sales_snapshots
type salesRepository struct {
	db *gorm.DB
}

// NewSalesRepository 创建销售数据仓储
func NewSalesRepository(db *gorm.DB) sales.Repository {
	return &salesRepository{db: db}
}

// CreateSale 插入一条销售记录
func (r *salesRepository) CreateSale(ctx context.Context, sale *sales.SaleRecord) error {
	model := &SaleModel{
		OrderID:     sale.OrderID,
		OrderItemID: sale.OrderItemID,
		ProductID:   sale.ProductID,
		CategoryID:  sale.CategoryID,
		ChannelID:   sale.ChannelID,
		SaleDate:    sale.SaleDate,
		Amount:      sale.Amount,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "插入销售记录失败")
	}

	sale.ID = model.ID
	sale.CreatedAt = model.CreatedAt
	return nil
}

// CreateSnapshot 插入一条销售快照
func (r *salesRepository) CreateSnapshot(ctx context.Context, snap *sales.Snapshot) error {
	model := &SnapshotModel{
		SnapshotDate:   snap.SnapshotDate,
		TotalSales:     snap.TotalSales,
		TotalRevenue:   snap.TotalRevenue,
		AverageSales:   snap.AverageSales,
		AverageRevenue: snap.AverageRevenue,
		TotalQuantity:  snap.TotalQuantity,
		TotalProducts:  snap.TotalProducts,
		TotalTax:       snap.TotalTax,
		TotalShipping:  snap.TotalShipping,
		TotalDiscount:  snap.TotalDiscount,
		Interval:       snap.Interval,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "插入销售快照失败")
	}

	snap.ID = model.ID
	snap.CreatedAt = model.CreatedAt
	return nil
}

// ListSales 分页查询销售记录
func (r *salesRepository) ListSales(ctx context.Context, page, pageSize int) ([]*sales.SaleRecord, int64, error) {
	var models []SaleModel
	var total int64

	query := r.db.WithContext(ctx).Model(&SaleModel{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售记录总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("sale_date DESC").Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询销售记录失败")
	}

	records := make([]*sales.SaleRecord, len(models))
	for i, m := range models {
		records[i] = &sales.SaleRecord{
			ID:          m.ID,
			OrderID:     m.OrderID,
			OrderItemID: m.OrderItemID,
			ProductID:   m.ProductID,
			CategoryID:  m.CategoryID,
			ChannelID:   m.ChannelID,
			SaleDate:    m.SaleDate,
			Amount:      m.Amount,
			CreatedAt:   m.CreatedAt,
		}
	}
	return records, total, nil
}

// ListSnapshots 分页查询销售快照
func (r *salesRepository) ListSnapshots(ctx context.Context, page, pageSize int) ([]*sales.Snapshot, int64, error) {
	var models []SnapshotModel
	var total int64

	query := r.db.WithContext(ctx).Model(&SnapshotModel{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询快照总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("snapshot_date DESC").Limit(pageSize).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询快照列表失败")
	}

	snaps := make([]*sales.Snapshot, len(models))
	for i, m := range models {
		snaps[i] = &sales.Snapshot{
			ID:             m.ID,
			SnapshotDate:   m.SnapshotDate,
			TotalSales:     m.TotalSales,
			TotalRevenue:   m.TotalRevenue,
			AverageSales:   m.AverageSales,
			AverageRevenue: m.AverageRevenue,
			TotalQuantity:  m.TotalQuantity,
			TotalProducts:  m.TotalProducts,
			TotalTax:       m.TotalTax,
			TotalShipping:  m.TotalShipping,
			TotalDiscount:  m.TotalDiscount,
			Interval:       m.Interval,
			CreatedAt:      m.CreatedAt,
		}
	}
	return snaps, total, nil
}
