package sales

import (
	"context"

	"github.com/xiebiao/fulfillment/internal/domain/sales"
)

// QuerySalesUseCase 销售数据查询用例
// 只读：销售记录和快照都由管道异步生成，这里只做分页展示
type QuerySalesUseCase struct {
	salesRepo sales.Repository
}

// NewQuerySalesUseCase 创建销售查询用例
func NewQuerySalesUseCase(salesRepo sales.Repository) *QuerySalesUseCase {
	return &QuerySalesUseCase{salesRepo: salesRepo}
}

// SaleResponse 销售记录DTO
type SaleResponse struct {
	ID         uint   `json:"id"`
	OrderID    uint   `json:"order_id"`
	ProductID  uint   `json:"product_id"`
	CategoryID uint   `json:"category_id"`
	ChannelID  uint   `json:"channel_id"`
	SaleDate   string `json:"sale_date"`
	Amount     int64  `json:"amount"`
}

// SnapshotResponse 销售快照DTO
type SnapshotResponse struct {
	ID             uint   `json:"id"`
	SnapshotDate   string `json:"snapshot_date"`
	TotalSales     int    `json:"total_sales"`
	TotalRevenue   int64  `json:"total_revenue"`
	AverageRevenue int64  `json:"average_revenue"`
	TotalQuantity  int    `json:"total_quantity"`
	TotalProducts  int    `json:"total_products"`
	TotalTax       int64  `json:"total_tax"`
	TotalShipping  int64  `json:"total_shipping"`
	TotalDiscount  int64  `json:"total_discount"`
	Interval       string `json:"interval"`
}

// ListSales 分页查询销售记录
func (uc *QuerySalesUseCase) ListSales(ctx context.Context, page, pageSize int) ([]*SaleResponse, int64, error) {
	records, total, err := uc.salesRepo.ListSales(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*SaleResponse, len(records))
	for i, r := range records {
		result[i] = &SaleResponse{
			ID:         r.ID,
			OrderID:    r.OrderID,
			ProductID:  r.ProductID,
			CategoryID: r.CategoryID,
			ChannelID:  r.ChannelID,
			SaleDate:   r.SaleDate.Format("2006-01-02 15:04:05"),
			Amount:     r.Amount,
		}
	}
	return result, total, nil
}

// ListSnapshots 分页查询销售快照
func (uc *QuerySalesUseCase) ListSnapshots(ctx context.Context, page, pageSize int) ([]*SnapshotResponse, int64, error) {
	snaps, total, err := uc.salesRepo.ListSnapshots(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*SnapshotResponse, len(snaps))
	for i, s := range snaps {
		result[i] = &SnapshotResponse{
			ID:             s.ID,
			SnapshotDate:   s.SnapshotDate.Format("2006-01-02 15:04:05"),
			TotalSales:     s.TotalSales,
			TotalRevenue:   s.TotalRevenue,
			AverageRevenue: s.AverageRevenue,
			TotalQuantity:  s.TotalQuantity,
			TotalProducts:  s.TotalProducts,
			TotalTax:       s.TotalTax,
			TotalShipping:  s.TotalShipping,
			TotalDiscount:  s.TotalDiscount,
			Interval:       s.Interval,
		}
	}
	return result, total, nil
}
