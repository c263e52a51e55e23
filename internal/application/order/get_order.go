package order

import (
	"context"

	"github.com/xiebiao/fulfillment/internal/domain/order"
)

// GetOrderUseCase 查询订单用例
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建查询订单用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// OrderDetailResponse 订单详情DTO
type OrderDetailResponse struct {
	OrderID         uint              `json:"order_id"`
	OrderNo         string            `json:"order_no"`
	ChannelID       uint              `json:"channel_id"`
	TotalAmount     int64             `json:"total_amount"`
	TaxAmount       int64             `json:"tax_amount"`
	ShippingAmount  int64             `json:"shipping_amount"`
	DiscountAmount  int64             `json:"discount_amount"`
	Status          string            `json:"status"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	ShippingAddress string            `json:"shipping_address"`
	Items           []OrderItemDetail `json:"items"`
	CreatedAt       string            `json:"created_at"`
}

// OrderItemDetail 订单明细DTO
type OrderItemDetail struct {
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
	Subtotal  int64 `json:"subtotal"`
}

// Execute 根据ID查询订单
func (uc *GetOrderUseCase) Execute(ctx context.Context, id uint) (*OrderDetailResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemDetail, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	return &OrderDetailResponse{
		OrderID:         o.ID,
		OrderNo:         o.OrderNo,
		ChannelID:       o.ChannelID,
		TotalAmount:     o.TotalAmount,
		TaxAmount:       o.TaxAmount,
		ShippingAmount:  o.ShippingAmount,
		DiscountAmount:  o.DiscountAmount,
		Status:          string(o.Status),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		CreatedAt:       o.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
