package dto

// PlaceOrderRequest HTTP下单请求
// 渠道与客户信息来自调用方（渠道本身由外部协作方维护，只传ID）
type PlaceOrderRequest struct {
	ChannelID       uint                    `json:"channel_id" binding:"required" example:"2"`
	CustomerName    string                  `json:"customer_name" binding:"required,max=100" example:"张三"`
	CustomerEmail   string                  `json:"customer_email" binding:"omitempty,email,max=100" example:"zhangsan@example.com"`
	ShippingAddress string                  `json:"shipping_address" binding:"max=500" example:"上海市浦东新区XX路1号"`
	BillingAddress  string                  `json:"billing_address" binding:"max=500" example:"上海市浦东新区XX路1号"`
	Items           []PlaceOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PlaceOrderItemRequest 订单明细项
type PlaceOrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required" example:"100"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// PlaceOrderResponse HTTP下单响应
type PlaceOrderResponse struct {
	OrderID        uint   `json:"order_id" example:"1"`
	OrderNo        string `json:"order_no" example:"ORD-20251103-X7K2"`
	TotalAmount    int64  `json:"total_amount" example:"3500"`
	TaxAmount      int64  `json:"tax_amount" example:"120"`
	ShippingAmount int64  `json:"shipping_amount" example:"198"`
	DiscountAmount int64  `json:"discount_amount" example:"0"`
	Status         string `json:"status" example:"PENDING"`
	CreatedAt      string `json:"created_at" example:"2025-11-03 10:30:00"`
}
