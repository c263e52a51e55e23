package dto

// CreateProductRequest HTTP创建商品请求
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,max=200" example:"保温杯"`
	Description string `json:"description" binding:"max=5000" example:"500ml不锈钢保温杯"`
	SKU         string `json:"sku" binding:"required,max=64" example:"CUP-SS-500"`
	Price       int64  `json:"price" binding:"required,min=1,max=99999999" example:"5900"` // 售价(分)
	CostPrice   int64  `json:"cost_price" binding:"min=0" example:"2400"`
	Avatar      string `json:"avatar" binding:"omitempty,url,max=500" example:"https://example.com/cup.jpg"`
	Status      string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE DRAFT" example:"ACTIVE"`
	CategoryID  uint   `json:"category_id" example:"7"`
}

// ProductResponse HTTP商品响应
type ProductResponse struct {
	ID          uint   `json:"id" example:"100"`
	Name        string `json:"name" example:"保温杯"`
	Description string `json:"description" example:"500ml不锈钢保温杯"`
	SKU         string `json:"sku" example:"CUP-SS-500"`
	Price       int64  `json:"price" example:"5900"`
	Avatar      string `json:"avatar" example:"https://example.com/cup.jpg"`
	Status      string `json:"status" example:"ACTIVE"`
	CategoryID  uint   `json:"category_id" example:"7"`
	CreatedAt   string `json:"created_at" example:"2025-11-03 10:30:00"`
}
