package dto

// RestockRequest HTTP建档/补货请求
// 商品没有库存行时建档，已有则累加补货
type RestockRequest struct {
	ProductID uint `json:"product_id" binding:"required" example:"100"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=999999" example:"50"`
}

// InventoryResponse HTTP库存响应
type InventoryResponse struct {
	ID              uint   `json:"id" example:"1"`
	ProductID       uint   `json:"product_id" example:"100"`
	Quantity        int    `json:"quantity" example:"50"`
	LastRestockDate string `json:"last_restock_date" example:"2025-11-03 10:30:00"`
}

// ListQuery 通用分页查询参数
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// Normalize 填充分页默认值
func (q *ListQuery) Normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
}
