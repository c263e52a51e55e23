package product

import (
	"context"

	"github.com/xiebiao/fulfillment/internal/domain/product"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// CreateProductUseCase 创建商品用例
type CreateProductUseCase struct {
	productRepo product.Repository
}

// NewCreateProductUseCase 创建商品用例
func NewCreateProductUseCase(productRepo product.Repository) *CreateProductUseCase {
	return &CreateProductUseCase{productRepo: productRepo}
}

// CreateProductRequest 创建商品请求DTO
type CreateProductRequest struct {
	UserID      uint // 创建人(从JWT提取)
	Name        string
	Description string
	SKU         string
	Price       int64 // 售价(分)
	CostPrice   int64 // 成本价(分)
	Avatar      string
	Status      string
	CategoryID  uint
}

// ProductResponse 商品响应DTO
type ProductResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SKU         string `json:"sku"`
	Price       int64  `json:"price"`
	Avatar      string `json:"avatar"`
	Status      string `json:"status"`
	CategoryID  uint   `json:"category_id"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行创建商品
func (uc *CreateProductUseCase) Execute(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if req.Name == "" || req.SKU == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称和SKU不能为空")
	}
	if req.Price <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "售价必须大于0")
	}

	status := product.Status(req.Status)
	if status == "" {
		status = product.StatusDraft
	}

	p := &product.Product{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Avatar:      req.Avatar,
		Status:      status,
		CategoryID:  req.CategoryID,
		CreatedBy:   req.UserID,
	}

	if err := uc.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return toProductResponse(p), nil
}

// GetProductUseCase 查询商品用例
type GetProductUseCase struct {
	productRepo product.Repository
}

// NewGetProductUseCase 创建查询商品用例
func NewGetProductUseCase(productRepo product.Repository) *GetProductUseCase {
	return &GetProductUseCase{productRepo: productRepo}
}

// Execute 根据ID查询商品
func (uc *GetProductUseCase) Execute(ctx context.Context, id uint) (*ProductResponse, error) {
	p, err := uc.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// toProductResponse 领域实体 → 应用层DTO
func toProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.Price,
		Avatar:      p.Avatar,
		Status:      string(p.Status),
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
