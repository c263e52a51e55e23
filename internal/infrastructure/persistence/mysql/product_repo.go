package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/fulfillment/internal/domain/product"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/product/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如SKU重复)，转换为业务错误
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	model := &ProductModel{
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Avatar:      p.Avatar,
		Status:      string(p.Status),
		CategoryID:  p.CategoryID,
		CreatedBy:   p.CreatedBy,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return product.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}

	// 回填自增ID
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// FindByIDs 批量查找商品
// 一次IN查询解决下单校验的N+1问题；不存在的ID不出现在结果map中
func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	if len(ids) == 0 {
		return map[uint]*product.Product{}, nil
	}

	var models []ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询商品失败")
	}

	result := make(map[uint]*product.Product, len(models))
	for i := range models {
		result[models[i].ID] = toProductEntity(&models[i])
	}
	return result, nil
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		SKU:         model.SKU,
		Price:       model.Price,
		CostPrice:   model.CostPrice,
		Avatar:      model.Avatar,
		Status:      product.Status(model.Status),
		CategoryID:  model.CategoryID,
		CreatedBy:   model.CreatedBy,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
