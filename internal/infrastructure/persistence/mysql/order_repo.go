package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/fulfillment/internal/domain/order"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// Order与OrderItem是聚合：Create利用GORM的关联写入一次插入主表+明细
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单(包含订单明细)
// 必须在事务context中调用；订单号撞唯一索引时返回ErrOrderNoConflict，
// 由应用层换号重试
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	db := getDB(ctx, r.db)

	model := toOrderModel(o)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return order.ErrOrderNoConflict
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填主表与明细的自增ID
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range model.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.Items[i].OrderID
	}

	return nil
}

// FindByID 根据ID查找订单(包含订单明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	return &OrderModel{
		OrderNo:         o.OrderNo,
		ChannelID:       o.ChannelID,
		OrderDate:       o.OrderDate,
		TotalAmount:     o.TotalAmount,
		TaxAmount:       o.TaxAmount,
		ShippingAmount:  o.ShippingAmount,
		DiscountAmount:  o.DiscountAmount,
		Status:          string(o.Status),
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Items:           items,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	return &order.Order{
		ID:              model.ID,
		OrderNo:         model.OrderNo,
		ChannelID:       model.ChannelID,
		OrderDate:       model.OrderDate,
		TotalAmount:     model.TotalAmount,
		TaxAmount:       model.TaxAmount,
		ShippingAmount:  model.ShippingAmount,
		DiscountAmount:  model.DiscountAmount,
		Status:          order.Status(model.Status),
		CustomerName:    model.CustomerName,
		CustomerEmail:   model.CustomerEmail,
		ShippingAddress: model.ShippingAddress,
		BillingAddress:  model.BillingAddress,
		Items:           items,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
