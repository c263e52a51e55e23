package order

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
	"github.com/xiebiao/fulfillment/internal/domain/order"
	"github.com/xiebiao/fulfillment/internal/domain/product"
	"github.com/xiebiao/fulfillment/internal/events"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
	"github.com/xiebiao/fulfillment/pkg/tracing"
)

// orderNoMaxRetries 订单号撞唯一索引时的换号重试上限
const orderNoMaxRetries = 3

// Transactor 事务边界端口（*mysql.TxManager实现）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventEmitter 事件投递端口（*events.Emitter实现）
type EventEmitter interface {
	Emit(ctx context.Context, o *order.Order, categoryOf map[uint]uint) events.DeliveryResult
}

// PlaceOrderUseCase 下单用例
// 整个系统唯一的强一致边界：订单创建+库存扣减+流水写入在一个
// 事务内，要么全部生效，要么全部回滚。事件投递在提交之后，
// 失败只记录，不影响已提交的订单。
type PlaceOrderUseCase struct {
	orderRepo     order.Repository
	productRepo   product.Repository
	inventoryRepo inventory.Repository
	txManager     Transactor
	emitter       EventEmitter
	pricing       order.PricingPolicy
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	orderRepo order.Repository,
	productRepo product.Repository,
	inventoryRepo inventory.Repository,
	txManager Transactor,
	emitter EventEmitter,
	pricing order.PricingPolicy,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		txManager:     txManager,
		emitter:       emitter,
		pricing:       pricing,
	}
}

// PlaceOrderRequest 下单请求DTO
type PlaceOrderRequest struct {
	UserID          uint // 操作人(从JWT提取)，写入库存流水的changed_by
	ChannelID       uint
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	BillingAddress  string
	Items           []PlaceOrderItem
}

// PlaceOrderItem 订单明细项
type PlaceOrderItem struct {
	ProductID uint
	Quantity  int
}

// PlaceOrderResponse 下单响应DTO
type PlaceOrderResponse struct {
	OrderID        uint   `json:"order_id"`
	OrderNo        string `json:"order_no"`
	TotalAmount    int64  `json:"total_amount"`
	TaxAmount      int64  `json:"tax_amount"`
	ShippingAmount int64  `json:"shipping_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// Execute 执行下单
//
// 流程：
// 1. 校验：批量加载商品与库存，检查存在性/上架状态/可用量
//    （缺库存行按可用=0处理）
// 2. 定价：策略求值一次，四项金额随订单落库
// 3. 事务：插入订单+明细（订单号撞号则换号重试），逐行
//    行锁+条件UPDATE扣减库存并写流水；任一步失败整体回滚
// 4. 提交后：发布订单/销售事件，投递失败只记日志
//
// 并发安全：SELECT FOR UPDATE锁住读-校验-扣减窗口，条件UPDATE
// （quantity >= ?）兜底，两道保险下库存不会为负。
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "order.place")
	defer span.End()

	start := time.Now()

	// 1. 参数校验
	if len(req.Items) == 0 {
		return nil, order.ErrInvalidOrderItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, order.ErrInvalidQuantity
		}
	}

	// 2. 批量加载商品与库存（一次IN查询，避免N+1）
	productIDs := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := uc.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	inventories, err := uc.inventoryRepo.FindByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	// 3. 逐项校验（事务外预检，尽早失败；事务内行锁后还有权威复核）
	for _, item := range req.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrCodeProductNotFound,
				"商品不存在: id=%d", item.ProductID)
		}
		if !p.IsActive() {
			return nil, apperrors.Newf(apperrors.ErrCodeProductInactive,
				"商品未上架: %s", p.Name)
		}

		// 缺库存行按可用=0处理
		inv, ok := inventories[item.ProductID]
		if !ok || !inv.CanDeduct(item.Quantity) {
			return nil, insufficientStockError(p.Name, availableOf(inv), item.Quantity)
		}
	}

	// 4. 构建明细并定价（单价取数据库当前价，防改价攻击）
	orderItems := make([]order.OrderItem, len(req.Items))
	for i, item := range req.Items {
		p := products[item.ProductID]
		orderItems[i] = order.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			Subtotal:  p.Price * int64(item.Quantity),
		}
	}
	totals := uc.pricing.Evaluate(orderItems)

	// 5. 事务：订单+扣减+流水
	var placed *order.Order
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		newOrder, err := uc.createWithRetry(txCtx, req, orderItems, totals)
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			// 行锁后权威复核，锁住读-校验-扣减整个窗口
			inv, err := uc.inventoryRepo.LockByProductID(txCtx, item.ProductID)
			if err != nil {
				return err
			}
			if !inv.CanDeduct(item.Quantity) {
				p := products[item.ProductID]
				return insufficientStockError(p.Name, inv.Quantity, item.Quantity)
			}

			if err := uc.inventoryRepo.Deduct(txCtx, item.ProductID, item.Quantity, req.UserID); err != nil {
				return err
			}
		}

		placed = newOrder
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderPlacementDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("order.no", placed.OrderNo),
		attribute.Int("order.lines", len(placed.Items)),
	)

	// 6. 提交后投递事件：失败不回滚订单，只暴露在日志和指标里。
	// 订单已提交，客户端此时断开不应该取消发布，脱离请求context的取消链
	emitCtx := context.WithoutCancel(ctx)
	categoryOf := make(map[uint]uint, len(products))
	for id, p := range products {
		categoryOf[id] = p.CategoryID
	}
	if result := uc.emitter.Emit(emitCtx, placed, categoryOf); result.Failed() {
		logger.Named("place-order").Errorw("订单已提交但事件投递不完整",
			"order_no", placed.OrderNo, "error", result.Err())
	}

	return &PlaceOrderResponse{
		OrderID:        placed.ID,
		OrderNo:        placed.OrderNo,
		TotalAmount:    placed.TotalAmount,
		TaxAmount:      placed.TaxAmount,
		ShippingAmount: placed.ShippingAmount,
		DiscountAmount: placed.DiscountAmount,
		Status:         string(placed.Status),
		CreatedAt:      placed.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// createWithRetry 插入订单，订单号撞唯一索引时换号重试
func (uc *PlaceOrderUseCase) createWithRetry(
	ctx context.Context,
	req PlaceOrderRequest,
	items []order.OrderItem,
	totals order.Totals,
) (*order.Order, error) {
	meta := order.CustomerInfo{
		Name:            req.CustomerName,
		Email:           req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	}

	for attempt := 0; attempt < orderNoMaxRetries; attempt++ {
		newOrder := order.NewOrder(order.GenerateOrderNo(), req.ChannelID, items, totals, meta)
		err := uc.orderRepo.Create(ctx, newOrder)
		if err == nil {
			return newOrder, nil
		}
		if !errors.Is(err, order.ErrOrderNoConflict) {
			return nil, err
		}
		logger.Named("place-order").Warnw("订单号冲突，换号重试",
			"order_no", newOrder.OrderNo, "attempt", attempt+1)
	}

	return nil, order.ErrOrderNoConflict
}

// availableOf 库存行缺失时可用量按0计
func availableOf(inv *inventory.Inventory) int {
	if inv == nil {
		return 0
	}
	return inv.Quantity
}

// insufficientStockError 构造带明细的库存不足错误
func insufficientStockError(name string, available, requested int) error {
	return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
		"商品「%s」库存不足，当前库存:%d，需要:%d", name, available, requested)
}
