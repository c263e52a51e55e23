package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
	"github.com/xiebiao/fulfillment/internal/domain/order"
	"github.com/xiebiao/fulfillment/internal/domain/product"
	"github.com/xiebiao/fulfillment/internal/events"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// =========================================
// 测试桩
// =========================================

// fakeTx 直接执行fn的事务桩（不做真正的回滚，只透传错误）
type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeOrderRepo 订单仓储桩，可配置前N次插入撞订单号
type fakeOrderRepo struct {
	created   []*order.Order
	conflicts int // 前conflicts次Create返回订单号冲突
	attempts  []string
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.attempts = append(r.attempts, o.OrderNo)
	if len(r.attempts) <= r.conflicts {
		return order.ErrOrderNoConflict
	}
	o.ID = uint(len(r.created) + 1)
	for i := range o.Items {
		o.Items[i].ID = uint(i + 10)
		o.Items[i].OrderID = o.ID
	}
	r.created = append(r.created, o)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	for _, o := range r.created {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *fakeOrderRepo) FindByOrderNo(_ context.Context, orderNo string) (*order.Order, error) {
	for _, o := range r.created {
		if o.OrderNo == orderNo {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

// fakeProductRepo 商品仓储桩
type fakeProductRepo struct {
	products map[uint]*product.Product
}

func (r *fakeProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

func (r *fakeProductRepo) FindByID(_ context.Context, id uint) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uint) (map[uint]*product.Product, error) {
	result := make(map[uint]*product.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

// fakeInventoryRepo 库存仓储桩，记录扣减调用
type fakeInventoryRepo struct {
	stock      map[uint]int
	deductions []deduction
}

type deduction struct {
	productID uint
	quantity  int
	actor     uint
}

func (r *fakeInventoryRepo) Create(_ context.Context, _ *inventory.Inventory, _ uint) error {
	return nil
}

func (r *fakeInventoryRepo) FindByProductID(_ context.Context, productID uint) (*inventory.Inventory, error) {
	qty, ok := r.stock[productID]
	if !ok {
		return nil, inventory.ErrInventoryNotFound
	}
	return &inventory.Inventory{ProductID: productID, Quantity: qty}, nil
}

func (r *fakeInventoryRepo) FindByProductIDs(_ context.Context, productIDs []uint) (map[uint]*inventory.Inventory, error) {
	result := make(map[uint]*inventory.Inventory)
	for _, id := range productIDs {
		if qty, ok := r.stock[id]; ok {
			result[id] = &inventory.Inventory{ProductID: id, Quantity: qty}
		}
	}
	return result, nil
}

func (r *fakeInventoryRepo) LockByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error) {
	return r.FindByProductID(ctx, productID)
}

func (r *fakeInventoryRepo) Deduct(_ context.Context, productID uint, quantity int, actor uint) error {
	if r.stock[productID] < quantity {
		return inventory.ErrInsufficientStock
	}
	r.stock[productID] -= quantity
	r.deductions = append(r.deductions, deduction{productID, quantity, actor})
	return nil
}

func (r *fakeInventoryRepo) Restock(_ context.Context, productID uint, quantity int, _ uint) error {
	r.stock[productID] += quantity
	return nil
}

func (r *fakeInventoryRepo) ListLowStock(_ context.Context, threshold int) ([]*inventory.Inventory, error) {
	return nil, nil
}

// fakeEmitter 事件投递桩
type fakeEmitter struct {
	emitted    []*order.Order
	categories map[uint]uint
	ctx        context.Context // Emit收到的context
	result     events.DeliveryResult
}

func (e *fakeEmitter) Emit(ctx context.Context, o *order.Order, categoryOf map[uint]uint) events.DeliveryResult {
	e.emitted = append(e.emitted, o)
	e.categories = categoryOf
	e.ctx = ctx
	return e.result
}

// =========================================
// 测试环境
// =========================================

type testEnv struct {
	uc        *PlaceOrderUseCase
	orders    *fakeOrderRepo
	inventory *fakeInventoryRepo
	emitter   *fakeEmitter
}

func newTestEnv() *testEnv {
	orders := &fakeOrderRepo{}
	products := &fakeProductRepo{products: map[uint]*product.Product{
		100: {ID: 100, Name: "保温杯", Price: 1000, Status: product.StatusActive, CategoryID: 7},
		101: {ID: 101, Name: "马克杯", Price: 500, Status: product.StatusActive},
		102: {ID: 102, Name: "下架品", Price: 100, Status: product.StatusInactive},
	}}
	inv := &fakeInventoryRepo{stock: map[uint]int{100: 50, 101: 3}}
	emitter := &fakeEmitter{result: events.DeliveryResult{OrderPublished: true}}

	uc := NewPlaceOrderUseCase(orders, products, inv, fakeTx{}, emitter,
		order.FixedPolicy{TaxAmount: 120, ShippingPerLine: 99})

	return &testEnv{uc: uc, orders: orders, inventory: inv, emitter: emitter}
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		UserID:       42,
		ChannelID:    2,
		CustomerName: "张三",
		Items: []PlaceOrderItem{
			{ProductID: 100, Quantity: 2},
			{ProductID: 101, Quantity: 3},
		},
	}
}

// =========================================
// 用例测试
// =========================================

func TestPlaceOrder_Success(t *testing.T) {
	env := newTestEnv()

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 金额：商品总额2*1000+3*500，税固定120，运费99*2行，折扣0
	assert.Equal(t, int64(3500), resp.TotalAmount)
	assert.Equal(t, int64(120), resp.TaxAmount)
	assert.Equal(t, int64(198), resp.ShippingAmount)
	assert.Equal(t, int64(0), resp.DiscountAmount)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{4}$`, resp.OrderNo)

	// 库存按请求数量扣减，操作人透传
	assert.Equal(t, 48, env.inventory.stock[100])
	assert.Equal(t, 0, env.inventory.stock[101])
	require.Len(t, env.inventory.deductions, 2)
	assert.Equal(t, uint(42), env.inventory.deductions[0].actor)

	// 提交后事件投递一次，带类目映射
	require.Len(t, env.emitter.emitted, 1)
	assert.Equal(t, uint(7), env.emitter.categories[100])
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.Execute(context.Background(), PlaceOrderRequest{UserID: 1})
	assert.ErrorIs(t, err, order.ErrInvalidOrderItems)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.Items[0].Quantity = 0
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, order.ErrInvalidQuantity)
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.Items[0].ProductID = 999
	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProductNotFound, apperrors.GetAppError(err).Code)
	assert.Empty(t, env.orders.created)
	assert.Empty(t, env.emitter.emitted)
}

func TestPlaceOrder_ProductInactive(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.Items = []PlaceOrderItem{{ProductID: 102, Quantity: 1}}
	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProductInactive, apperrors.GetAppError(err).Code)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	env := newTestEnv()

	req := validRequest()
	req.Items = []PlaceOrderItem{{ProductID: 101, Quantity: 4}} // 库存只有3
	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, apperrors.GetAppError(err).Code)
	assert.Empty(t, env.orders.created)
	assert.Empty(t, env.inventory.deductions)
}

func TestPlaceOrder_MissingInventoryRow(t *testing.T) {
	env := newTestEnv()
	delete(env.inventory.stock, 100)

	// 缺库存行按可用=0处理，与库存不足同样拒绝
	_, err := env.uc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, apperrors.GetAppError(err).Code)
}

func TestPlaceOrder_OrderNoConflictRetried(t *testing.T) {
	env := newTestEnv()
	env.orders.conflicts = 2 // 前两次撞号

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// 三次尝试，每次都是新号
	require.Len(t, env.orders.attempts, 3)
	assert.Equal(t, env.orders.attempts[2], resp.OrderNo)
}

func TestPlaceOrder_OrderNoConflictExhausted(t *testing.T) {
	env := newTestEnv()
	env.orders.conflicts = 10 // 永远撞号

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, order.ErrOrderNoConflict)
	assert.Len(t, env.orders.attempts, 3)
	assert.Empty(t, env.emitter.emitted)
}

func TestPlaceOrder_EmitSurvivesRequestCancellation(t *testing.T) {
	env := newTestEnv()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := env.uc.Execute(ctx, validRequest())
	require.NoError(t, err)

	// 提交后客户端断开：投递context不在请求的取消链上
	cancel()
	require.NotNil(t, env.emitter.ctx)
	assert.NoError(t, env.emitter.ctx.Err(), "投递context不应随请求context取消")
}

func TestPlaceOrder_DeliveryFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv()
	env.emitter.result = events.DeliveryResult{OrderPublished: false}

	// 订单已提交，事件投递失败只记录
	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, resp.OrderID)
}
