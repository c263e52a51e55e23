package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
	"github.com/xiebiao/fulfillment/internal/domain/product"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// =========================================
// 测试桩
// =========================================

type txMarker struct{}

// fakeTx 事务桩：给fn打上事务context标记，记录是否因错误回滚
type fakeTx struct {
	rolledBack bool
}

func (t *fakeTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(context.WithValue(ctx, txMarker{}, true))
	if err != nil {
		t.rolledBack = true
	}
	return err
}

func inTx(ctx context.Context) bool {
	ok, _ := ctx.Value(txMarker{}).(bool)
	return ok
}

// fakeInventoryRepo 库存仓储桩
// restockErr模拟流水写入失败：真实仓储里数量UPDATE和流水INSERT
// 同一事务，任一失败整体返回错误，这里对应"报错且不改数量"
type fakeInventoryRepo struct {
	stock      map[uint]int
	restockErr error

	lockCalls    []uint // LockByProductID的调用序列
	lockedInTx   bool
	createdInTx  bool
	restockInTx  bool
	createdActor uint
	restockActor uint
}

func (r *fakeInventoryRepo) Create(ctx context.Context, inv *inventory.Inventory, actor uint) error {
	r.createdInTx = inTx(ctx)
	r.createdActor = actor
	inv.ID = 1
	r.stock[inv.ProductID] = inv.Quantity
	return nil
}

func (r *fakeInventoryRepo) FindByProductID(_ context.Context, productID uint) (*inventory.Inventory, error) {
	qty, ok := r.stock[productID]
	if !ok {
		return nil, inventory.ErrInventoryNotFound
	}
	return &inventory.Inventory{ID: 1, ProductID: productID, Quantity: qty}, nil
}

func (r *fakeInventoryRepo) FindByProductIDs(_ context.Context, _ []uint) (map[uint]*inventory.Inventory, error) {
	return nil, nil
}

func (r *fakeInventoryRepo) LockByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error) {
	r.lockCalls = append(r.lockCalls, productID)
	r.lockedInTx = inTx(ctx)
	return r.FindByProductID(ctx, productID)
}

func (r *fakeInventoryRepo) Deduct(_ context.Context, _ uint, _ int, _ uint) error { return nil }

func (r *fakeInventoryRepo) Restock(ctx context.Context, productID uint, quantity int, actor uint) error {
	if r.restockErr != nil {
		return r.restockErr
	}
	r.restockInTx = inTx(ctx)
	r.restockActor = actor
	r.stock[productID] += quantity
	return nil
}

func (r *fakeInventoryRepo) ListLowStock(_ context.Context, threshold int) ([]*inventory.Inventory, error) {
	var result []*inventory.Inventory
	for id, qty := range r.stock {
		if qty <= threshold {
			result = append(result, &inventory.Inventory{ProductID: id, Quantity: qty})
		}
	}
	return result, nil
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

func (r *fakeProductRepo) FindByIDs(_ context.Context, _ []uint) (map[uint]*product.Product, error) {
	return nil, nil
}

// =========================================
// 测试环境
// =========================================

type testEnv struct {
	uc        *ManageInventoryUseCase
	inventory *fakeInventoryRepo
	tx        *fakeTx
}

func newTestEnv() *testEnv {
	inv := &fakeInventoryRepo{stock: map[uint]int{100: 5}}
	products := &fakeProductRepo{products: map[uint]*product.Product{
		100: {ID: 100, Name: "保温杯", Status: product.StatusActive},
		101: {ID: 101, Name: "马克杯", Status: product.StatusActive},
	}}
	tx := &fakeTx{}

	return &testEnv{
		uc:        NewManageInventoryUseCase(inv, products, tx),
		inventory: inv,
		tx:        tx,
	}
}

// =========================================
// 用例测试
// =========================================

func TestRestock_ExistingRow(t *testing.T) {
	env := newTestEnv()

	resp, err := env.uc.Restock(context.Background(), RestockRequest{UserID: 42, ProductID: 100, Quantity: 20})
	require.NoError(t, err)

	assert.Equal(t, 25, resp.Quantity)
	assert.Equal(t, 25, env.inventory.stock[100])
	assert.Equal(t, uint(42), env.inventory.restockActor)

	// 变更前先FOR UPDATE锁行，且全程在事务内
	assert.Equal(t, []uint{100}, env.inventory.lockCalls)
	assert.True(t, env.inventory.lockedInTx, "锁行必须在事务context内")
	assert.True(t, env.inventory.restockInTx, "补货必须在事务context内")
}

func TestRestock_CreatePath(t *testing.T) {
	env := newTestEnv()

	resp, err := env.uc.Restock(context.Background(), RestockRequest{UserID: 42, ProductID: 101, Quantity: 30})
	require.NoError(t, err)

	assert.Equal(t, 30, resp.Quantity)
	assert.Equal(t, uint(101), resp.ProductID)
	assert.Equal(t, uint(42), env.inventory.createdActor)
	assert.True(t, env.inventory.createdInTx, "建档必须在事务context内")
}

func TestRestock_HistoryWriteFailureRollsBack(t *testing.T) {
	env := newTestEnv()
	env.inventory.restockErr = apperrors.Wrap(assert.AnError, "写入库存流水失败")

	// 流水写不进去时整个事务回滚：没有响应，数量不变
	_, err := env.uc.Restock(context.Background(), RestockRequest{UserID: 42, ProductID: 100, Quantity: 20})
	require.Error(t, err)
	assert.True(t, env.tx.rolledBack, "流水失败应该回滚事务")
	assert.Equal(t, 5, env.inventory.stock[100], "回滚后数量不能变")
}

func TestRestock_InvalidQuantity(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.Restock(context.Background(), RestockRequest{UserID: 42, ProductID: 100, Quantity: 0})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestRestock_ProductMissing(t *testing.T) {
	env := newTestEnv()

	_, err := env.uc.Restock(context.Background(), RestockRequest{UserID: 42, ProductID: 999, Quantity: 10})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Empty(t, env.inventory.lockCalls, "商品不存在不应该进入事务")
}

func TestListLowStock(t *testing.T) {
	env := newTestEnv()
	env.inventory.stock[101] = 100

	items, err := env.uc.ListLowStock(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(100), items[0].ProductID)
}
