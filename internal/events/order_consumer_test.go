package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
)

// fakeBus 记录各频道消息的通知端口桩
type fakeBus struct {
	messages map[string][][]byte
	err      error
}

func newFakeBus() *fakeBus {
	return &fakeBus{messages: make(map[string][][]byte)}
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	if b.err != nil {
		return b.err
	}
	b.messages[channel] = append(b.messages[channel], payload)
	return nil
}

// fakeBatchQueue 记录入队消息的队列端口桩
type fakeBatchQueue struct {
	pushed [][]byte
	err    error
}

func (q *fakeBatchQueue) Push(_ context.Context, payload []byte) error {
	if q.err != nil {
		return q.err
	}
	q.pushed = append(q.pushed, payload)
	return nil
}

// fakeStockReader 固定库存数据的读取端口桩
type fakeStockReader struct {
	stock map[uint]int
}

func (r *fakeStockReader) FindByProductID(_ context.Context, productID uint) (*inventory.Inventory, error) {
	qty, ok := r.stock[productID]
	if !ok {
		return nil, inventory.ErrInventoryNotFound
	}
	return &inventory.Inventory{ProductID: productID, Quantity: qty}, nil
}

func orderEventPayload(t *testing.T, items []OrderItemPayload) []byte {
	t.Helper()
	body, err := json.Marshal(OrderPlacedEvent{
		OrderNo: "ORD-20260828-XY99",
		Items:   items,
	})
	require.NoError(t, err)
	return body
}

func newTestOrderConsumer(bus *fakeBus, queue *fakeBatchQueue, stock *fakeStockReader) *OrderConsumer {
	return NewOrderConsumer(nil, bus, queue, stock, "incoming-order", "low-stock", 20)
}

func TestOrderConsumer_ForwardsAndEnqueues(t *testing.T) {
	bus := newFakeBus()
	queue := &fakeBatchQueue{}
	stock := &fakeStockReader{stock: map[uint]int{100: 50}}
	consumer := newTestOrderConsumer(bus, queue, stock)

	body := orderEventPayload(t, []OrderItemPayload{{ProductID: 100, Quantity: 1}})
	err := consumer.handle(context.Background(), body)
	require.NoError(t, err)

	// 原始payload原样转发+入队
	require.Len(t, bus.messages["incoming-order"], 1)
	assert.Equal(t, body, bus.messages["incoming-order"][0])
	require.Len(t, queue.pushed, 1)
	assert.Equal(t, body, queue.pushed[0])

	// 库存充足，无告警
	assert.Empty(t, bus.messages["low-stock"])
}

func TestOrderConsumer_LowStockAlert(t *testing.T) {
	bus := newFakeBus()
	queue := &fakeBatchQueue{}
	stock := &fakeStockReader{stock: map[uint]int{100: 20, 101: 21}}
	consumer := newTestOrderConsumer(bus, queue, stock)

	body := orderEventPayload(t, []OrderItemPayload{
		{ProductID: 100, Quantity: 1},
		{ProductID: 101, Quantity: 1},
	})
	require.NoError(t, consumer.handle(context.Background(), body))

	// 阈值是≤：恰好20触发，21不触发
	require.Len(t, bus.messages["low-stock"], 1)

	var alert LowStockAlert
	require.NoError(t, json.Unmarshal(bus.messages["low-stock"][0], &alert))
	assert.Equal(t, uint(100), alert.ProductID)
	assert.Equal(t, 20, alert.Quantity)
	assert.Equal(t, 20, alert.Threshold)
	assert.Equal(t, "ORD-20260828-XY99", alert.OrderNo)
}

func TestOrderConsumer_MissingInventorySkipped(t *testing.T) {
	bus := newFakeBus()
	queue := &fakeBatchQueue{}
	stock := &fakeStockReader{stock: map[uint]int{}}
	consumer := newTestOrderConsumer(bus, queue, stock)

	body := orderEventPayload(t, []OrderItemPayload{{ProductID: 999, Quantity: 1}})
	require.NoError(t, consumer.handle(context.Background(), body))

	assert.Empty(t, bus.messages["low-stock"])
}

func TestOrderConsumer_MalformedMessageAcked(t *testing.T) {
	bus := newFakeBus()
	queue := &fakeBatchQueue{}
	consumer := newTestOrderConsumer(bus, queue, &fakeStockReader{})

	// 坏消息也要转发+入队（下游自行决定如何处理），且返回nil确认
	err := consumer.handle(context.Background(), []byte("not json"))
	require.NoError(t, err)
	assert.Len(t, bus.messages["incoming-order"], 1)
	assert.Len(t, queue.pushed, 1)
}

func TestOrderConsumer_BusFailureDoesNotBlockQueue(t *testing.T) {
	bus := newFakeBus()
	bus.err = errors.New("redis down")
	queue := &fakeBatchQueue{}
	stock := &fakeStockReader{stock: map[uint]int{100: 50}}
	consumer := newTestOrderConsumer(bus, queue, stock)

	body := orderEventPayload(t, []OrderItemPayload{{ProductID: 100, Quantity: 1}})
	err := consumer.handle(context.Background(), body)

	// 转发失败不影响入队，也不触发重投
	require.NoError(t, err)
	assert.Len(t, queue.pushed, 1)
}
