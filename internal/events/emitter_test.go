package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/fulfillment/internal/domain/order"
)

// fakePublisher 记录所有发布调用的发布端口桩
type fakePublisher struct {
	published []publishedMessage
	failOn    string // 匹配此routing key的发布返回错误
}

type publishedMessage struct {
	routingKey string
	message    interface{}
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	if p.failOn != "" && routingKey == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, publishedMessage{routingKey, message})
	return nil
}

func testOrder() *order.Order {
	return &order.Order{
		ID:          1,
		OrderNo:     "ORD-20260828-AB12",
		ChannelID:   2,
		OrderDate:   time.Now(),
		TotalAmount: 3500,
		TaxAmount:   120,
		Status:      order.StatusPending,
		Items: []order.OrderItem{
			{ID: 10, ProductID: 100, Quantity: 2, UnitPrice: 1000, Subtotal: 2000},
			{ID: 11, ProductID: 101, Quantity: 3, UnitPrice: 500, Subtotal: 1500},
		},
	}
}

func TestEmitter_Emit(t *testing.T) {
	pub := &fakePublisher{}
	emitter := NewEmitter(pub, "order.placed", "sale.recorded")

	result := emitter.Emit(context.Background(), testOrder(), map[uint]uint{100: 7})

	assert.True(t, result.OrderPublished)
	assert.Equal(t, 5, result.SalesAttempted) // 2 + 3件
	assert.Equal(t, 5, result.SalesPublished)
	assert.False(t, result.Failed())
	assert.NoError(t, result.Err())

	// 1条订单事件 + 5条销售事件
	require.Len(t, pub.published, 6)
	assert.Equal(t, "order.placed", pub.published[0].routingKey)

	orderEvent, ok := pub.published[0].message.(OrderPlacedEvent)
	require.True(t, ok)
	assert.Equal(t, "ORD-20260828-AB12", orderEvent.OrderNo)
	assert.Len(t, orderEvent.Items, 2)

	// 销售事件逐件发布，每条Amount=单价
	var amounts []int64
	for _, msg := range pub.published[1:] {
		assert.Equal(t, "sale.recorded", msg.routingKey)
		event, ok := msg.message.(SaleEvent)
		require.True(t, ok)
		amounts = append(amounts, event.Amount)
	}
	assert.Equal(t, []int64{1000, 1000, 500, 500, 500}, amounts)
}

func TestEmitter_Emit_CategoryMapping(t *testing.T) {
	pub := &fakePublisher{}
	emitter := NewEmitter(pub, "order.placed", "sale.recorded")

	emitter.Emit(context.Background(), testOrder(), map[uint]uint{100: 7})

	for _, msg := range pub.published[1:] {
		event := msg.message.(SaleEvent)
		switch event.ProductID {
		case 100:
			assert.Equal(t, uint(7), event.CategoryID)
		case 101:
			assert.Equal(t, uint(0), event.CategoryID) // 未分类
		}
	}
}

func TestEmitter_Emit_OrderPublishFailure(t *testing.T) {
	pub := &fakePublisher{failOn: "order.placed"}
	emitter := NewEmitter(pub, "order.placed", "sale.recorded")

	result := emitter.Emit(context.Background(), testOrder(), nil)

	// 订单事件失败不阻止销售事件发布
	assert.False(t, result.OrderPublished)
	assert.Equal(t, 5, result.SalesPublished)
	assert.True(t, result.Failed())
	require.Error(t, result.Err())
}

func TestEmitter_Emit_SalePublishFailure(t *testing.T) {
	pub := &fakePublisher{failOn: "sale.recorded"}
	emitter := NewEmitter(pub, "order.placed", "sale.recorded")

	result := emitter.Emit(context.Background(), testOrder(), nil)

	assert.True(t, result.OrderPublished)
	assert.Equal(t, 5, result.SalesAttempted)
	assert.Equal(t, 0, result.SalesPublished)
	assert.True(t, result.Failed())
}
