package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/xiebiao/fulfillment/internal/domain/order"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
)

// BrokerPublisher 事件发布端口（*mq.Publisher实现）
type BrokerPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// DeliveryResult 一次事件投递的逐条结果
// 订单事务已提交，投递失败不回滚订单，但失败必须显式暴露给调用方，
// 由调用方决定记日志还是升级处理，不允许在这里被吞掉。
type DeliveryResult struct {
	OrderPublished bool // 订单事件是否发布成功
	SalesAttempted int  // 应发布的销售事件数（=订单总件数）
	SalesPublished int  // 实际发布成功的销售事件数
	FirstErr       error
}

// Failed 是否存在投递缺口
func (r DeliveryResult) Failed() bool {
	return !r.OrderPublished || r.SalesPublished < r.SalesAttempted
}

// Err 汇总为一个错误（无缺口时返回nil）
func (r DeliveryResult) Err() error {
	if !r.Failed() {
		return nil
	}
	return apperrors.WrapCode(r.FirstErr, apperrors.ErrCodeDelivery,
		fmt.Sprintf("事件投递不完整: order=%t sales=%d/%d",
			r.OrderPublished, r.SalesPublished, r.SalesAttempted))
}

// Emitter 事件发射器
// 设计说明：
// 1. 发布经过熔断器：broker宕机时快速失败，不让请求goroutine
//    挂在超时上（投递本就允许丢失，没必要硬等）
// 2. 一条订单事件 + 每售出一件一条销售事件
type Emitter struct {
	publisher  BrokerPublisher
	orderTopic string
	saleTopic  string
	breaker    *gobreaker.CircuitBreaker[any]
}

// NewEmitter 创建事件发射器
func NewEmitter(publisher BrokerPublisher, orderTopic, saleTopic string) *Emitter {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name: "broker-publish",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Named("emitter").Warnw("熔断器状态变更",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Emitter{
		publisher:  publisher,
		orderTopic: orderTopic,
		saleTopic:  saleTopic,
		breaker:    breaker,
	}
}

// Emit 发布订单事件与销售事件
// 调用前提：订单事务已提交。categoryOf是商品ID→类目ID映射
// （下单用例校验时已加载商品，顺手传入，销售事件不用回查）。
func (e *Emitter) Emit(ctx context.Context, o *order.Order, categoryOf map[uint]uint) DeliveryResult {
	log := logger.Named("emitter")
	var result DeliveryResult

	// 1. 订单事件（整单一条）
	orderEvent := toOrderPlacedEvent(o)
	if err := e.publish(ctx, e.orderTopic, orderEvent); err != nil {
		log.Errorw("订单事件发布失败", "order_no", o.OrderNo, "error", err)
		result.FirstErr = err
	} else {
		result.OrderPublished = true
	}

	// 2. 销售事件（每售出一件一条）
	for _, item := range o.Items {
		result.SalesAttempted += item.Quantity
		for i := 0; i < item.Quantity; i++ {
			event := SaleEvent{
				EventID:     uuid.NewString(),
				OrderID:     o.ID,
				OrderItemID: item.ID,
				ProductID:   item.ProductID,
				CategoryID:  categoryOf[item.ProductID],
				ChannelID:   o.ChannelID,
				SaleDate:    o.OrderDate,
				Amount:      item.UnitPrice,
			}
			if err := e.publish(ctx, e.saleTopic, event); err != nil {
				log.Errorw("销售事件发布失败",
					"order_no", o.OrderNo, "product_id", item.ProductID, "error", err)
				if result.FirstErr == nil {
					result.FirstErr = err
				}
				continue
			}
			result.SalesPublished++
		}
	}

	return result
}

// publish 经熔断器发布单条消息并记录指标
func (e *Emitter) publish(ctx context.Context, topic string, message interface{}) error {
	_, err := e.breaker.Execute(func() (any, error) {
		return nil, e.publisher.Publish(ctx, topic, message)
	})
	if err != nil {
		metrics.PublishFailures.WithLabelValues(topic).Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// toOrderPlacedEvent 订单实体 → 事件payload
func toOrderPlacedEvent(o *order.Order) OrderPlacedEvent {
	items := make([]OrderItemPayload, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemPayload{
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}

	return OrderPlacedEvent{
		EventID:         uuid.NewString(),
		OrderID:         o.ID,
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
		Items:           items,
	}
}
