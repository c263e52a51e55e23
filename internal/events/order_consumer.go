package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/xiebiao/fulfillment/internal/domain/inventory"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
	"go.uber.org/zap"
)

// MessageSource 消息来源端口（*mq.Consumer实现）
type MessageSource interface {
	Consume(ctx context.Context, handler func([]byte) error) error
}

// ChannelPublisher 实时通知端口（redis.Bus实现）
// fire-and-forget：没有订阅者时消息直接丢弃
type ChannelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// BatchQueue 工作队列入队端口（redis.Queue实现）
type BatchQueue interface {
	Push(ctx context.Context, payload []byte) error
}

// StockReader 库存读取端口（inventory.Repository的只读子集）
type StockReader interface {
	FindByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error)
}

// OrderConsumer 订单事件消费者
// 消费order.placed消息，对每条执行三个动作：
// 1. 把原始payload转发到新订单频道（SSE桥的上游）
// 2. 把原始payload推入快照工作队列（聚合器的上游）
// 3. 逐行复查库存，≤阈值则发低库存告警
//
// 错误策略：动作间互不阻断，转发失败不影响入队，入队失败不影响
// 告警检查；所有失败记日志+指标后Ack（重投不能修复序列化错误，
// 而Redis短暂故障丢几条通知是可接受的）。
type OrderConsumer struct {
	source          MessageSource
	bus             ChannelPublisher
	queue           BatchQueue
	stock           StockReader
	incomingChannel string
	lowStockChannel string
	threshold       int
	log             *zap.SugaredLogger
}

// NewOrderConsumer 创建订单事件消费者
func NewOrderConsumer(
	source MessageSource,
	bus ChannelPublisher,
	queue BatchQueue,
	stock StockReader,
	incomingChannel, lowStockChannel string,
	threshold int,
) *OrderConsumer {
	return &OrderConsumer{
		source:          source,
		bus:             bus,
		queue:           queue,
		stock:           stock,
		incomingChannel: incomingChannel,
		lowStockChannel: lowStockChannel,
		threshold:       threshold,
		log:             logger.Named("order-consumer"),
	}
}

// Run 运行消费循环，阻塞直到ctx取消
func (c *OrderConsumer) Run(ctx context.Context) error {
	c.log.Infow("订单事件消费者", "state", "STARTING")
	c.log.Infow("订单事件消费者", "state", "LISTENING")

	err := c.source.Consume(ctx, func(body []byte) error {
		return c.handle(ctx, body)
	})

	c.log.Infow("订单事件消费者", "state", "STOPPING")
	return err
}

// handle 处理单条订单事件
// 恒定返回nil（Ack）：失败已在本地消化，不触发broker重投
func (c *OrderConsumer) handle(ctx context.Context, body []byte) error {
	metrics.MessagesConsumed.WithLabelValues("order").Inc()

	// 1. 原样转发到新订单频道
	if err := c.bus.Publish(ctx, c.incomingChannel, body); err != nil {
		metrics.ConsumerErrors.WithLabelValues("order").Inc()
		c.log.Errorw("转发新订单通知失败", "error", err)
	}

	// 2. 原样推入快照工作队列
	if err := c.queue.Push(ctx, body); err != nil {
		metrics.ConsumerErrors.WithLabelValues("order").Inc()
		c.log.Errorw("订单事件入队失败", "error", err)
	}

	// 3. 逐行复查库存
	var event OrderPlacedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.ConsumerErrors.WithLabelValues("order").Inc()
		c.log.Errorw("订单事件反序列化失败", "error", err)
		return nil // 毒消息，重投无意义
	}
	c.checkLowStock(ctx, &event)

	return nil
}

// checkLowStock 对订单的每个商品复查当前库存，触发低库存告警
// 读的是此刻库存而非下单时库存：告警反映最新状态
func (c *OrderConsumer) checkLowStock(ctx context.Context, event *OrderPlacedEvent) {
	for _, item := range event.Items {
		inv, err := c.stock.FindByProductID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, inventory.ErrInventoryNotFound) {
				continue // 库存行已删除，无从告警
			}
			metrics.ConsumerErrors.WithLabelValues("order").Inc()
			c.log.Errorw("复查库存失败", "product_id", item.ProductID, "error", err)
			continue
		}

		if !inv.IsLowStock(c.threshold) {
			continue
		}

		alert := LowStockAlert{
			ProductID: item.ProductID,
			Quantity:  inv.Quantity,
			Threshold: c.threshold,
			OrderNo:   event.OrderNo,
			AlertedAt: time.Now(),
		}
		payload, err := json.Marshal(alert)
		if err != nil {
			c.log.Errorw("告警序列化失败", "product_id", item.ProductID, "error", err)
			continue
		}

		if err := c.bus.Publish(ctx, c.lowStockChannel, payload); err != nil {
			metrics.ConsumerErrors.WithLabelValues("order").Inc()
			c.log.Errorw("低库存告警发布失败", "product_id", item.ProductID, "error", err)
			continue
		}

		metrics.LowStockAlerts.Inc()
		c.log.Warnw("低库存告警",
			"product_id", item.ProductID, "quantity", inv.Quantity, "threshold", c.threshold)
	}
}
