package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/xiebiao/fulfillment/internal/domain/sales"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
)

// SaleSink 销售记录写入端口（sales.Repository的子集）
type SaleSink interface {
	CreateSale(ctx context.Context, sale *sales.SaleRecord) error
}

// SaleConsumer 销售事件消费者
// 消费sale.recorded消息，每条插入一行销售记录。
//
// 错误策略：插入失败时记日志+指标后仍然Ack。销售记录是统计数据，
// 不值得让毒消息堵死队列；丢失的记录可由订单表重放补齐。
type SaleConsumer struct {
	source MessageSource
	sink   SaleSink
	log    *zap.SugaredLogger
}

// NewSaleConsumer 创建销售事件消费者
func NewSaleConsumer(source MessageSource, sink SaleSink) *SaleConsumer {
	return &SaleConsumer{
		source: source,
		sink:   sink,
		log:    logger.Named("sale-consumer"),
	}
}

// Run 运行消费循环，阻塞直到ctx取消
func (c *SaleConsumer) Run(ctx context.Context) error {
	c.log.Infow("销售事件消费者", "state", "STARTING")
	c.log.Infow("销售事件消费者", "state", "LISTENING")

	err := c.source.Consume(ctx, func(body []byte) error {
		return c.handle(ctx, body)
	})

	c.log.Infow("销售事件消费者", "state", "STOPPING")
	return err
}

// handle 处理单条销售事件，恒定返回nil（Ack）
func (c *SaleConsumer) handle(ctx context.Context, body []byte) error {
	metrics.MessagesConsumed.WithLabelValues("sale").Inc()

	var event SaleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.ConsumerErrors.WithLabelValues("sale").Inc()
		c.log.Errorw("销售事件反序列化失败", "error", err)
		return nil
	}

	record := &sales.SaleRecord{
		OrderID:     event.OrderID,
		OrderItemID: event.OrderItemID,
		ProductID:   event.ProductID,
		CategoryID:  event.CategoryID,
		ChannelID:   event.ChannelID,
		SaleDate:    event.SaleDate,
		Amount:      event.Amount,
	}

	if err := c.sink.CreateSale(ctx, record); err != nil {
		metrics.ConsumerErrors.WithLabelValues("sale").Inc()
		c.log.Errorw("销售记录落库失败",
			"order_id", event.OrderID, "product_id", event.ProductID, "error", err)
		return nil // 本地回滚已完成，确认消息继续消费
	}

	return nil
}
