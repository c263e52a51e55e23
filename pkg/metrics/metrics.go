// Package metrics 提供基于Prometheus的事件管道指标
//
// 指标设计（围绕异步管道的可观测性）：
// - Counter：下单数、事件发布/消费数、低库存告警数、快照批次数
// - Histogram：下单事务耗时、快照批处理耗时
//
// 抓取方式：GET /metrics（promhttp），由Prometheus Server周期拉取
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersPlaced 成功提交的订单数
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_orders_placed_total",
		Help: "成功提交的订单总数",
	})

	// OrderPlacementDuration 下单事务耗时（秒）
	OrderPlacementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fulfillment_order_placement_duration_seconds",
		Help:    "下单事务耗时分布",
		Buckets: prometheus.DefBuckets,
	})

	// EventsPublished 发布到broker的事件数，topic=order.placed|sale.recorded
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_events_published_total",
		Help: "发布到消息broker的事件总数",
	}, []string{"topic"})

	// PublishFailures 发布失败数（订单已提交但事件丢失，即投递缺口）
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_publish_failures_total",
		Help: "broker发布失败总数",
	}, []string{"topic"})

	// MessagesConsumed 消费的消息数，consumer=order|sale
	MessagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_messages_consumed_total",
		Help: "各消费者处理的消息总数",
	}, []string{"consumer"})

	// ConsumerErrors 消费者本地处理失败数（已记录并继续）
	ConsumerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_consumer_errors_total",
		Help: "消费者处理失败总数",
	}, []string{"consumer"})

	// LowStockAlerts 触发的低库存告警数
	LowStockAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_low_stock_alerts_total",
		Help: "发布的低库存告警总数",
	})

	// SnapshotBatches 聚合完成的快照批次数
	SnapshotBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_snapshot_batches_total",
		Help: "已持久化的销售快照批次总数",
	})

	// SnapshotQueueLength 最近一次轮询观测到的工作队列长度
	SnapshotQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fulfillment_snapshot_queue_length",
		Help: "快照工作队列当前长度（轮询采样）",
	})

	// SSEClients 当前连接的告警流客户端数，channel=low-stock|incoming-order
	SSEClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fulfillment_sse_clients",
		Help: "当前连接的SSE客户端数",
	}, []string{"channel"})
)

// Handler 返回/metrics的gin处理函数
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
