package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/fulfillment/internal/domain/sales"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
)

// SnapshotQueue 工作队列消费端口（redis.Queue实现）
type SnapshotQueue interface {
	Len(ctx context.Context) (int64, error)
	PopBatch(ctx context.Context, count int) ([][]byte, error)
}

// SnapshotSink 快照写入端口（sales.Repository的子集）
type SnapshotSink interface {
	CreateSnapshot(ctx context.Context, snap *sales.Snapshot) error
}

// Aggregator 快照聚合器
// 轮询快照工作队列：攒够一个批量就原子弹出、聚合、落库一条快照；
// 不足批量则休眠一个轮询间隔。没有时间窗口兜底：队列长期停在
// 9条时这9条就一直等着，属于既定行为。
//
// 多副本安全：PopBatch是单条LPOP count命令，两个实例同时弹出
// 也不会拆散同一批。
//
// 错误策略：已弹出的批次落库失败时记日志后丢弃（不回队），
// 接受统计缺口，换取不引入重复快照。
type Aggregator struct {
	queue        SnapshotQueue
	sink         SnapshotSink
	batchSize    int
	pollInterval time.Duration
	log          *zap.SugaredLogger
}

// NewAggregator 创建快照聚合器
func NewAggregator(queue SnapshotQueue, sink SnapshotSink, batchSize int, pollInterval time.Duration) *Aggregator {
	return &Aggregator{
		queue:        queue,
		sink:         sink,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		log:          logger.Named("aggregator"),
	}
}

// Run 运行聚合循环，阻塞直到ctx取消
func (a *Aggregator) Run(ctx context.Context) error {
	a.log.Infow("快照聚合器", "state", "STARTING",
		"batch_size", a.batchSize, "poll_interval", a.pollInterval)
	a.log.Infow("快照聚合器", "state", "LISTENING")

	for {
		select {
		case <-ctx.Done():
			a.log.Infow("快照聚合器", "state", "STOPPING")
			return nil
		default:
		}

		ready, err := a.poll(ctx)
		if err != nil {
			a.log.Errorw("轮询工作队列失败", "error", err)
		}

		// 攒够一批时立即进入下一轮，把积压尽快消化掉
		if ready {
			continue
		}

		select {
		case <-ctx.Done():
			a.log.Infow("快照聚合器", "state", "STOPPING")
			return nil
		case <-time.After(a.pollInterval):
		}
	}
}

// poll 执行一轮检查，返回是否处理了一个批次
func (a *Aggregator) poll(ctx context.Context) (bool, error) {
	length, err := a.queue.Len(ctx)
	if err != nil {
		return false, err
	}
	metrics.SnapshotQueueLength.Set(float64(length))

	if length < int64(a.batchSize) {
		return false, nil
	}

	batch, err := a.queue.PopBatch(ctx, a.batchSize)
	if err != nil {
		return false, err
	}
	if len(batch) == 0 {
		// 并发副本抢先弹走了这一批
		return false, nil
	}

	snap, err := computeSnapshot(batch)
	if err != nil {
		metrics.ConsumerErrors.WithLabelValues("aggregator").Inc()
		a.log.Errorw("聚合批次失败，批次丢弃", "batch_size", len(batch), "error", err)
		return true, nil
	}

	if err := a.sink.CreateSnapshot(ctx, snap); err != nil {
		metrics.ConsumerErrors.WithLabelValues("aggregator").Inc()
		a.log.Errorw("快照落库失败，批次丢弃", "batch_size", len(batch), "error", err)
		return true, nil
	}

	metrics.SnapshotBatches.Inc()
	a.log.Infow("销售快照已生成",
		"total_sales", snap.TotalSales,
		"total_revenue", snap.TotalRevenue,
		"total_products", snap.TotalProducts)
	return true, nil
}

// computeSnapshot 对一批订单事件做纯聚合计算
// 批内所有事件都无法解析时才算失败；个别坏消息跳过并按实际
// 解析成功的条数统计
func computeSnapshot(batch [][]byte) (*sales.Snapshot, error) {
	snap := &sales.Snapshot{
		SnapshotDate: time.Now(),
		Interval:     sales.SnapshotIntervalBatch,
	}

	productSet := make(map[uint]struct{})

	for _, payload := range batch {
		var event OrderPlacedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.Named("aggregator").Errorw("批内消息解析失败，跳过", "error", err)
			continue
		}

		snap.TotalSales++
		snap.TotalRevenue += event.TotalAmount
		snap.TotalTax += event.TaxAmount
		snap.TotalShipping += event.ShippingAmount
		snap.TotalDiscount += event.DiscountAmount

		for _, item := range event.Items {
			snap.TotalQuantity += item.Quantity
			productSet[item.ProductID] = struct{}{}
		}
	}

	if snap.TotalSales == 0 {
		return nil, apperrors.New(apperrors.ErrCodeConsumer, "批内无可解析的订单事件")
	}

	snap.TotalProducts = len(productSet)
	snap.AverageSales = int64(snap.TotalSales)
	snap.AverageRevenue = snap.TotalRevenue / int64(snap.TotalSales)

	return snap, nil
}
