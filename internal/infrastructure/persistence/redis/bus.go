package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// Bus Redis发布订阅总线
// 设计说明：
// 1. PUBLISH是fire-and-forget：没有订阅者时消息直接丢弃，
//    仅用于"此刻在线才需要知道"的通知（SSE告警推送）
// 2. 持久化的消息走broker（RabbitMQ），不走这里
type Bus struct {
	client *redis.Client
}

// NewBus 创建发布订阅总线
func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

// Publish 向频道发布消息
// 返回值不含订阅者数量，调用方不关心有没有人在听
func (b *Bus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "发布频道消息失败")
	}
	return nil
}

// Subscribe 订阅频道
// 返回的PubSub由调用方负责Close；消息经由PubSub.Channel()消费。
// SSE处理器为每个连接单独Subscribe，断开时Close即完成清理。
func (b *Bus) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return b.client.Subscribe(ctx, channel)
}
