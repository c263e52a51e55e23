package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// Queue Redis列表实现的FIFO工作队列
// 设计说明：
// 1. RPUSH入队、LPOP出队，保证先进先出
// 2. PopBatch用LPOP count单命令原子弹出一批：
//    两个消费者实例并发拉取时，一批消息不会被拆散
// 3. 弹出即消费：处理失败不回队（接受丢失，换取实现简单）
type Queue struct {
	client *redis.Client
	key    string
}

// NewQueue 创建工作队列
func NewQueue(client *redis.Client, key string) *Queue {
	return &Queue{client: client, key: key}
}

// Push 入队一条消息
func (q *Queue) Push(ctx context.Context, payload []byte) error {
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "消息入队失败")
	}
	return nil
}

// Len 返回队列当前长度
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "查询队列长度失败")
	}
	return n, nil
}

// PopBatch 原子弹出最多count条消息
// 队列为空时返回空切片（不报错），由调用方决定轮询节奏
func (q *Queue) PopBatch(ctx context.Context, count int) ([][]byte, error) {
	values, err := q.client.LPopCount(ctx, q.key, count).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "批量出队失败")
	}

	batch := make([][]byte, len(values))
	for i, v := range values {
		batch[i] = []byte(v)
	}
	return batch, nil
}
