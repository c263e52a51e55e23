package order

import (
	"fmt"
	"math/rand"
	"time"
)

const orderNoCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateOrderNo 生成订单号
// 格式：ORD-日期-4位随机大写字母/数字
// 示例：ORD-20251103-X7K2
//
// 4位随机后缀在同一天内存在撞号概率（36^4≈168万），
// 唯一性最终由orders.order_no的UNIQUE索引兜底，
// 插入撞号时由调用方换号重试（见PlaceOrderUseCase）。
func GenerateOrderNo() string {
	datePart := time.Now().Format("20060102")
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = orderNoCharset[rand.Intn(len(orderNoCharset))]
	}
	return fmt.Sprintf("ORD-%s-%s", datePart, suffix)
}
