package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	redisinfra "github.com/xiebiao/fulfillment/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/fulfillment/pkg/logger"
	"github.com/xiebiao/fulfillment/pkg/metrics"
)

// AlertHandler SSE告警桥
// 把Redis pub/sub频道的消息原样转成SSE帧推给浏览器。
// 通知只面向"此刻在线"的订阅者：断线期间的消息不补发。
type AlertHandler struct {
	bus             *redisinfra.Bus
	incomingChannel string
	lowStockChannel string
}

// NewAlertHandler 创建告警桥处理器
func NewAlertHandler(bus *redisinfra.Bus, incomingChannel, lowStockChannel string) *AlertHandler {
	return &AlertHandler{
		bus:             bus,
		incomingChannel: incomingChannel,
		lowStockChannel: lowStockChannel,
	}
}

// StreamLowStock 低库存告警流
// @Summary      低库存告警SSE流
// @Description  连接后先收到connected帧，之后每条告警一个data帧
// @Tags         告警模块
// @Produce      text/event-stream
// @Success      200 {string} string "SSE流"
// @Router       /alerts/low-stock [get]
func (h *AlertHandler) StreamLowStock(c *gin.Context) {
	h.stream(c, h.lowStockChannel)
}

// StreamIncomingOrders 新订单通知流
// @Summary      新订单SSE流
// @Description  连接后先收到connected帧，之后每个新订单一个data帧
// @Tags         告警模块
// @Produce      text/event-stream
// @Success      200 {string} string "SSE流"
// @Router       /alerts/incoming-order [get]
func (h *AlertHandler) StreamIncomingOrders(c *gin.Context) {
	h.stream(c, h.incomingChannel)
}

// stream SSE主循环：订阅→connected帧→逐条转发→断开清理
// 每个连接单独SUBSCRIBE；客户端断开（请求context取消）或
// 订阅channel关闭即退出，defer保证退订
func (h *AlertHandler) stream(c *gin.Context, channel string) {
	metrics.SSEClients.WithLabelValues(channel).Inc()
	defer metrics.SSEClients.WithLabelValues(channel).Dec()

	sub := h.bus.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // 反向代理不要缓冲

	// 握手帧：告知客户端订阅已建立
	fmt.Fprintf(c.Writer, "data: %s\n\n", `{"status": "connected"}`)
	c.Writer.Flush()

	log := logger.Named("sse")
	log.Infow("SSE客户端接入", "channel", channel, "client", c.ClientIP())

	msgCh := sub.Channel()
	for {
		select {
		case <-c.Request.Context().Done():
			log.Infow("SSE客户端断开", "channel", channel, "client", c.ClientIP())
			return

		case msg, ok := <-msgCh:
			if !ok {
				log.Warnw("pub/sub订阅中断", "channel", channel)
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", msg.Payload)
			c.Writer.Flush()
		}
	}
}
