package integration

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 订单流集成测试
// 覆盖同步侧（事务下单、悲观锁防超卖）和异步侧（销售记录
// 经broker→消费者→MySQL的最终一致落库）。
// 金额断言依赖config.yaml的默认定价参数：税120分/单，运费99分/行。

func placeOrderReq(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"channel_id":       2,
		"customer_name":    "集成测试客户",
		"customer_email":   "customer@test.com",
		"shipping_address": "上海市浦东新区XX路1号",
		"items":            items,
	}
}

func orderItem(productID uint, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	}
}

// TestOrderPlacement 测试下单接口
func TestOrderPlacement(t *testing.T) {
	RequireServer(t)
	_, token := RegisterTestUser(t, "order_creator")

	t.Run("正常下单", func(t *testing.T) {
		productID1 := CreateTestProduct(t, token, "保温杯", 1000, 50)
		productID2 := CreateTestProduct(t, token, "马克杯", 500, 50)

		resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(
			orderItem(productID1, 2),
			orderItem(productID2, 3),
		), token)
		require.Equal(t, 0, resp.Code, "下单应该成功: %s", resp.Message)

		var data OrderData
		require.NoError(t, json.Unmarshal(resp.Data, &data))

		assert.NotZero(t, data.OrderID)
		assert.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{4}$`, data.OrderNo, "订单号格式")
		assert.Equal(t, int64(3500), data.TotalAmount, "商品总额 = 1000*2 + 500*3")
		assert.Equal(t, int64(120), data.TaxAmount, "固定税费")
		assert.Equal(t, int64(198), data.ShippingAmount, "运费 = 99*2行")
		assert.Equal(t, int64(0), data.DiscountAmount)

		// 下单即扣库存（同步侧）
		detailResp := GetJSON(t, BaseURL+"/orders/"+itoa(data.OrderID), token)
		require.Equal(t, 0, detailResp.Code, "查询订单详情失败: %s", detailResp.Message)
	})

	t.Run("未登录不能下单", func(t *testing.T) {
		productID := CreateTestProduct(t, token, "测试商品", 1000, 10)

		resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 1)), "")
		assert.NotEqual(t, 0, resp.Code, "未登录应该失败")
	})

	t.Run("商品不存在应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(999999999, 1)), token)
		assert.NotEqual(t, 0, resp.Code, "商品不存在应该失败")
	})

	t.Run("购买数量为0应失败", func(t *testing.T) {
		productID := CreateTestProduct(t, token, "测试商品", 1000, 10)

		resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 0)), token)
		assert.NotEqual(t, 0, resp.Code, "数量为0应该被参数校验拒绝")
	})

	t.Run("库存不足应失败且不产生半成品订单", func(t *testing.T) {
		productID := CreateTestProduct(t, token, "库存紧张商品", 1000, 5)

		resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 8)), token)
		assert.NotEqual(t, 0, resp.Code, "库存不足应该失败")

		// 事务回滚：原库存仍可完整买走
		resp2 := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 5)), token)
		assert.Equal(t, 0, resp2.Code, "回滚后原库存应该完整保留: %s", resp2.Message)
	})
}

// TestOrderStockControl 测试多次下单逐步扣减库存
func TestOrderStockControl(t *testing.T) {
	RequireServer(t)
	_, token := RegisterTestUser(t, "stock_tester")

	productID := CreateTestProduct(t, token, "扣减测试商品", 800, 10)

	resp1 := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 3)), token)
	require.Equal(t, 0, resp1.Code, "第一次下单应该成功(剩余7)")

	resp2 := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 4)), token)
	require.Equal(t, 0, resp2.Code, "第二次下单应该成功(剩余3)")

	resp3 := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 5)), token)
	assert.NotEqual(t, 0, resp3.Code, "第三次下单应该失败(库存3不够5)")

	resp4 := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 3)), token)
	assert.Equal(t, 0, resp4.Code, "第四次下单应该成功(恰好清零)")
}

// TestOrderConcurrency 并发下单防超卖
// 库存10，20个并发请求各买1件，悲观锁保证恰好10个成功
func TestOrderConcurrency(t *testing.T) {
	RequireServer(t)
	_, token := RegisterTestUser(t, "concurrency_tester")

	productID := CreateTestProduct(t, token, "并发测试商品", 1000, 10)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successCount int
		failCount    int
	)

	concurrency := 20
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 1)), token)

			mu.Lock()
			if resp.Code == 0 {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	t.Logf("并发结果: 成功%d 失败%d", successCount, failCount)
	assert.Equal(t, 10, successCount, "成功订单数应该等于库存数")
	assert.Equal(t, 10, failCount, "超出库存的请求应该全部失败")
}

// TestSalesPipeline 测试异步销售落库
// 下单后销售记录经 broker → 销售消费者 → MySQL，最终一致。
// 一条销售记录对应售出一件商品：买3件产生3条记录。
func TestSalesPipeline(t *testing.T) {
	RequireServer(t)
	_, token := RegisterTestUser(t, "pipeline_tester")

	baseline := countSales(t, token)

	productID := CreateTestProduct(t, token, "管道测试商品", 1200, 10)
	resp := PostJSON(t, BaseURL+"/orders", placeOrderReq(orderItem(productID, 3)), token)
	require.Equal(t, 0, resp.Code, "下单失败: %s", resp.Message)

	require.Eventually(t, func() bool {
		return countSales(t, token) >= baseline+3
	}, 15*time.Second, 500*time.Millisecond, "3条销售记录应该在15秒内落库")
}

func countSales(t *testing.T, token string) int64 {
	t.Helper()
	resp := GetJSON(t, BaseURL+"/sales?page=1&page_size=1", token)
	require.Equal(t, 0, resp.Code, "查询销售记录失败: %s", resp.Message)

	var page PageData
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	return page.Total
}

// TestAlertStreamHandshake 测试SSE告警流握手
// 连接后第一帧必须是connected状态帧
func TestAlertStreamHandshake(t *testing.T) {
	RequireServer(t)

	req, err := http.NewRequest("GET", BaseURL+"/alerts/incoming-order", nil)
	require.NoError(t, err)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "SSE连接失败")
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err, "读取握手帧失败")

	require.True(t, strings.HasPrefix(line, "data: "), "SSE帧格式: %q", line)

	var frame struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &frame))
	assert.Equal(t, "connected", frame.Status)
}
