package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 测试依赖一个已启动的完整服务栈（API + MySQL + Redis + RabbitMQ），
// 服务不可达时测试跳过而非失败。

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// RequireServer 服务不可达时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("服务未启动，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProductData 商品响应数据
type ProductData struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	Price      int64  `json:"price"`
	Status     string `json:"status"`
	CategoryID uint   `json:"category_id"`
}

// InventoryData 库存响应数据
type InventoryData struct {
	ID        uint `json:"id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderData 下单响应数据
type OrderData struct {
	OrderID        uint   `json:"order_id"`
	OrderNo        string `json:"order_no"`
	TotalAmount    int64  `json:"total_amount"`
	TaxAmount      int64  `json:"tax_amount"`
	ShippingAmount int64  `json:"shipping_amount"`
	DiscountAmount int64  `json:"discount_amount"`
}

// PageData 分页响应数据
type PageData struct {
	List  json.RawMessage `json:"list"`
	Total int64           `json:"total"`
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	t.Helper()
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// GenerateTestEmail 生成唯一的测试邮箱
// 时间戳保证重复运行不撞唯一索引
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestSKU 生成唯一的测试SKU
func GenerateTestSKU() string {
	return fmt.Sprintf("SKU-IT-%d", time.Now().UnixNano())
}

// RegisterTestUser 注册测试用户并返回Token
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	t.Helper()
	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// CreateTestProduct 创建上架商品并铺货，返回商品ID
// 商品创建为ACTIVE状态，库存通过补货接口建档
func CreateTestProduct(t *testing.T, token string, name string, price int64, stock int) uint {
	t.Helper()
	productReq := map[string]interface{}{
		"name":        name,
		"sku":         GenerateTestSKU(),
		"price":       price,
		"status":      "ACTIVE",
		"category_id": 1,
		"description": "集成测试用商品",
	}

	productResp := PostJSON(t, BaseURL+"/products", productReq, token)
	require.Equal(t, 0, productResp.Code, "创建商品失败: %s", productResp.Message)

	var productData ProductData
	err := json.Unmarshal(productResp.Data, &productData)
	require.NoError(t, err, "解析商品响应失败")

	restockReq := map[string]interface{}{
		"product_id": productData.ID,
		"quantity":   stock,
	}
	restockResp := PostJSON(t, BaseURL+"/inventory", restockReq, token)
	require.Equal(t, 0, restockResp.Code, "库存建档失败: %s", restockResp.Message)

	return productData.ID
}
