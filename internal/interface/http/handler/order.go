package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/fulfillment/internal/application/order"
	"github.com/xiebiao/fulfillment/internal/interface/http/dto"
	"github.com/xiebiao/fulfillment/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrderUseCase *apporder.PlaceOrderUseCase
	getOrderUseCase   *apporder.GetOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrderUseCase *apporder.PlaceOrderUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrderUseCase: placeOrderUseCase,
		getOrderUseCase:   getOrderUseCase,
	}
}

// PlaceOrder 下单
// @Summary      下单
// @Description  创建订单并扣减库存（需要登录）；提交后异步触发事件管道
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.PlaceOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "参数错误或库存不足"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	items := make([]apporder.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = apporder.PlaceOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.placeOrderUseCase.Execute(c.Request.Context(), apporder.PlaceOrderRequest{
		UserID:          userID,
		ChannelID:       req.ChannelID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Items:           items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.PlaceOrderResponse{
		OrderID:        result.OrderID,
		OrderNo:        result.OrderNo,
		TotalAmount:    result.TotalAmount,
		TaxAmount:      result.TaxAmount,
		ShippingAmount: result.ShippingAmount,
		DiscountAmount: result.DiscountAmount,
		Status:         result.Status,
		CreatedAt:      result.CreatedAt,
	})
}

// GetOrder 查询订单详情
// @Summary      查询订单
// @Description  根据ID查询订单及明细（需要登录）
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDetailResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的订单ID")
		return
	}

	result, err := h.getOrderUseCase.Execute(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
