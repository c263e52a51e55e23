package handler

import (
	"github.com/gin-gonic/gin"

	appsales "github.com/xiebiao/fulfillment/internal/application/sales"
	"github.com/xiebiao/fulfillment/internal/interface/http/dto"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/response"
)

// SalesHandler 销售数据HTTP处理器
// 只读接口：数据由事件管道异步生成
type SalesHandler struct {
	queryUseCase *appsales.QuerySalesUseCase
}

// NewSalesHandler 创建销售数据处理器
func NewSalesHandler(queryUseCase *appsales.QuerySalesUseCase) *SalesHandler {
	return &SalesHandler{queryUseCase: queryUseCase}
}

// ListSales 分页查询销售记录
// @Summary      查询销售记录
// @Description  每条记录对应售出一件商品，由销售事件消费者异步落库
// @Tags         销售模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页条数" default(20)
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	query.Normalize()

	list, total, err := h.queryUseCase.ListSales(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, query.Page, query.PageSize)
}

// ListSnapshots 分页查询销售快照
// @Summary      查询销售快照
// @Description  每个快照聚合固定批量的订单事件，由快照聚合器异步生成
// @Tags         销售模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页条数" default(20)
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /sales/snapshots [get]
func (h *SalesHandler) ListSnapshots(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	query.Normalize()

	list, total, err := h.queryUseCase.ListSnapshots(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, list, total, query.Page, query.PageSize)
}
