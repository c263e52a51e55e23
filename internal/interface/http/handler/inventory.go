package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/fulfillment/internal/application/inventory"
	"github.com/xiebiao/fulfillment/internal/interface/http/dto"
	"github.com/xiebiao/fulfillment/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/response"
)

// InventoryHandler 库存HTTP处理器
type InventoryHandler struct {
	manageUseCase     *appinventory.ManageInventoryUseCase
	lowStockThreshold int
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(manageUseCase *appinventory.ManageInventoryUseCase, lowStockThreshold int) *InventoryHandler {
	return &InventoryHandler{
		manageUseCase:     manageUseCase,
		lowStockThreshold: lowStockThreshold,
	}
}

// Restock 建档/补货
// @Summary      库存建档/补货
// @Description  商品无库存行时建档，已有则累加补货（需要登录），均写Restock流水
// @Tags         库存模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RestockRequest true "补货信息"
// @Success      200 {object} response.Response{data=dto.InventoryResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /inventory [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageUseCase.Restock(c.Request.Context(), appinventory.RestockRequest{
		UserID:    middleware.MustGetUserID(c),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toInventoryDTO(result))
}

// ListLowStock 查询低库存商品
// @Summary      查询低库存商品
// @Description  返回库存不高于告警阈值的所有库存记录
// @Tags         库存模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.InventoryResponse}
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.manageUseCase.ListLowStock(c.Request.Context(), h.lowStockThreshold)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := make([]*dto.InventoryResponse, len(items))
	for i, item := range items {
		result[i] = toInventoryDTO(item)
	}
	response.Success(c, result)
}

// toInventoryDTO 应用层DTO → HTTP DTO
func toInventoryDTO(r *appinventory.InventoryResponse) *dto.InventoryResponse {
	return &dto.InventoryResponse{
		ID:              r.ID,
		ProductID:       r.ProductID,
		Quantity:        r.Quantity,
		LastRestockDate: r.LastRestockDate,
	}
}
