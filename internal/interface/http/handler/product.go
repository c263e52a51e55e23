package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/fulfillment/internal/application/product"
	"github.com/xiebiao/fulfillment/internal/interface/http/dto"
	"github.com/xiebiao/fulfillment/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
	"github.com/xiebiao/fulfillment/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	createProductUseCase *appproduct.CreateProductUseCase
	getProductUseCase    *appproduct.GetProductUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(
	createProductUseCase *appproduct.CreateProductUseCase,
	getProductUseCase *appproduct.GetProductUseCase,
) *ProductHandler {
	return &ProductHandler{
		createProductUseCase: createProductUseCase,
		getProductUseCase:    getProductUseCase,
	}
}

// CreateProduct 创建商品
// @Summary      创建商品
// @Description  创建商品（需要登录），SKU全局唯一
// @Tags         商品模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      400 {object} response.Response "参数错误或SKU重复"
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createProductUseCase.Execute(c.Request.Context(), appproduct.CreateProductRequest{
		UserID:      middleware.MustGetUserID(c),
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Avatar:      req.Avatar,
		Status:      req.Status,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toProductDTO(result))
}

// GetProduct 查询商品详情
// @Summary      查询商品
// @Tags         商品模块
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的商品ID")
		return
	}

	result, err := h.getProductUseCase.Execute(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toProductDTO(result))
}

// toProductDTO 应用层DTO → HTTP DTO
func toProductDTO(r *appproduct.ProductResponse) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		SKU:         r.SKU,
		Price:       r.Price,
		Avatar:      r.Avatar,
		Status:      r.Status,
		CategoryID:  r.CategoryID,
		CreatedAt:   r.CreatedAt,
	}
}
