package product

import (
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrProductInactive 商品未上架，不可下单
	ErrProductInactive = apperrors.New(apperrors.ErrCodeProductInactive, "商品未上架")

	// ErrSKUDuplicate SKU重复
	ErrSKUDuplicate = apperrors.New(apperrors.ErrCodeSKUDuplicate, "SKU已存在")
)
