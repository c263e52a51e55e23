package order

import (
	apperrors "github.com/xiebiao/fulfillment/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrOrderNoConflict 订单号冲突（随机后缀撞号，重试耗尽）
	ErrOrderNoConflict = apperrors.New(apperrors.ErrCodePlacementFailed, "订单号生成冲突，请重试")
)
