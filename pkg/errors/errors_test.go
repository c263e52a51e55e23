package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWrap_Unwrap 测试错误包装与解包
func TestWrap_Unwrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := Wrap(inner, "数据库错误")

	assert.Equal(t, ErrCodeInternal, err.Code)
	assert.True(t, errors.Is(err, inner), "Wrap后应能通过errors.Is找到内部错误")
}

// TestGetAppError 测试非AppError的兜底包装
func TestGetAppError(t *testing.T) {
	plain := fmt.Errorf("boom")
	appErr := GetAppError(plain)
	assert.Equal(t, ErrCodeInternal, appErr.Code)

	// AppError原样返回
	appErr2 := GetAppError(ErrInsufficientStock)
	assert.Equal(t, ErrCodeInsufficientStock, appErr2.Code)

	// 多层包装后仍能提取
	wrapped := fmt.Errorf("下单失败: %w", ErrProductInactive)
	appErr3 := GetAppError(wrapped)
	assert.Equal(t, ErrCodeProductInactive, appErr3.Code)
}

// TestHTTPStatus 测试错误码到HTTP状态码的映射
func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code   int
		status int
	}{
		{0, 200},
		{ErrCodeInsufficientStock, 400},
		{ErrCodeProductInactive, 400},
		{ErrCodeInvalidParams, 400},
		{ErrCodeUnauthorized, 401},
		{ErrCodeProductNotFound, 404},
		{ErrCodePlacementFailed, 500},
		{ErrCodeDelivery, 500},
	}

	for _, c := range cases {
		assert.Equal(t, c.status, HTTPStatus(c.code), "code=%d", c.code)
	}
}
