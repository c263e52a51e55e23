package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFixedPolicy_Evaluate 测试固定定价策略
func TestFixedPolicy_Evaluate(t *testing.T) {
	policy := FixedPolicy{TaxAmount: 120, ShippingPerLine: 99}

	items := []OrderItem{
		{ProductID: 1, Quantity: 2, UnitPrice: 1000}, // 20.00元
		{ProductID: 2, Quantity: 3, UnitPrice: 500},  // 15.00元
	}

	totals := policy.Evaluate(items)

	assert.Equal(t, int64(3500), totals.Amount, "商品总额=Σ(单价×数量)")
	assert.Equal(t, int64(120), totals.Tax, "税费为固定常量")
	assert.Equal(t, int64(198), totals.Shipping, "运费=每行99分×2行")
	assert.Equal(t, int64(0), totals.Discount)
}

// TestFixedPolicy_Evaluate_ShippingByLineNotQuantity 运费按行数计，与件数无关
func TestFixedPolicy_Evaluate_ShippingByLineNotQuantity(t *testing.T) {
	policy := FixedPolicy{TaxAmount: 120, ShippingPerLine: 99}

	// 一行买100件，运费仍是一行的钱
	totals := policy.Evaluate([]OrderItem{{ProductID: 1, Quantity: 100, UnitPrice: 10}})

	assert.Equal(t, int64(99), totals.Shipping)
	assert.Equal(t, int64(1000), totals.Amount)
}
