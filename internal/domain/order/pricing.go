package order

// Totals 订单金额快照
// 四项各自独立落库，下游聚合直接累加
type Totals struct {
	Amount   int64 // 商品总额(分)
	Tax      int64 // 税费(分)
	Shipping int64 // 运费(分)
	Discount int64 // 折扣(分)
}

// PricingPolicy 定价策略
// 在事务提交前同步求值一次；策略可插拔，但求值时机固定
type PricingPolicy interface {
	Evaluate(items []OrderItem) Totals
}

// FixedPolicy 固定定价策略（当前唯一实现）
// 税费=固定常量，运费=每行固定费×行数，折扣=0
type FixedPolicy struct {
	TaxAmount       int64 // 固定税费(分)
	ShippingPerLine int64 // 每行运费(分)
}

// Evaluate 计算订单金额
func (p FixedPolicy) Evaluate(items []OrderItem) Totals {
	var amount int64
	for _, item := range items {
		amount += item.UnitPrice * int64(item.Quantity)
	}

	return Totals{
		Amount:   amount,
		Tax:      p.TaxAmount,
		Shipping: p.ShippingPerLine * int64(len(items)),
		Discount: 0,
	}
}
