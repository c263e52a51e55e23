package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突(错误码1062)
// 订单号撞号、SKU/邮箱重复都靠它识别
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 驱动未翻译成gorm.ErrDuplicatedKey时退回到错误文本匹配
	return strings.Contains(err.Error(), "Duplicate entry")
}
