package user

import (
	"time"
)

// User 用户实体
// 管道里用户只作为操作人出现：库存流水的changed_by记录的就是这里的ID。
// 密码只存bcrypt哈希，不提供明文访问方法。
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（hashedPassword必须是bcrypt加密后的密码）
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
