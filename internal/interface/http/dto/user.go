package dto

// RegisterRequest HTTP注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"pass1234"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"张三"`
}

// RegisterResponse HTTP注册响应（不含密码）
type RegisterResponse struct {
	ID       uint   `json:"id" example:"1"`
	Email    string `json:"email" example:"zhangsan@example.com"`
	Nickname string `json:"nickname" example:"张三"`
}

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Password string `json:"password" binding:"required" example:"pass1234"`
}

// LoginResponse HTTP登录响应
type LoginResponse struct {
	User         RegisterResponse `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in" example:"7200"`
}
