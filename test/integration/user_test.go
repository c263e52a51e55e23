package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 用户模块集成测试

func TestUserRegister(t *testing.T) {
	RequireServer(t)

	t.Run("正常注册", func(t *testing.T) {
		email := GenerateTestEmail("register")
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "注册测试",
		}, "")
		require.Equal(t, 0, resp.Code, "注册失败: %s", resp.Message)

		var data RegisterData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.NotZero(t, data.ID)
		assert.Equal(t, email, data.Email)
	})

	t.Run("重复邮箱应失败", func(t *testing.T) {
		email := GenerateTestEmail("duplicate")
		req := map[string]string{
			"email":    email,
			"password": "Test1234",
			"nickname": "重复测试",
		}

		resp1 := PostJSON(t, BaseURL+"/users/register", req, "")
		require.Equal(t, 0, resp1.Code)

		resp2 := PostJSON(t, BaseURL+"/users/register", req, "")
		assert.NotEqual(t, 0, resp2.Code, "重复邮箱应该被拒绝")
	})

	t.Run("弱密码应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
			"email":    GenerateTestEmail("weak"),
			"password": "12345678", // 纯数字
			"nickname": "弱密码测试",
		}, "")
		assert.NotEqual(t, 0, resp.Code, "纯数字密码应该被拒绝")
	})
}

func TestUserLogin(t *testing.T) {
	RequireServer(t)

	email, _ := RegisterTestUser(t, "login_tester")

	t.Run("错误密码应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "Wrong9999",
		}, "")
		assert.NotEqual(t, 0, resp.Code, "错误密码应该登录失败")
	})

	t.Run("登录后可访问受保护接口", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
			"email":    email,
			"password": "Test1234",
		}, "")
		require.Equal(t, 0, resp.Code, "登录失败: %s", resp.Message)

		var data LoginData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		require.NotEmpty(t, data.AccessToken)

		salesResp := GetJSON(t, BaseURL+"/sales", data.AccessToken)
		assert.Equal(t, 0, salesResp.Code, "带token访问受保护接口应该成功")
	})
}
