package service

import (
	"errors"
)

// 业务错误统一用哨兵值定义，handler 层通过 errors.Is 映射到响应码。
// 参数类（symbol/股数/金额）错误在进入账务流程前就返回，不产生任何副作用。
var (
	ErrInvalidSymbol      = errors.New("股票代码不合法")
	ErrInvalidShares      = errors.New("股数必须为正整数")
	ErrInvalidAmount      = errors.New("金额必须为正数，最多两位小数")
	ErrInsufficientShares = errors.New("持仓股数不足")
	ErrConflict           = errors.New("系统繁忙，请重试")
	ErrInvalidUsername    = errors.New("用户名不能为空")
	ErrInvalidPassword    = errors.New("密码不能为空")
	ErrUsernameTaken      = errors.New("用户名已存在")
)
