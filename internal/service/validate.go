package service

import (
	"regexp"
	"strconv"
	"strings"

	"brokerage/pkg/money"
)

// handler 层只负责取参，所有语义校验都在这里：
// 类型转换失败、零值、负值统一报参数错误，不做"空字符串当零"之类的猜测。

// 股票代码：大写字母、数字、点、横线，最长16位
// 代码会拼进行情接口的 URL 路径，不在这个集合里的字符一律拒绝
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.-]{1,16}$`)

// 单笔股数上限，配合 money.MulCents 的溢出检查，保证成交额不会越过 int64
const maxTradeShares = 1_000_000_000

// normalizeSymbol 股票代码统一大写并校验字符集
func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolPattern.MatchString(symbol) {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}

// parseShares 股数必须是正整数（不支持碎股），且不超过单笔上限
func parseShares(raw string) (int64, error) {
	shares, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || shares <= 0 || shares > maxTradeShares {
		return 0, ErrInvalidShares
	}
	return shares, nil
}

// parseAmount 金额必须大于0，最多两位小数，返回美分
func parseAmount(raw string) (int64, error) {
	cents, err := money.ParseDollars(raw)
	if err != nil || cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
