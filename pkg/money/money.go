package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// 金额在系统内部统一用 int64 美分表示，避免浮点误差。
// 本包只负责边界上的转换：请求参数（字符串）、行情接口（浮点）、展示（字符串）。

var (
	ErrInvalidAmount = errors.New("金额格式不正确")

	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseDollars 解析美元字符串为美分，如 "50.25" -> 5025
// 最多两位小数，多了直接报错而不是悄悄舍入
func ParseDollars(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2)
	// IntPart 对超出 int64 的值只取低位，必须先做范围检查
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// FromFloat 行情接口返回的浮点价格转美分
// 超出 int64 表示范围的价格返回0，调用方按非法价格处理
func FromFloat(v float64) int64 {
	d := decimal.NewFromFloat(v).Shift(2).Round(0)
	if d.GreaterThan(maxCents) || d.LessThan(minCents) {
		return 0
	}
	return d.IntPart()
}

// MulCents 股数 × 单价（美分），乘积越过 int64 时报错
// 回绕后的"小"金额能通过余额校验，所以溢出必须在入账前拦下
func MulCents(shares, price int64) (int64, error) {
	total := shares * price
	if shares != 0 && total/shares != price {
		return 0, ErrInvalidAmount
	}
	return total, nil
}

// FormatCents 美分转展示字符串，如 5025 -> "50.25"
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
