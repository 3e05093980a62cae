package quote

import (
	"context"
	"errors"
)

var (
	ErrSymbolNotFound = errors.New("股票代码不存在")
	ErrUnavailable    = errors.New("行情服务不可用")
)

// Quote 一次行情快照
type Quote struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Price  int64  `json:"price"` // 当前价（单位：美分/股）
}

// Provider 行情提供方
// 交易引擎每笔操作只查询一次行情，校验和入账用同一个价格
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
