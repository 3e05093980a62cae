package model

import (
	"time"
)

// ============================================================================
// 交易方向常量
// ============================================================================

const (
	TradeSideBuy  = "BUY"  // 买入
	TradeSideSell = "SELL" // 卖出
)

// ============================================================================
// 交易流水实体
// ============================================================================

// StockTransaction 股票交易流水表
// 每一笔买入/卖出各占一行，是持仓和历史记录的唯一事实来源
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 持仓由流水折算得出，改了流水等于改历史
// 2. shares 带符号：买入为正，卖出为负，某只股票的持仓 = SUM(shares)
// 3. price 是成交价（下单时行情的快照），估值时用实时价，两者不要混
// 4. 记录交易前后余额 —— 便于对账
type StockTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TradeNo       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"trade_no"` // 交易号（全局唯一）
	UserID        int64     `gorm:"index;not null" json:"user_id"`
	Symbol        string    `gorm:"type:varchar(16);index;not null" json:"symbol"` // 股票代码（统一大写）
	CompanyName   string    `gorm:"type:varchar(128);not null" json:"company_name"`
	Shares        int64     `gorm:"not null" json:"shares"` // 股数（正数买入，负数卖出）
	Price         int64     `gorm:"not null" json:"price"`  // 成交价（单位：美分/股）
	BalanceBefore int64     `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64     `gorm:"not null" json:"balance_after"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (StockTransaction) TableName() string {
	return "stock_transaction"
}

// Position 持仓（派生数据，不落库）
// 由交易流水按 symbol 折算：SUM(shares) > 0 才算持有
type Position struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Shares      int64  `json:"shares"`
	Price       int64  `json:"price,omitempty"`        // 实时价（估值时填充，美分）
	MarketValue int64  `json:"market_value,omitempty"` // shares * 实时价（美分）
}
