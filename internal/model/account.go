package model

import (
	"time"
)

// Account 资金账户表
// 记录用户的现金余额，是整个交易系统的核心数据
// 不变量：cash_balance >= 0（扣款 SQL 带余额条件，数据库层兜底）
type Account struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	CashBalance int64     `gorm:"not null;default:0" json:"cash_balance"` // 现金余额（单位：美分）
	Version     int       `gorm:"not null;default:0" json:"version"`      // 乐观锁版本号
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
