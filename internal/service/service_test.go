package service

import (
	"fmt"
	"testing"

	"brokerage/internal/config"
	"brokerage/internal/infrastructure/lock"
	"brokerage/internal/model"
	"brokerage/internal/quote"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存库
// 单连接即可：服务内部事务里的读写都走事务句柄，不会申请第二个连接
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.StockTransaction{},
		&model.OutboxMessage{},
	))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{TradeResult: "trade_result"},
		},
		Business: config.BusinessConfig{
			StartingCash:  1000000, // $10000.00
			MaxRetryCount: 3,
		},
	}
}

// newTestQuotes AAPL $50.00 / NFLX $60.00
func newTestQuotes() *quote.Static {
	return quote.NewStatic(map[string]quote.Quote{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc", Price: 5000},
		"NFLX": {Symbol: "NFLX", Name: "Netflix Inc", Price: 6000},
	})
}

func newTestLedger(t *testing.T, db *gorm.DB, quotes quote.Provider) *LedgerService {
	t.Helper()
	return NewLedgerService(db, lock.NewLocalLocker(), quotes, newTestConfig())
}

func seedAccount(t *testing.T, db *gorm.DB, userID, cash int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Account{UserID: userID, CashBalance: cash}).Error)
}

func accountBalance(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()
	var account model.Account
	require.NoError(t, db.Where("user_id = ?", userID).First(&account).Error)
	return account.CashBalance
}

func countTransactions(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.StockTransaction{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
