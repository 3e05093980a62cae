package repository

import (
	"context"
	"fmt"
	"testing"

	"brokerage/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

	require.NoError(t, db.AutoMigrate(&model.Account{}, &model.StockTransaction{}))
	return db
}

func appendTransaction(t *testing.T, repo *TransactionRepository, userID int64, symbol string, shares, price int64) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), nil, &model.StockTransaction{
		TradeNo: uuid.NewString(),
		UserID:  userID,
		Symbol:  symbol,
		Shares:  shares,
		Price:   price,
	}))
}

func TestSumSharesFoldsSignedRecords(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)

	appendTransaction(t, repo, 1, "AAPL", 10, 5000)
	appendTransaction(t, repo, 1, "AAPL", -4, 6000)
	appendTransaction(t, repo, 1, "NFLX", 3, 6000)
	appendTransaction(t, repo, 2, "AAPL", 7, 5000)

	held, err := repo.SumShares(context.Background(), nil, 1, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(6), held)

	// 没有任何流水时折算为0
	held, err = repo.SumShares(context.Background(), nil, 1, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, int64(0), held)
}

func TestPositionsByUserIDExcludesZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)

	appendTransaction(t, repo, 1, "AAPL", 10, 5000)
	appendTransaction(t, repo, 1, "AAPL", -10, 5500) // 清仓
	appendTransaction(t, repo, 1, "NFLX", 3, 6000)

	positions, err := repo.PositionsByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "NFLX", positions[0].Symbol)
	assert.Equal(t, int64(3), positions[0].Shares)
}

func TestListByUserIDOrderAndPaging(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)

	for i := 0; i < 5; i++ {
		appendTransaction(t, repo, 1, "AAPL", 1, int64(5000+i))
	}

	// 最新的在前
	page1, total, err := repo.ListByUserID(context.Background(), 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	assert.Equal(t, int64(5004), page1[0].Price)
	assert.Equal(t, int64(5003), page1[1].Price)

	page3, total, err := repo.ListByUserID(context.Background(), 1, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page3, 1)
	assert.Equal(t, int64(5000), page3[0].Price)
}

func TestListNegativePositions(t *testing.T) {
	db := newTestDB(t)
	repo := NewTransactionRepository(db)

	appendTransaction(t, repo, 1, "AAPL", 5, 5000)
	appendTransaction(t, repo, 2, "AAPL", 3, 5000)
	appendTransaction(t, repo, 2, "AAPL", -5, 5000) // 净持仓 -2，对账应报警

	rows, err := repo.ListNegativePositions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].UserID)
	assert.Equal(t, "AAPL", rows[0].Symbol)
	assert.Equal(t, int64(-2), rows[0].Shares)
}
