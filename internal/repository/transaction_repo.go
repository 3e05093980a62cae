package repository

import (
	"context"

	"brokerage/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create 追加一条交易流水
// 流水表只追加：没有 Update/Delete 方法，持仓永远从流水折算
func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.StockTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

// SumShares 折算某只股票的净持仓：SUM(shares)
// 卖出校验时必须在同一个事务里调用（tx 传事务句柄），否则读到的是旧持仓
func (r *TransactionRepository) SumShares(ctx context.Context, tx *gorm.DB, userID int64, symbol string) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var held int64
	err := tx.WithContext(ctx).
		Model(&model.StockTransaction{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Select("COALESCE(SUM(shares), 0)").
		Scan(&held).Error
	return held, err
}

// PositionsByUserID 折算当前持仓：按 symbol 聚合，只保留净持仓大于0的
func (r *TransactionRepository) PositionsByUserID(ctx context.Context, userID int64) ([]*model.Position, error) {
	var positions []*model.Position
	err := r.db.WithContext(ctx).
		Model(&model.StockTransaction{}).
		Select("symbol, MAX(company_name) AS company_name, SUM(shares) AS shares").
		Where("user_id = ?", userID).
		Group("symbol").
		Having("SUM(shares) > 0").
		Order("symbol ASC").
		Scan(&positions).Error
	return positions, err
}

// ListByUserID 交易历史，最新的在前；同一时刻的记录按插入顺序倒排
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, page, pageSize int) ([]*model.StockTransaction, int64, error) {
	var transactions []*model.StockTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&model.StockTransaction{}).Where("user_id = ?", userID)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error

	return transactions, total, err
}

// NegativePosition 净持仓为负的聚合行（对账任务用）
type NegativePosition struct {
	UserID int64  `json:"user_id"`
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

// ListNegativePositions 查询净持仓为负的用户/股票组合，正常情况下应该查不到
func (r *TransactionRepository) ListNegativePositions(ctx context.Context, limit int) ([]*NegativePosition, error) {
	var rows []*NegativePosition
	err := r.db.WithContext(ctx).
		Model(&model.StockTransaction{}).
		Select("user_id, symbol, SUM(shares) AS shares").
		Group("user_id, symbol").
		Having("SUM(shares) < 0").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
