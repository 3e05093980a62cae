package repository

import (
	"context"
	"errors"

	"brokerage/internal/model"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound  = errors.New("账户不存在")
	ErrBalanceNotEnough = errors.New("余额不足")
	ErrOptimisticLock   = errors.New("乐观锁冲突，请重试")
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, tx *gorm.DB, account *model.Account) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(account).Error
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID int64) (*model.Account, error) {
	return r.getByUserID(ctx, r.db, userID)
}

// Deduct 扣减现金余额（买入）
//
// 【关键点】条件更新一条 SQL 完成"校验+扣款"：
//   - balance >= ? 保证余额永远不会被扣成负数（数据库层兜底）
//   - version = ? 乐观锁，读出账户到写入之间有并发修改就会失败
//
// RowsAffected == 0 时再查一次账户，区分"余额不足"和"版本冲突"
func (r *AccountRepository) Deduct(ctx context.Context, tx *gorm.DB, userID int64, amount int64, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Account{}).
		Where("user_id = ? AND cash_balance >= ? AND version = ?", userID, amount, version).
		Updates(map[string]interface{}{
			"cash_balance": gorm.Expr("cash_balance - ?", amount),
			"version":      gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// 用同一个事务句柄重查，区分"余额不足"和"版本冲突"
		account, err := r.getByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if account.CashBalance < amount {
			return ErrBalanceNotEnough
		}
		return ErrOptimisticLock
	}

	return nil
}

func (r *AccountRepository) getByUserID(ctx context.Context, tx *gorm.DB, userID int64) (*model.Account, error) {
	var account model.Account
	err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Increase 增加现金余额（卖出、存入现金）
// 入账不会违反余额非负，但同样带版本条件，保证与读出的账户状态一致
func (r *AccountRepository) Increase(ctx context.Context, tx *gorm.DB, userID int64, amount int64, version int) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Account{}).
		Where("user_id = ? AND version = ?", userID, version).
		Updates(map[string]interface{}{
			"cash_balance": gorm.Expr("cash_balance + ?", amount),
			"version":      gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := r.getByUserID(ctx, tx, userID); err != nil {
			return err
		}
		return ErrOptimisticLock
	}

	return nil
}

// ListNegativeBalances 查询余额为负的账户（对账任务用，正常情况下应该查不到）
func (r *AccountRepository) ListNegativeBalances(ctx context.Context, limit int) ([]*model.Account, error) {
	var accounts []*model.Account
	err := r.db.WithContext(ctx).
		Where("cash_balance < 0").
		Limit(limit).
		Find(&accounts).Error
	return accounts, err
}
