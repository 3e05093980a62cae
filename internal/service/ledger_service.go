package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"brokerage/internal/config"
	"brokerage/internal/infrastructure/lock"
	"brokerage/internal/model"
	"brokerage/internal/quote"
	"brokerage/internal/repository"
	"brokerage/pkg/idgen"
	"brokerage/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService 交易引擎，唯一允许改写账户余额、追加交易流水的代码路径
//
// 【关键点】每笔买入/卖出/存现金都要保证：
// 1. 行情只查一次：校验用的价格就是入账的价格，中途不重查
// 2. 并发安全：按用户加锁，同一用户的读-校验-写串行执行
// 3. 原子性：余额变更、流水追加、事件写入在同一个数据库事务里
// 4. 乐观锁兜底：账户行带版本号条件更新，冲突时重读重校验，有限次重试
type LedgerService struct {
	db              *gorm.DB
	locker          lock.Locker
	quotes          quote.Provider
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewLedgerService(db *gorm.DB, locker lock.Locker, quotes quote.Provider, cfg *config.Config) *LedgerService {
	return &LedgerService{
		db:              db,
		locker:          locker,
		quotes:          quotes,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// TradeResult 成交回执
type TradeResult struct {
	TradeNo     string `json:"trade_no"`
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Shares      int64  `json:"shares"`
	Price       int64  `json:"price"`        // 成交价（美分/股）
	Total       int64  `json:"total"`        // 成交总额（美分）
	CashBalance int64  `json:"cash_balance"` // 成交后现金余额（美分）
}

// Buy 买入
//
// 流程：校验参数 -> 查行情（只查这一次）-> 加用户锁 ->
// [读账户 -> 校验余额 -> 事务(扣款CAS+流水+事件)]，版本冲突时重试该段
func (s *LedgerService) Buy(ctx context.Context, userID int64, symbol, sharesRaw string) (*TradeResult, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	shares, err := parseShares(sharesRaw)
	if err != nil {
		return nil, err
	}

	// 行情查询失败（代码不存在/服务不可用）直接中止，没有任何账务变更
	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	// 成交额溢出会回绕成小数字、骗过余额校验，这里必须拦下
	cost, err := money.MulCents(shares, q.Price)
	if err != nil {
		return nil, ErrInvalidShares
	}

	l, err := s.locker.Acquire(ctx, lock.TradeLockKey(userID), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	defer l.Unlock(ctx)

	for i := 0; i < s.maxRetries(); i++ {
		account, err := s.accountRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if account.CashBalance < cost {
			return nil, repository.ErrBalanceNotEnough
		}

		trans := &model.StockTransaction{
			TradeNo:       idgen.GenerateTradeNo(),
			UserID:        userID,
			Symbol:        symbol,
			CompanyName:   q.Name,
			Shares:        shares, // 买入为正
			Price:         q.Price,
			BalanceBefore: account.CashBalance,
			BalanceAfter:  account.CashBalance - cost,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.accountRepo.Deduct(ctx, tx, userID, cost, account.Version); err != nil {
				return err
			}
			if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
				return fmt.Errorf("记录流水失败: %w", err)
			}
			return s.createTradeEvent(ctx, tx, trans)
		})

		if err == nil {
			log.Printf("买入成功: tradeNo=%s, userID=%d, symbol=%s, shares=%d, price=%d",
				trans.TradeNo, userID, symbol, shares, q.Price)
			return &TradeResult{
				TradeNo:     trans.TradeNo,
				Symbol:      symbol,
				CompanyName: q.Name,
				Shares:      shares,
				Price:       q.Price,
				Total:       cost,
				CashBalance: trans.BalanceAfter,
			}, nil
		}
		if errors.Is(err, repository.ErrOptimisticLock) {
			continue // 版本冲突，重读账户再试
		}
		return nil, err
	}

	return nil, ErrConflict
}

// Sell 卖出
//
// 持仓校验必须和写入在同一个事务里完成：
// 持仓从流水折算（SUM(shares)），事务外读到的持仓可能已经被并发请求消耗
func (s *LedgerService) Sell(ctx context.Context, userID int64, symbol, sharesRaw string) (*TradeResult, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	shares, err := parseShares(sharesRaw)
	if err != nil {
		return nil, err
	}

	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}
	proceeds, err := money.MulCents(shares, q.Price)
	if err != nil {
		return nil, ErrInvalidShares
	}

	l, err := s.locker.Acquire(ctx, lock.TradeLockKey(userID), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	defer l.Unlock(ctx)

	for i := 0; i < s.maxRetries(); i++ {
		account, err := s.accountRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}

		trans := &model.StockTransaction{
			TradeNo:       idgen.GenerateTradeNo(),
			UserID:        userID,
			Symbol:        symbol,
			CompanyName:   q.Name,
			Shares:        -shares, // 卖出为负
			Price:         q.Price,
			BalanceBefore: account.CashBalance,
			BalanceAfter:  account.CashBalance + proceeds,
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			held, err := s.transactionRepo.SumShares(ctx, tx, userID, symbol)
			if err != nil {
				return fmt.Errorf("折算持仓失败: %w", err)
			}
			if shares > held {
				return ErrInsufficientShares
			}
			if err := s.accountRepo.Increase(ctx, tx, userID, proceeds, account.Version); err != nil {
				return err
			}
			if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
				return fmt.Errorf("记录流水失败: %w", err)
			}
			return s.createTradeEvent(ctx, tx, trans)
		})

		if err == nil {
			log.Printf("卖出成功: tradeNo=%s, userID=%d, symbol=%s, shares=%d, price=%d",
				trans.TradeNo, userID, symbol, shares, q.Price)
			return &TradeResult{
				TradeNo:     trans.TradeNo,
				Symbol:      symbol,
				CompanyName: q.Name,
				Shares:      shares,
				Price:       q.Price,
				Total:       proceeds,
				CashBalance: trans.BalanceAfter,
			}, nil
		}
		if errors.Is(err, repository.ErrOptimisticLock) {
			continue
		}
		return nil, err
	}

	return nil, ErrConflict
}

// DepositResult 存入现金回执
type DepositResult struct {
	Amount      int64 `json:"amount"`       // 本次存入（美分）
	CashBalance int64 `json:"cash_balance"` // 存入后余额（美分）
}

// Deposit 存入现金
// 存现金不产生交易流水（历史记录只有买卖），但事件仍和余额变更同事务写入
func (s *LedgerService) Deposit(ctx context.Context, userID int64, amountRaw string) (*DepositResult, error) {
	amount, err := parseAmount(amountRaw)
	if err != nil {
		return nil, err
	}

	l, err := s.locker.Acquire(ctx, lock.TradeLockKey(userID), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	defer l.Unlock(ctx)

	for i := 0; i < s.maxRetries(); i++ {
		account, err := s.accountRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.accountRepo.Increase(ctx, tx, userID, amount, account.Version); err != nil {
				return err
			}
			return s.createDepositEvent(ctx, tx, userID, amount, account.CashBalance+amount)
		})

		if err == nil {
			log.Printf("存入现金成功: userID=%d, amount=%d", userID, amount)
			return &DepositResult{
				Amount:      amount,
				CashBalance: account.CashBalance + amount,
			}, nil
		}
		if errors.Is(err, repository.ErrOptimisticLock) {
			continue
		}
		return nil, err
	}

	return nil, ErrConflict
}

func (s *LedgerService) maxRetries() int {
	if s.cfg.Business.MaxRetryCount > 0 {
		return s.cfg.Business.MaxRetryCount
	}
	return 3
}

// createTradeEvent 成交事件写入发件箱（与账务同事务）
func (s *LedgerService) createTradeEvent(ctx context.Context, tx *gorm.DB, trans *model.StockTransaction) error {
	side := model.TradeSideBuy
	shares := trans.Shares
	if shares < 0 {
		side = model.TradeSideSell
		shares = -shares
	}

	payload := map[string]interface{}{
		"event":         "trade_executed",
		"trade_no":      trans.TradeNo,
		"user_id":       trans.UserID,
		"symbol":        trans.Symbol,
		"side":          side,
		"shares":        shares,
		"price":         trans.Price,
		"balance_after": trans.BalanceAfter,
		"executed_at":   time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: trans.TradeNo,
		Topic:      s.cfg.Kafka.Topic.TradeResult,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("写入消息失败: %w", err)
	}
	return nil
}

// createDepositEvent 存现金事件写入发件箱（与账务同事务）
func (s *LedgerService) createDepositEvent(ctx context.Context, tx *gorm.DB, userID, amount, balanceAfter int64) error {
	eventNo := idgen.GenerateEventNo()
	payload := map[string]interface{}{
		"event":         "cash_deposited",
		"event_no":      eventNo,
		"user_id":       userID,
		"amount":        amount,
		"balance_after": balanceAfter,
		"deposited_at":  time.Now().Format(time.RFC3339),
	}
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: eventNo,
		Topic:      s.cfg.Kafka.Topic.TradeResult,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
		return fmt.Errorf("写入消息失败: %w", err)
	}
	return nil
}
