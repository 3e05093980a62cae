package service

import (
	"context"

	"brokerage/internal/model"
	"brokerage/internal/quote"
	"brokerage/internal/repository"
	"brokerage/pkg/money"

	"gorm.io/gorm"
)

// PortfolioService 持仓与历史查询，纯读路径，不改任何数据
type PortfolioService struct {
	quotes          quote.Provider
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
}

func NewPortfolioService(db *gorm.DB, quotes quote.Provider) *PortfolioService {
	return &PortfolioService{
		quotes:          quotes,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// PortfolioView 持仓视图
// 持仓每次都从流水现算；估值用的是查询时的实时价，流水里存的是成交价
type PortfolioView struct {
	CashBalance int64             `json:"cash_balance"` // 现金余额（美分）
	Positions   []*model.Position `json:"positions"`
	TotalValue  int64             `json:"total_value"` // 现金 + 持仓市值（美分）
}

// GetPortfolio 折算当前持仓并按实时价估值
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID int64) (*PortfolioView, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	positions, err := s.transactionRepo.PositionsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := account.CashBalance
	for _, p := range positions {
		q, err := s.quotes.Lookup(ctx, p.Symbol)
		if err != nil {
			return nil, err
		}
		marketValue, err := money.MulCents(p.Shares, q.Price)
		if err != nil {
			return nil, err
		}
		p.Price = q.Price
		p.MarketValue = marketValue
		total += marketValue
	}

	return &PortfolioView{
		CashBalance: account.CashBalance,
		Positions:   positions,
		TotalValue:  total,
	}, nil
}

// GetHistory 交易历史，最新的在前
func (s *PortfolioService) GetHistory(ctx context.Context, userID int64, page, pageSize int) ([]*model.StockTransaction, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.transactionRepo.ListByUserID(ctx, userID, page, pageSize)
}

// GetQuote 查询行情（/quote 接口），代码校验和交易路径一致
func (s *PortfolioService) GetQuote(ctx context.Context, symbol string) (*quote.Quote, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return s.quotes.Lookup(ctx, symbol)
}

// GetBalance 查询现金余额
func (s *PortfolioService) GetBalance(ctx context.Context, userID int64) (*model.Account, error) {
	return s.accountRepo.GetByUserID(ctx, userID)
}
