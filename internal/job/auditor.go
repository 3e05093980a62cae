package job

import (
	"context"
	"log"
	"time"

	"brokerage/internal/config"
	"brokerage/internal/repository"

	"gorm.io/gorm"
)

// LedgerAuditor 账本巡检任务
// 周期性扫描两条核心不变量，任何一条被打破都说明交易路径有bug：
// 1. 所有账户现金余额 >= 0
// 2. 任意用户任意股票的净持仓 SUM(shares) >= 0
type LedgerAuditor struct {
	db              *gorm.DB
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	cfg             *config.Config
	stopCh          chan struct{}
	interval        time.Duration
	batchSize       int
}

func NewLedgerAuditor(db *gorm.DB, cfg *config.Config) *LedgerAuditor {
	interval := time.Duration(cfg.Business.AuditIntervalSecond) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &LedgerAuditor{
		db:              db,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		cfg:             cfg,
		stopCh:          make(chan struct{}),
		interval:        interval,
		batchSize:       100,
	}
}

func (j *LedgerAuditor) Start(ctx context.Context) {
	log.Println("[LedgerAuditor] 账本巡检任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[LedgerAuditor] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[LedgerAuditor] 任务停止")
			return
		case <-ticker.C:
			j.audit(ctx)
		}
	}
}

func (j *LedgerAuditor) Stop() {
	close(j.stopCh)
}

func (j *LedgerAuditor) audit(ctx context.Context) {
	accounts, err := j.accountRepo.ListNegativeBalances(ctx, j.batchSize)
	if err != nil {
		log.Printf("[LedgerAuditor] 扫描负余额失败: %v", err)
	} else {
		for _, account := range accounts {
			log.Printf("[LedgerAuditor] 发现负余额账户: userID=%d, balance=%d",
				account.UserID, account.CashBalance)
		}
	}

	positions, err := j.transactionRepo.ListNegativePositions(ctx, j.batchSize)
	if err != nil {
		log.Printf("[LedgerAuditor] 扫描负持仓失败: %v", err)
		return
	}
	for _, p := range positions {
		log.Printf("[LedgerAuditor] 发现负持仓: userID=%d, symbol=%s, shares=%d",
			p.UserID, p.Symbol, p.Shares)
	}
}
