package handler

import (
	"errors"
	"strconv"

	"brokerage/internal/quote"
	"brokerage/internal/repository"
	"brokerage/internal/service"
	"brokerage/pkg/money"
	"brokerage/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler 统一处理器，包含所有服务依赖
// 接口层不做业务校验：symbol/shares/amount 原样透传给交易引擎，
// user_id 默认已经过认证层（网关/会话）解析
type Handler struct {
	ledgerService    *service.LedgerService
	portfolioService *service.PortfolioService
	userService      *service.UserService
}

// NewHandler 创建处理器实例
func NewHandler(ledger *service.LedgerService, portfolio *service.PortfolioService, users *service.UserService) *Handler {
	return &Handler{
		ledgerService:    ledger,
		portfolioService: portfolio,
		userService:      users,
	}
}

// respondError 业务错误统一映射为响应码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSymbol),
		errors.Is(err, service.ErrInvalidShares),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword):
		response.ParamError(c, err.Error())
	case errors.Is(err, quote.ErrSymbolNotFound):
		response.BusinessError(c, response.CodeSymbolNotFound, err.Error())
	case errors.Is(err, quote.ErrUnavailable):
		response.BusinessError(c, response.CodeQuoteUnavailable, err.Error())
	case errors.Is(err, repository.ErrBalanceNotEnough):
		response.BusinessError(c, response.CodeBalanceNotEnough, err.Error())
	case errors.Is(err, service.ErrInsufficientShares):
		response.BusinessError(c, response.CodeSharesNotEnough, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.BusinessError(c, response.CodeConflict, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound):
		response.BusinessError(c, response.CodeAccountNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		response.BusinessError(c, response.CodeUsernameTaken, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// 用户相关接口
// ============================================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册用户并开户（带初始资金）
// POST /api/v1/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
	})
}

// ============================================================
// 账户相关接口
// ============================================================

// GetBalance 查询现金余额
// GET /api/v1/account/balance?user_id=xxx
func (h *Handler) GetBalance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	account, err := h.portfolioService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user_id":      account.UserID,
		"cash_balance": account.CashBalance,
		"cash_display": money.FormatCents(account.CashBalance),
	})
}

// DepositRequest 存入现金请求
// amount 是字符串，语义校验（正数、小数位数）由交易引擎负责
type DepositRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Deposit 存入现金
// POST /api/v1/account/deposit
func (h *Handler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.ledgerService.Deposit(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// ============================================================
// 行情相关接口
// ============================================================

// GetQuote 查询实时行情
// GET /api/v1/quote?symbol=AAPL
func (h *Handler) GetQuote(c *gin.Context) {
	q, err := h.portfolioService.GetQuote(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"symbol":        q.Symbol,
		"name":          q.Name,
		"price":         q.Price,
		"price_display": money.FormatCents(q.Price),
	})
}

// ============================================================
// 交易相关接口
// ============================================================

// TradeRequest 买入/卖出请求
// shares 是字符串：类型转换失败属于语义校验，归交易引擎管
type TradeRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Symbol string `json:"symbol"`
	Shares string `json:"shares"`
}

// Buy 买入
// POST /api/v1/trade/buy
//
// 【关键点】交易是整个系统最核心的操作，需要保证：
// 1. 原子性：余额扣减、流水记录、事件写入必须同时成功或同时失败
// 2. 并发安全：同一用户的交易通过用户锁串行执行
// 3. 价格一致：校验用的价格就是入账的价格
func (h *Handler) Buy(c *gin.Context) {
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.ledgerService.Buy(c.Request.Context(), req.UserID, req.Symbol, req.Shares)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// Sell 卖出
// POST /api/v1/trade/sell
func (h *Handler) Sell(c *gin.Context) {
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.ledgerService.Sell(c.Request.Context(), req.UserID, req.Symbol, req.Shares)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// ============================================================
// 持仓与历史接口
// ============================================================

// GetPortfolio 查询当前持仓（含实时估值）
// GET /api/v1/portfolio?user_id=xxx
func (h *Handler) GetPortfolio(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	view, err := h.portfolioService.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, view)
}

// GetHistory 查询交易历史
// GET /api/v1/history?user_id=xxx&page=1&page_size=20
func (h *Handler) GetHistory(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "user_id 参数错误")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	transactions, total, err := h.portfolioService.GetHistory(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"list":      transactions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
