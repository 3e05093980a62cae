package handler

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置路由
func SetupRouter(h *Handler) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// API 路由组
	api := r.Group("/api/v1")
	{
		api.POST("/register", h.Register)

		// 账户相关
		account := api.Group("/account")
		{
			account.GET("/balance", h.GetBalance)
			account.POST("/deposit", h.Deposit)
		}

		// 行情
		api.GET("/quote", h.GetQuote)

		// 交易相关
		trade := api.Group("/trade")
		{
			trade.POST("/buy", h.Buy)
			trade.POST("/sell", h.Sell)
		}

		// 持仓与历史
		api.GET("/portfolio", h.GetPortfolio)
		api.GET("/history", h.GetHistory)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
