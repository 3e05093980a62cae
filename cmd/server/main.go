package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brokerage/internal/config"
	"brokerage/internal/handler"
	"brokerage/internal/infrastructure/cache"
	"brokerage/internal/infrastructure/database"
	"brokerage/internal/infrastructure/lock"
	"brokerage/internal/infrastructure/mq"
	"brokerage/internal/job"
	"brokerage/internal/quote"
	"brokerage/internal/service"
	"brokerage/pkg/idgen"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig("config/config.yaml")

	// 初始化 ID 生成器
	idgen.Init(1)

	// 初始化 MySQL
	db := database.InitMySQL(&cfg.MySQL)

	// 初始化 Redis
	redisClient := cache.InitRedis(&cfg.Redis)

	// 初始化 Kafka
	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	// 行情提供方：HTTP 客户端 + Redis 缓存
	quotes := quote.Provider(quote.NewClient(&cfg.Quote))
	if ttl := time.Duration(cfg.Quote.CacheTTLSeconds) * time.Second; ttl > 0 {
		quotes = quote.NewCached(quotes, redisClient, ttl)
	}

	// 用户级交易锁（多实例部署用 Redis 实现）
	locker := lock.NewRedisLocker(
		redisClient,
		time.Duration(cfg.Business.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Business.LockRetryMillis)*time.Millisecond,
		cfg.Business.LockMaxRetries,
	)

	// 创建上下文（用于优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 启动后台任务
	outboxSender := job.NewOutboxSender(db, cfg)
	go outboxSender.Start(ctx)

	auditor := job.NewLedgerAuditor(db, cfg)
	go auditor.Start(ctx)

	// 组装服务与路由
	ledgerService := service.NewLedgerService(db, locker, quotes, cfg)
	portfolioService := service.NewPortfolioService(db, quotes)
	userService := service.NewUserService(db, cfg)
	h := handler.NewHandler(ledgerService, portfolioService, userService)
	router := handler.SetupRouter(h)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 取消上下文，停止后台任务
	cancel()

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	log.Println("服务已关闭")
}
